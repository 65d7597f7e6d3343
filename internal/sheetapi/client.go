// Package sheetapi mediates all reads and writes against the spreadsheet
// backend (a Google Apps Script web app). Reads go through a short-lived
// cache and degrade to empty results on any failure; writes invalidate the
// cache and surface their errors to the caller.
package sheetapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"energy-checklist-bot/internal/cache"
	"energy-checklist-bot/internal/models"
)

// DefaultTTL is how long a combined read result stays fresh
const DefaultTTL = 2 * time.Minute

const cacheKeyPrefix = "alldata:"

// ErrNotConfigured is returned by SubmitChecklist when no endpoint URL is set
var ErrNotConfigured = errors.New("กรุณาตั้งค่า URL ของ Google Apps Script ก่อนใช้งาน")

// genericSubmitError is shown when the endpoint fails without a reason
const genericSubmitError = "เกิดข้อผิดพลาดในการบันทึก"

// Client talks to one configured sheet endpoint. A zero-value base URL is
// legal: every read returns an empty success and submits fail fast.
type Client struct {
	baseURL string
	http    *resty.Client
	store   cache.Store
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a client for the given endpoint URL. The URL may be empty.
func New(baseURL string, store cache.Store, ttl time.Duration, logger *zap.Logger) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	httpClient := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		store:   store,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// IsConfigured reports whether an endpoint URL has been set. It only gates
// the configuration warning in the UI; all operations are safe regardless.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// ClearCache drops every cached read entry
func (c *Client) ClearCache(ctx context.Context) {
	c.store.Clear(ctx)
}

// cacheEntry is the stored shape: the last successful combined read plus
// when it was stored, in epoch milliseconds
type cacheEntry struct {
	Data      models.AllData `json:"data"`
	Timestamp int64          `json:"timestamp"`
}

type allDataResponse struct {
	Success bool                       `json:"success"`
	Status  map[string]json.RawMessage `json:"status"`
	Records []json.RawMessage          `json:"records"`
	Scores  []json.RawMessage          `json:"scores"`
	Error   string                     `json:"error"`
}

// GetAllData returns the combined {status, records, scores} result for a
// date. Served from cache when a fresh entry exists; otherwise one network
// read. Any failure yields the same empty result as an unconfigured client,
// so callers never see a read error.
func (c *Client) GetAllData(ctx context.Context, date string) models.AllData {
	if !c.IsConfigured() {
		return models.EmptyAllData()
	}

	if data, ok := c.cachedAllData(ctx, date); ok {
		return data
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("action", "getAllData").
		SetQueryParam("date", date).
		Get(c.baseURL)
	if err != nil {
		c.logger.Warn("getAllData request failed", zap.String("date", date), zap.Error(err))
		return models.EmptyAllData()
	}

	var result allDataResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.logger.Warn("getAllData response malformed", zap.String("date", date), zap.Error(err))
		return models.EmptyAllData()
	}
	if !result.Success {
		c.logger.Warn("getAllData rejected by endpoint", zap.String("date", date), zap.String("error", result.Error))
		return models.EmptyAllData()
	}

	data := models.AllData{
		Status:  result.Status,
		Records: result.Records,
		Scores:  result.Scores,
	}
	if data.Status == nil {
		data.Status = map[string]json.RawMessage{}
	}
	if data.Records == nil {
		data.Records = []json.RawMessage{}
	}
	if data.Scores == nil {
		data.Scores = []json.RawMessage{}
	}

	c.storeAllData(ctx, date, data)
	return data
}

// cachedAllData returns a fresh cached result. Stale entries are deleted
// on the way out.
func (c *Client) cachedAllData(ctx context.Context, date string) (models.AllData, bool) {
	raw, ok := c.store.Get(ctx, cacheKeyPrefix+date)
	if !ok {
		return models.AllData{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.store.Delete(ctx, cacheKeyPrefix+date)
		return models.AllData{}, false
	}

	age := c.now().UnixMilli() - entry.Timestamp
	if age > c.ttl.Milliseconds() {
		c.store.Delete(ctx, cacheKeyPrefix+date)
		return models.AllData{}, false
	}

	return entry.Data, true
}

func (c *Client) storeAllData(ctx context.Context, date string, data models.AllData) {
	raw, err := json.Marshal(cacheEntry{Data: data, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return
	}
	c.store.Set(ctx, cacheKeyPrefix+date, raw)
}

type recordsResponse struct {
	Success bool              `json:"success"`
	Records []json.RawMessage `json:"records"`
}

// GetRecords returns the raw record rows for a date, or an empty slice on
// any failure. Uncached; the combined read is the cache-bearing path.
func (c *Client) GetRecords(ctx context.Context, date string) []json.RawMessage {
	if !c.IsConfigured() {
		return []json.RawMessage{}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("action", "getRecords").
		SetQueryParam("date", date).
		Get(c.baseURL)
	if err != nil {
		c.logger.Warn("getRecords request failed", zap.String("date", date), zap.Error(err))
		return []json.RawMessage{}
	}

	var result recordsResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil || !result.Success || result.Records == nil {
		return []json.RawMessage{}
	}
	return result.Records
}

type scoresResponse struct {
	Success bool              `json:"success"`
	Scores  []json.RawMessage `json:"scores"`
}

// GetScores returns the accumulated score rows, or an empty slice on failure
func (c *Client) GetScores(ctx context.Context) []json.RawMessage {
	if !c.IsConfigured() {
		return []json.RawMessage{}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("action", "getScores").
		Get(c.baseURL)
	if err != nil {
		c.logger.Warn("getScores request failed", zap.Error(err))
		return []json.RawMessage{}
	}

	var result scoresResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil || !result.Success || result.Scores == nil {
		return []json.RawMessage{}
	}
	return result.Scores
}

type statusResponse struct {
	Success bool                       `json:"success"`
	Status  map[string]json.RawMessage `json:"status"`
}

// GetTodayStatus returns the per-building submission status for a date, or
// an empty map on failure
func (c *Client) GetTodayStatus(ctx context.Context, date string) map[string]json.RawMessage {
	if !c.IsConfigured() {
		return map[string]json.RawMessage{}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("action", "getTodayStatus").
		SetQueryParam("date", date).
		Get(c.baseURL)
	if err != nil {
		c.logger.Warn("getTodayStatus request failed", zap.String("date", date), zap.Error(err))
		return map[string]json.RawMessage{}
	}

	var result statusResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil || !result.Success || result.Status == nil {
		return map[string]json.RawMessage{}
	}
	return result.Status
}

type submitRequest struct {
	Action string `json:"action"`
	models.Submission
}

type submitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SubmitChecklist sends the full payload as a single write. The cache is
// cleared first so the next read reflects the new data. The endpoint's
// failure reason, when present, comes back in the returned error.
func (c *Client) SubmitChecklist(ctx context.Context, sub models.Submission) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	c.ClearCache(ctx)

	body, err := json.Marshal(submitRequest{Action: "submit", Submission: sub})
	if err != nil {
		return fmt.Errorf("%s: %w", genericSubmitError, err)
	}

	// Apps Script web apps only accept simple requests, so the JSON body
	// goes as text/plain.
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetBody(body).
		Post(c.baseURL)
	if err != nil {
		c.logger.Error("submit request failed",
			zap.String("inspector", sub.Inspector),
			zap.Int("items", len(sub.Items)),
			zap.Error(err))
		return fmt.Errorf("%s: %w", genericSubmitError, err)
	}

	var result submitResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.logger.Error("submit response malformed", zap.Error(err))
		return fmt.Errorf("%s: %w", genericSubmitError, err)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = genericSubmitError
		}
		c.logger.Error("submit rejected by endpoint", zap.String("error", msg))
		return errors.New(msg)
	}

	c.logger.Info("checklist submitted",
		zap.String("inspector", sub.Inspector),
		zap.String("building", sub.BuildingID),
		zap.Int("items", len(sub.Items)))
	return nil
}
