// Package services implements the checklist form flow: a session-scoped
// state machine driving inspector selection, per-room toggles and submission
// through the sheet client
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"energy-checklist-bot/internal/models"
	"energy-checklist-bot/internal/schedule"
)

// DataClient is the slice of the sheet client a session needs
type DataClient interface {
	SubmitChecklist(ctx context.Context, sub models.Submission) error
	IsConfigured() bool
}

// Notifier receives a message after each successful submission
type Notifier interface {
	SendNotification(message string)
}

// ScheduleSource resolves who inspects what on a given date
type ScheduleSource interface {
	Items() []models.ChecklistItem
	InspectorsOn(date time.Time) []models.Inspector
	AssignmentFor(name string, date time.Time) *models.Assignment
}

var (
	// ErrNoAssignment is returned when submitting without a resolved building
	ErrNoAssignment = errors.New("no building assigned")
	// ErrSubmitInFlight is returned while another submit is still pending
	ErrSubmitInFlight = errors.New("a submit is already in flight")
	// ErrUnknownRoom is returned for a room outside the assigned building
	ErrUnknownRoom = errors.New("room not in assigned building")
)

// resultClearDelay is how long a transient success banner stays visible
const resultClearDelay = 2500 * time.Millisecond

// SubmitResult is the transient outcome banner for one save action
type SubmitResult struct {
	RoomID  string `json:"roomId,omitempty"`
	All     bool   `json:"all,omitempty"`
	Success bool   `json:"success"`
}

// Session holds one user's form state for one day. All state is in memory
// and discarded on Reset; nothing survives the process.
type Session struct {
	id       string
	date     time.Time
	source   ScheduleSource
	client   DataClient
	notifier Notifier
	logger   *zap.Logger

	// resultDelay is overridable so tests do not sleep 2.5 s
	resultDelay time.Duration

	mu         sync.Mutex
	inspector  string
	assignment *models.Assignment
	checks     map[string]models.RoomChecks
	saved      map[string]bool
	submitting bool
	result     *SubmitResult
	lastError  string
	// generation invalidates in-flight submits and pending banner clears
	// after a Reset
	generation uint64
}

// NewSession creates a fresh session bound to the given date
func NewSession(id string, date time.Time, source ScheduleSource, client DataClient, notifier Notifier, logger *zap.Logger) *Session {
	return &Session{
		id:          id,
		date:        date,
		source:      source,
		client:      client,
		notifier:    notifier,
		logger:      logger,
		resultDelay: resultClearDelay,
		checks:      make(map[string]models.RoomChecks),
		saved:       make(map[string]bool),
	}
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// SelectInspector resolves the assignment for the chosen inspector. A failed
// lookup leaves a nil assignment, which renders as nothing to check.
func (s *Session) SelectInspector(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspector = name
	s.assignment = s.source.AssignmentFor(name, s.date)
}

// roomChecks returns the stored state for a room, or the all-false default.
// Callers hold s.mu.
func (s *Session) roomChecks(roomID string) models.RoomChecks {
	if checks, ok := s.checks[roomID]; ok {
		return checks
	}
	defaults := make(models.RoomChecks, len(s.source.Items()))
	for _, item := range s.source.Items() {
		defaults[item.ID] = false
	}
	return defaults
}

// Toggle flips one checklist flag for one room, materializing the room's
// state on first touch. Toggling twice restores the original value.
func (s *Session) Toggle(roomID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	checks := s.roomChecks(roomID)
	checks[itemID] = !checks[itemID]
	s.checks[roomID] = checks
}

// RoomScore counts the true flags for a room (0-4)
func (s *Session) RoomScore(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return score(s.roomChecks(roomID))
}

func score(checks models.RoomChecks) int {
	n := 0
	for _, on := range checks {
		if on {
			n++
		}
	}
	return n
}

// SubmitRoom submits a single room's checklist. Completeness is never a
// gate: a score of 0 submits fine.
func (s *Session) SubmitRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	if s.assignment == nil {
		s.mu.Unlock()
		return ErrNoAssignment
	}
	var room *models.Room
	for i := range s.assignment.Building.Rooms {
		if s.assignment.Building.Rooms[i].ID == roomID {
			room = &s.assignment.Building.Rooms[i]
			break
		}
	}
	if room == nil {
		s.mu.Unlock()
		return ErrUnknownRoom
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	s.submitting = true
	s.lastError = ""
	gen := s.generation
	payload := s.buildPayload([]models.Room{*room})
	s.mu.Unlock()

	err := s.client.SubmitChecklist(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// Reset happened while the request was in flight; drop the result
		return nil
	}
	s.submitting = false
	if err != nil {
		s.lastError = err.Error()
		s.result = &SubmitResult{RoomID: roomID, Success: false}
		return err
	}
	s.saved[roomID] = true
	s.logger.Info("room checklist saved",
		zap.String("session_id", s.id),
		zap.String("room_id", roomID),
		zap.String("inspector", s.inspector))
	s.setTransientResult(&SubmitResult{RoomID: roomID, Success: true}, gen)
	s.notifySaved(payload, room.Name)
	return nil
}

// SubmitAll submits every room of the assigned building in its fixed order
func (s *Session) SubmitAll(ctx context.Context) error {
	s.mu.Lock()
	if s.assignment == nil {
		s.mu.Unlock()
		return ErrNoAssignment
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	s.submitting = true
	s.lastError = ""
	gen := s.generation
	rooms := s.assignment.Building.Rooms
	payload := s.buildPayload(rooms)
	s.mu.Unlock()

	err := s.client.SubmitChecklist(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	s.submitting = false
	if err != nil {
		s.lastError = err.Error()
		s.result = &SubmitResult{All: true, Success: false}
		return err
	}
	for _, room := range rooms {
		s.saved[room.ID] = true
	}
	s.logger.Info("building checklist saved",
		zap.String("session_id", s.id),
		zap.String("building_id", s.assignment.Building.ID),
		zap.Int("rooms", len(rooms)),
		zap.String("inspector", s.inspector))
	s.setTransientResult(&SubmitResult{All: true, Success: true}, gen)
	s.notifySaved(payload, "")
	return nil
}

// buildPayload constructs a submission from current check state.
// Callers hold s.mu.
func (s *Session) buildPayload(rooms []models.Room) models.Submission {
	items := make([]models.SubmissionItem, 0, len(rooms))
	for _, room := range rooms {
		checks := s.roomChecks(room.ID)
		items = append(items, models.SubmissionItem{
			RoomID:   room.ID,
			RoomName: room.Name,
			Lights:   checks["lights"],
			Computer: checks["computer"],
			Aircon:   checks["aircon"],
			Fan:      checks["fan"],
		})
	}
	return models.Submission{
		Date:         s.date.Format(schedule.DateFormat),
		DayName:      schedule.ThaiDayOfWeek(s.date),
		Inspector:    s.inspector,
		BuildingID:   s.assignment.Building.ID,
		BuildingName: s.assignment.Building.Name,
		Items:        items,
	}
}

// setTransientResult shows a success banner and clears it after the delay,
// unless the session was reset or a newer banner replaced it meanwhile.
// Callers hold s.mu.
func (s *Session) setTransientResult(result *SubmitResult, gen uint64) {
	s.result = result
	time.AfterFunc(s.resultDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation == gen && s.result == result {
			s.result = nil
		}
	})
}

// notifySaved tells the admin chat about a successful save.
// Callers hold s.mu.
func (s *Session) notifySaved(payload models.Submission, roomName string) {
	if s.notifier == nil {
		return
	}
	scope := fmt.Sprintf("ทุกห้อง (%d ห้อง)", len(payload.Items))
	if roomName != "" {
		scope = roomName
	}
	// Sent off the lock; a slow chat API must not stall the form
	go s.notifier.SendNotification(fmt.Sprintf(
		"💾 *บันทึกผลตรวจประหยัดพลังงาน*\n👤 ผู้ตรวจ: %s\n🏢 %s\n🚪 %s\n📅 %s %s",
		payload.Inspector, payload.BuildingName, scope, payload.DayName,
		schedule.FormatThaiDate(s.date)))
}

// Reset wipes the session back to its initial state. An in-flight submit is
// left to finish; its result is ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspector = ""
	s.assignment = nil
	s.checks = make(map[string]models.RoomChecks)
	s.saved = make(map[string]bool)
	s.submitting = false
	s.result = nil
	s.lastError = ""
	s.generation++
}
