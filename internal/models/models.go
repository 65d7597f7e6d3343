// Package models contains data structures for the application
package models

import (
	"encoding/json"
)

// ChecklistItem is one thing an inspector has to switch off in a room.
// The set is fixed at process start (lights, computer, aircon, fan).
type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Room belongs to exactly one building
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Building groups the rooms an inspector walks through in one round
type Building struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Rooms []Room `json:"rooms"`
}

// Inspector is one duty roster entry for a given date
type Inspector struct {
	Name         string `json:"name"`
	BuildingID   string `json:"buildingId"`
	BuildingName string `json:"buildingName"`
}

// Assignment resolves (inspector, date) to a building
type Assignment struct {
	Inspector string   `json:"inspector"`
	Building  Building `json:"building"`
}

// RoomChecks maps checklist item ID to its toggle state for one room
type RoomChecks map[string]bool

// SubmissionItem is one room's flags inside a submission payload
type SubmissionItem struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
	Lights   bool   `json:"lights"`
	Computer bool   `json:"computer"`
	Aircon   bool   `json:"aircon"`
	Fan      bool   `json:"fan"`
}

// Submission is the payload sent to the sheet endpoint on save.
// Items keep the building's room order.
type Submission struct {
	Date         string           `json:"date"`
	DayName      string           `json:"dayName"`
	Inspector    string           `json:"inspector"`
	BuildingID   string           `json:"buildingId"`
	BuildingName string           `json:"buildingName"`
	Items        []SubmissionItem `json:"items"`
}

// AllData is the combined read result from the sheet endpoint.
// Record and score rows are kept opaque; the sheet owns their shape.
type AllData struct {
	Status  map[string]json.RawMessage `json:"status"`
	Records []json.RawMessage          `json:"records"`
	Scores  []json.RawMessage          `json:"scores"`
}

// EmptyAllData is the degraded-but-successful result used when the endpoint
// is unconfigured or a read fails
func EmptyAllData() AllData {
	return AllData{
		Status:  map[string]json.RawMessage{},
		Records: []json.RawMessage{},
		Scores:  []json.RawMessage{},
	}
}
