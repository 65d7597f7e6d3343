package services

import (
	"energy-checklist-bot/internal/models"
	"energy-checklist-bot/internal/schedule"
)

// View modes, mirroring the two-step form flow plus the non-working-day page
const (
	ModeWeekend   = "weekend"
	ModeSelect    = "select"
	ModeChecklist = "checklist"
)

// RoomView is one room's rendered state
type RoomView struct {
	Room       models.Room       `json:"room"`
	Checks     models.RoomChecks `json:"checks"`
	Score      int               `json:"score"`
	AllChecked bool              `json:"allChecked"`
	Saved      bool              `json:"saved"`
}

// View is a point-in-time snapshot of the session for rendering. It owns no
// business logic; it is what the handlers serialize.
type View struct {
	Date        string                 `json:"date"`
	DayName     string                 `json:"dayName"`
	DateDisplay string                 `json:"dateDisplay"`
	Mode        string                 `json:"mode"`
	Configured  bool                   `json:"configured"`
	Inspectors  []models.Inspector     `json:"inspectors,omitempty"`
	Inspector   string                 `json:"inspector,omitempty"`
	Building    *models.Building       `json:"building,omitempty"`
	Items       []models.ChecklistItem `json:"items,omitempty"`
	Rooms       []RoomView             `json:"rooms,omitempty"`
	Submitting  bool                   `json:"submitting"`
	Result      *SubmitResult          `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// View renders the current session state
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Date:        s.date.Format(schedule.DateFormat),
		DayName:     schedule.ThaiDayOfWeek(s.date),
		DateDisplay: schedule.FormatThaiDate(s.date),
		Configured:  s.client.IsConfigured(),
		Submitting:  s.submitting,
		Result:      s.result,
		Error:       s.lastError,
	}

	onDuty := s.source.InspectorsOn(s.date)
	if len(onDuty) == 0 {
		v.Mode = ModeWeekend
		return v
	}

	if s.inspector == "" {
		v.Mode = ModeSelect
		v.Inspectors = onDuty
		return v
	}

	v.Mode = ModeChecklist
	v.Inspector = s.inspector
	v.Items = s.source.Items()
	if s.assignment == nil {
		// Lookup failed; nothing to render
		return v
	}

	building := s.assignment.Building
	v.Building = &building
	for _, room := range building.Rooms {
		// Copied so later toggles cannot race the caller's serialization
		checks := make(models.RoomChecks, len(s.source.Items()))
		for id, on := range s.roomChecks(room.ID) {
			checks[id] = on
		}
		v.Rooms = append(v.Rooms, RoomView{
			Room:       room,
			Checks:     checks,
			Score:      score(checks),
			AllChecked: score(checks) == len(s.source.Items()),
			Saved:      s.saved[room.ID],
		})
	}
	return v
}
