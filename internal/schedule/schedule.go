// Package schedule holds the static inspection roster: which inspectors are
// on duty per weekday, which building each one walks, and the fixed checklist
// item set. It also provides the Thai date formatting used in payloads and
// notifications.
package schedule

import (
	"fmt"
	"time"

	"energy-checklist-bot/internal/models"
)

// DateFormat is the wire format for dates in query params and payloads
const DateFormat = "2006-01-02"

var checklistItems = []models.ChecklistItem{
	{ID: "lights", Label: "ปิดไฟ", Icon: "💡"},
	{ID: "computer", Label: "ปิดคอมพิวเตอร์", Icon: "💻"},
	{ID: "aircon", Label: "ปิดแอร์", Icon: "❄️"},
	{ID: "fan", Label: "ปิดพัดลม", Icon: "🌀"},
}

var buildings = map[string]models.Building{
	"A": {
		ID:   "A",
		Name: "อาคาร 1",
		Rooms: []models.Room{
			{ID: "A101", Name: "ห้องธุรการ"},
			{ID: "A102", Name: "ห้องประชุมใหญ่"},
			{ID: "A103", Name: "ห้องพัสดุ"},
		},
	},
	"B": {
		ID:   "B",
		Name: "อาคาร 2",
		Rooms: []models.Room{
			{ID: "B201", Name: "ห้องคอมพิวเตอร์"},
			{ID: "B202", Name: "ห้องสมุด"},
		},
	},
	"C": {
		ID:   "C",
		Name: "อาคาร 3",
		Rooms: []models.Room{
			{ID: "C301", Name: "ห้องปฏิบัติการ"},
			{ID: "C302", Name: "ห้องเรียนรวม"},
			{ID: "C303", Name: "ห้องพักครู"},
		},
	},
}

type duty struct {
	inspector  string
	buildingID string
}

// Duty roster, Monday through Friday. Weekends have no entries, which the
// form renders as a non-working day.
var roster = map[time.Weekday][]duty{
	time.Monday: {
		{"สมชาย ใจดี", "A"},
		{"วิภา สุขสันต์", "B"},
	},
	time.Tuesday: {
		{"ประวิทย์ แสงทอง", "A"},
		{"อรุณี บุญมา", "C"},
	},
	time.Wednesday: {
		{"สมชาย ใจดี", "B"},
		{"มานพ ศรีสุข", "C"},
	},
	time.Thursday: {
		{"วิภา สุขสันต์", "A"},
		{"ประวิทย์ แสงทอง", "B"},
	},
	time.Friday: {
		{"อรุณี บุญมา", "A"},
		{"มานพ ศรีสุข", "B"},
	},
}

// Static serves the roster compiled into the binary
type Static struct{}

// Items returns the fixed checklist item set
func (Static) Items() []models.ChecklistItem {
	return checklistItems
}

// InspectorsOn returns the inspectors on duty for the given date.
// An empty result signals a non-working day.
func (Static) InspectorsOn(date time.Time) []models.Inspector {
	var out []models.Inspector
	for _, d := range roster[date.Weekday()] {
		b := buildings[d.buildingID]
		out = append(out, models.Inspector{
			Name:         d.inspector,
			BuildingID:   b.ID,
			BuildingName: b.Name,
		})
	}
	return out
}

// AssignmentFor resolves the building assigned to an inspector on a date,
// or nil when the inspector is not on duty that day
func (Static) AssignmentFor(name string, date time.Time) *models.Assignment {
	for _, d := range roster[date.Weekday()] {
		if d.inspector == name {
			return &models.Assignment{
				Inspector: name,
				Building:  buildings[d.buildingID],
			}
		}
	}
	return nil
}

var thaiDays = []string{
	"อาทิตย์", "จันทร์", "อังคาร", "พุธ", "พฤหัสบดี", "ศุกร์", "เสาร์",
}

var thaiMonths = []string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// ThaiDayOfWeek returns the Thai day name, e.g. "จันทร์"
func ThaiDayOfWeek(date time.Time) string {
	return thaiDays[date.Weekday()]
}

// FormatThaiDate formats a date in Thai with the Buddhist era year,
// e.g. "31 สิงหาคม 2569"
func FormatThaiDate(date time.Time) string {
	return fmt.Sprintf("%d %s %d", date.Day(), thaiMonths[date.Month()-1], date.Year()+543)
}
