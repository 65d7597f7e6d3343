package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energy-checklist-bot/internal/models"
)

// stubSchedule is a fixed roster: Somchai inspects building A with rooms
// R1 and R2. With off=true the date has nobody on duty.
type stubSchedule struct {
	off bool
}

func (s stubSchedule) Items() []models.ChecklistItem {
	return []models.ChecklistItem{
		{ID: "lights", Label: "ปิดไฟ", Icon: "💡"},
		{ID: "computer", Label: "ปิดคอมพิวเตอร์", Icon: "💻"},
		{ID: "aircon", Label: "ปิดแอร์", Icon: "❄️"},
		{ID: "fan", Label: "ปิดพัดลม", Icon: "🌀"},
	}
}

func (s stubSchedule) InspectorsOn(_ time.Time) []models.Inspector {
	if s.off {
		return nil
	}
	return []models.Inspector{
		{Name: "Somchai", BuildingID: "A", BuildingName: "Building A"},
	}
}

func (s stubSchedule) AssignmentFor(name string, _ time.Time) *models.Assignment {
	if s.off || name != "Somchai" {
		return nil
	}
	return &models.Assignment{
		Inspector: name,
		Building: models.Building{
			ID:   "A",
			Name: "Building A",
			Rooms: []models.Room{
				{ID: "R1", Name: "Room 1"},
				{ID: "R2", Name: "Room 2"},
			},
		},
	}
}

// stubClient records submissions and can be told to fail or block
type stubClient struct {
	mu          sync.Mutex
	submissions []models.Submission
	err         error

	// when set, SubmitChecklist signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (c *stubClient) SubmitChecklist(_ context.Context, sub models.Submission) error {
	if c.started != nil {
		c.started <- struct{}{}
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.submissions = append(c.submissions, sub)
	return nil
}

func (c *stubClient) IsConfigured() bool { return true }

func (c *stubClient) sent() []models.Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Submission(nil), c.submissions...)
}

type stubNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *stubNotifier) SendNotification(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

var monday = time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local)

func newTestSession(client *stubClient) (*Session, *stubNotifier) {
	notifier := &stubNotifier{}
	s := NewSession("test", monday, stubSchedule{}, client, notifier, zap.NewNop())
	s.resultDelay = 20 * time.Millisecond
	return s, notifier
}

func TestView_Weekend(t *testing.T) {
	s := NewSession("test", monday, stubSchedule{off: true}, &stubClient{}, nil, zap.NewNop())

	v := s.View()
	assert.Equal(t, ModeWeekend, v.Mode)
	assert.Empty(t, v.Inspectors)
	assert.Equal(t, "จันทร์", v.DayName)
	assert.Equal(t, "31 สิงหาคม 2569", v.DateDisplay)
}

func TestView_SelectThenChecklist(t *testing.T) {
	s, _ := newTestSession(&stubClient{})

	v := s.View()
	assert.Equal(t, ModeSelect, v.Mode)
	require.Len(t, v.Inspectors, 1)
	assert.Equal(t, "Somchai", v.Inspectors[0].Name)

	s.SelectInspector("Somchai")
	v = s.View()
	assert.Equal(t, ModeChecklist, v.Mode)
	require.NotNil(t, v.Building)
	assert.Equal(t, "A", v.Building.ID)
	// Rooms keep the assignment's order
	require.Len(t, v.Rooms, 2)
	assert.Equal(t, "R1", v.Rooms[0].Room.ID)
	assert.Equal(t, "R2", v.Rooms[1].Room.ID)
	// Lazy defaults: all flags false, score 0
	assert.Equal(t, 0, v.Rooms[0].Score)
	assert.False(t, v.Rooms[0].Checks["lights"])
}

func TestView_UnknownInspectorRendersNothing(t *testing.T) {
	s, _ := newTestSession(&stubClient{})

	s.SelectInspector("ไม่มีในตาราง")
	v := s.View()
	assert.Equal(t, ModeChecklist, v.Mode)
	assert.Nil(t, v.Building)
	assert.Empty(t, v.Rooms)
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	s, _ := newTestSession(&stubClient{})
	s.SelectInspector("Somchai")

	assert.Equal(t, 0, s.RoomScore("R1"))

	s.Toggle("R1", "lights")
	assert.Equal(t, 1, s.RoomScore("R1"))

	s.Toggle("R1", "lights")
	assert.Equal(t, 0, s.RoomScore("R1"))
}

func TestRoomScore_CountsTrueFlags(t *testing.T) {
	s, _ := newTestSession(&stubClient{})
	s.SelectInspector("Somchai")

	for i, item := range []string{"lights", "computer", "aircon", "fan"} {
		s.Toggle("R1", item)
		assert.Equal(t, i+1, s.RoomScore("R1"))
	}
	assert.Equal(t, 4, s.RoomScore("R1"))
	assert.True(t, s.View().Rooms[0].AllChecked)

	// R2 untouched
	assert.Equal(t, 0, s.RoomScore("R2"))
}

func TestSubmitRoom(t *testing.T) {
	client := &stubClient{}
	s, notifier := newTestSession(client)
	s.SelectInspector("Somchai")

	s.Toggle("R1", "lights")
	s.Toggle("R1", "aircon")
	require.Equal(t, 2, s.RoomScore("R1"))

	require.NoError(t, s.SubmitRoom(context.Background(), "R1"))

	sent := client.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "2026-08-31", sent[0].Date)
	assert.Equal(t, "จันทร์", sent[0].DayName)
	assert.Equal(t, "Somchai", sent[0].Inspector)
	assert.Equal(t, "A", sent[0].BuildingID)
	require.Len(t, sent[0].Items, 1)
	assert.Equal(t, models.SubmissionItem{
		RoomID:   "R1",
		RoomName: "Room 1",
		Lights:   true,
		Computer: false,
		Aircon:   true,
		Fan:      false,
	}, sent[0].Items[0])

	v := s.View()
	assert.True(t, v.Rooms[0].Saved)
	assert.False(t, v.Rooms[1].Saved, "R2 must be unaffected")
	assert.False(t, v.Submitting)
	require.NotNil(t, v.Result)
	assert.True(t, v.Result.Success)
	assert.Equal(t, "R1", v.Result.RoomID)

	assert.Eventually(t, func() bool { return notifier.count() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestSubmitRoom_Errors(t *testing.T) {
	s, _ := newTestSession(&stubClient{})

	assert.ErrorIs(t, s.SubmitRoom(context.Background(), "R1"), ErrNoAssignment)

	s.SelectInspector("Somchai")
	assert.ErrorIs(t, s.SubmitRoom(context.Background(), "nope"), ErrUnknownRoom)
}

func TestSubmitAll_NeverBlockedByIncompleteness(t *testing.T) {
	client := &stubClient{}
	s, _ := newTestSession(client)
	s.SelectInspector("Somchai")

	// Nothing toggled anywhere; submission still goes through
	require.NoError(t, s.SubmitAll(context.Background()))

	sent := client.sent()
	require.Len(t, sent, 1)
	require.Len(t, sent[0].Items, 2)
	assert.Equal(t, "R1", sent[0].Items[0].RoomID)
	assert.Equal(t, "R2", sent[0].Items[1].RoomID)
	for _, item := range sent[0].Items {
		assert.False(t, item.Lights)
		assert.False(t, item.Computer)
		assert.False(t, item.Aircon)
		assert.False(t, item.Fan)
	}

	v := s.View()
	assert.True(t, v.Rooms[0].Saved)
	assert.True(t, v.Rooms[1].Saved)
	require.NotNil(t, v.Result)
	assert.True(t, v.Result.All)
}

func TestSubmitFailure_KeepsLocalState(t *testing.T) {
	client := &stubClient{err: errors.New("เกิดข้อผิดพลาดในการบันทึก")}
	s, notifier := newTestSession(client)
	s.SelectInspector("Somchai")

	s.Toggle("R1", "lights")
	s.Toggle("R1", "aircon")

	err := s.SubmitRoom(context.Background(), "R1")
	require.Error(t, err)

	// Toggles stay applied, nothing is marked saved, error is surfaced
	assert.Equal(t, 2, s.RoomScore("R1"))
	v := s.View()
	assert.False(t, v.Rooms[0].Saved)
	assert.Equal(t, "เกิดข้อผิดพลาดในการบันทึก", v.Error)
	require.NotNil(t, v.Result)
	assert.False(t, v.Result.Success)
	assert.Equal(t, "R1", v.Result.RoomID)
	assert.Equal(t, 0, notifier.count())

	// Retry works immediately once the endpoint recovers
	client.err = nil
	require.NoError(t, s.SubmitRoom(context.Background(), "R1"))
	assert.True(t, s.View().Rooms[0].Saved)
	assert.Empty(t, s.View().Error)
}

func TestSubmit_OneInFlightAtATime(t *testing.T) {
	client := &stubClient{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s, _ := newTestSession(client)
	s.SelectInspector("Somchai")

	done := make(chan error, 1)
	go func() { done <- s.SubmitRoom(context.Background(), "R1") }()
	<-client.started

	assert.True(t, s.View().Submitting)
	assert.ErrorIs(t, s.SubmitRoom(context.Background(), "R2"), ErrSubmitInFlight)
	assert.ErrorIs(t, s.SubmitAll(context.Background()), ErrSubmitInFlight)

	close(client.release)
	require.NoError(t, <-done)
	assert.False(t, s.View().Submitting)
}

func TestReset_WipesEverything(t *testing.T) {
	client := &stubClient{}
	s, _ := newTestSession(client)
	s.SelectInspector("Somchai")
	s.Toggle("R1", "lights")
	require.NoError(t, s.SubmitRoom(context.Background(), "R1"))

	s.Reset()

	v := s.View()
	assert.Equal(t, ModeSelect, v.Mode)
	assert.Empty(t, v.Inspector)
	assert.Nil(t, v.Result)
	assert.Empty(t, v.Error)

	s.SelectInspector("Somchai")
	v = s.View()
	assert.Equal(t, 0, v.Rooms[0].Score, "check state discarded")
	assert.False(t, v.Rooms[0].Saved, "saved flags discarded")
}

func TestReset_IgnoresInFlightResult(t *testing.T) {
	client := &stubClient{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s, notifier := newTestSession(client)
	s.SelectInspector("Somchai")

	done := make(chan error, 1)
	go func() { done <- s.SubmitRoom(context.Background(), "R1") }()
	<-client.started

	s.Reset()
	close(client.release)
	require.NoError(t, <-done)

	// The stale completion must not leak into the wiped session
	s.SelectInspector("Somchai")
	v := s.View()
	assert.False(t, v.Rooms[0].Saved)
	assert.Nil(t, v.Result)
	assert.False(t, v.Submitting)
	assert.Equal(t, 0, notifier.count())
}

func TestTransientResult(t *testing.T) {
	t.Run("success banner self-clears", func(t *testing.T) {
		s, _ := newTestSession(&stubClient{})
		s.SelectInspector("Somchai")
		require.NoError(t, s.SubmitRoom(context.Background(), "R1"))
		require.NotNil(t, s.View().Result)

		assert.Eventually(t, func() bool { return s.View().Result == nil },
			time.Second, 5*time.Millisecond)
	})

	t.Run("failure banner stays until the next action", func(t *testing.T) {
		s, _ := newTestSession(&stubClient{err: errors.New("down")})
		s.SelectInspector("Somchai")
		require.Error(t, s.SubmitRoom(context.Background(), "R1"))

		time.Sleep(60 * time.Millisecond)
		require.NotNil(t, s.View().Result)
		assert.False(t, s.View().Result.Success)
	})
}

func TestSavedIsMonotonic(t *testing.T) {
	s, _ := newTestSession(&stubClient{})
	s.SelectInspector("Somchai")
	require.NoError(t, s.SubmitRoom(context.Background(), "R1"))

	// Mutating after a save keeps the room displayed as saved
	s.Toggle("R1", "fan")
	assert.True(t, s.View().Rooms[0].Saved)
}
