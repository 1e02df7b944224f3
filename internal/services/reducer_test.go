package services

import (
	"context"
	"testing"

	"tech-entry-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReducerFixture() (*Reducer, *memEventRepo, *memContactRepo, *memLogRepo) {
	events := &memEventRepo{}
	contacts := &memContactRepo{}
	log := &memLogRepo{}
	directory := NewContactDirectory(events, contacts, log)
	directory.now = fixedTime
	r := NewReducer(events, contacts, log, directory)
	r.now = fixedTime
	return r, events, contacts, log
}

func TestHandleInboundSlotSelection(t *testing.T) {
	r, events, contacts, log := newReducerFixture()
	contacts.add(&models.TechContact{ContactID: "c-1", PhoneNumber: "+972501000001"})
	events.add(&models.Event{EventID: "ev-1", AssignedContactID: "c-1", Status: models.StatusAwaitingReply})

	err := r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{ListReplyID: "time_10_30"})
	require.NoError(t, err)

	ev, err := events.GetByID("ev-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAnswered, ev.Status)
	assert.Equal(t, "10:30", ev.SelectedSlot)

	ok := log.byOutcome(models.OutcomeOK)
	require.Len(t, ok, 1)
	assert.Equal(t, models.DirectionInbound, ok[0].Direction)
	assert.Contains(t, ok[0].PayloadSummary, "10:30")
}

func TestHandleInboundUnsure(t *testing.T) {
	r, events, contacts, _ := newReducerFixture()
	contacts.add(&models.TechContact{ContactID: "c-1", PhoneNumber: "+972501000001"})
	events.add(&models.Event{EventID: "ev-1", AssignedContactID: "c-1", Status: models.StatusAwaitingReply})

	err := r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{ButtonID: models.ButtonIDUnsure})
	require.NoError(t, err)

	ev, _ := events.GetByID("ev-1")
	assert.Equal(t, models.StatusUnsure, ev.Status)
}

func TestHandleInboundUnsureThenSlot(t *testing.T) {
	r, events, contacts, _ := newReducerFixture()
	contacts.add(&models.TechContact{ContactID: "c-1", PhoneNumber: "+972501000001"})
	events.add(&models.Event{EventID: "ev-1", AssignedContactID: "c-1", Status: models.StatusAwaitingReply})

	require.NoError(t, r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{ButtonID: models.ButtonIDUnsure}))
	require.NoError(t, r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{ListReplyID: "time_06_00"}))

	ev, _ := events.GetByID("ev-1")
	assert.Equal(t, models.StatusAnswered, ev.Status)
	assert.Equal(t, "06:00", ev.SelectedSlot)
}

func TestHandleInboundRedirect(t *testing.T) {
	r, events, contacts, log := newReducerFixture()
	contacts.add(&models.TechContact{ContactID: "c-1", PhoneNumber: "+972501000001"})
	contacts.add(&models.TechContact{ContactID: "c-2", PhoneNumber: "+972501000002"})
	events.add(&models.Event{EventID: "ev-1", AssignedContactID: "c-1", Status: models.StatusAwaitingReply, SelectedSlot: ""})

	err := r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{
		ButtonID:     models.ButtonIDNotContact,
		ContactPhone: "+972501000002",
	})
	require.NoError(t, err)

	ev, _ := events.GetByID("ev-1")
	assert.Equal(t, models.StatusPending, ev.Status)
	assert.Equal(t, "c-2", ev.AssignedContactID)
	assert.Equal(t, []string{"c-1"}, ev.RedirectChain)
	assert.Empty(t, ev.SelectedSlot)

	ok := log.byOutcome(models.OutcomeOK)
	require.Len(t, ok, 1)
	assert.Contains(t, ok[0].PayloadSummary, "redirected from c-1 to c-2")
}

func TestHandleInboundRedirectCycleRejected(t *testing.T) {
	r, events, contacts, log := newReducerFixture()
	contacts.add(&models.TechContact{ContactID: "c-1", PhoneNumber: "+972501000001"})
	contacts.add(&models.TechContact{ContactID: "c-2", PhoneNumber: "+972501000002"})
	events.add(&models.Event{
		EventID:           "ev-1",
		AssignedContactID: "c-1",
		Status:            models.StatusAwaitingReply,
		RedirectChain:     []string{"c-2"},
	})

	err := r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{
		ButtonID:     models.ButtonIDNotContact,
		ContactPhone: "+972501000002",
	})
	require.NoError(t, err)

	ev, _ := events.GetByID("ev-1")
	assert.Equal(t, "c-1", ev.AssignedContactID)
	assert.Equal(t, models.StatusAwaitingReply, ev.Status)
	assert.Len(t, log.byOutcome(models.OutcomeParseFailed), 1)
}

func TestHandleInboundRedirectUnknownTargetParks(t *testing.T) {
	r, events, contacts, log := newReducerFixture()
	contacts.add(&models.TechContact{ContactID: "c-1", PhoneNumber: "+972501000001"})
	events.add(&models.Event{EventID: "ev-1", AssignedContactID: "c-1", Status: models.StatusAwaitingReply})

	err := r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{
		ButtonID: models.ButtonIDNotContact,
		Body:     "0529999999",
	})
	require.NoError(t, err)

	ev, _ := events.GetByID("ev-1")
	assert.Equal(t, models.StatusUnsure, ev.Status)
	assert.Equal(t, "c-1", ev.AssignedContactID)
	assert.Len(t, log.byOutcome(models.OutcomeParseFailed), 1)
}

func TestHandleInboundUnrecognizedKeepsState(t *testing.T) {
	r, events, contacts, log := newReducerFixture()
	contacts.add(&models.TechContact{ContactID: "c-1", PhoneNumber: "+972501000001"})
	events.add(&models.Event{EventID: "ev-1", AssignedContactID: "c-1", Status: models.StatusAwaitingReply})

	err := r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{Body: "who is this?"})
	require.NoError(t, err)

	ev, _ := events.GetByID("ev-1")
	assert.Equal(t, models.StatusAwaitingReply, ev.Status)

	failed := log.byOutcome(models.OutcomeParseFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].PayloadSummary, "who is this?")
}

func TestHandleInboundOrphanSender(t *testing.T) {
	r, events, _, log := newReducerFixture()
	events.add(&models.Event{EventID: "ev-1", AssignedContactID: "c-1", Status: models.StatusAwaitingReply})

	err := r.HandleInbound(context.Background(), "+972509999999", models.InboundMessage{Body: "hi"})
	require.NoError(t, err)

	ev, _ := events.GetByID("ev-1")
	assert.Equal(t, models.StatusAwaitingReply, ev.Status)

	failed := log.byOutcome(models.OutcomeParseFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "-", failed[0].EventID)
}

func TestHandleInboundAfterAnswerIsOrphan(t *testing.T) {
	r, events, contacts, log := newReducerFixture()
	contacts.add(&models.TechContact{ContactID: "c-1", PhoneNumber: "+972501000001"})
	events.add(&models.Event{EventID: "ev-1", AssignedContactID: "c-1", Status: models.StatusAnswered, SelectedSlot: "10:30"})

	err := r.HandleInbound(context.Background(), "+972501000001", models.InboundMessage{ListReplyID: "time_12_00"})
	require.NoError(t, err)

	ev, _ := events.GetByID("ev-1")
	assert.Equal(t, "10:30", ev.SelectedSlot)
	assert.Len(t, log.byOutcome(models.OutcomeParseFailed), 1)
}
