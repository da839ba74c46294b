package event

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_WriteICal(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	service := NewService(discardLogger(), nil, nil)
	service.now = func() time.Time { return now }
	event := &model.Event{
		ID:          10,
		Title:       "Go meetup",
		Slug:        "go-meetup",
		Description: "Charlas sobre Go",
		When:        time.Date(2024, 4, 2, 18, 30, 0, 0, time.UTC),
		Location:    "Madrid",
		Kind:        model.KindConference,
		IsPrivate:   true,
		Organizer:   model.User{ID: 1, Email: "ana@example.org"},
	}

	var buf bytes.Buffer
	err := service.WriteICal(&buf, event)
	require.NoError(t, err)

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	ve := events[0]

	summary, err := ve.Props.Text(ical.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Go meetup", summary)
	start, err := ve.DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, event.When.Equal(start))
	location, err := ve.Props.Text(ical.PropLocation)
	require.NoError(t, err)
	assert.Equal(t, "Madrid", location)
	class, err := ve.Props.Text(ical.PropClass)
	require.NoError(t, err)
	assert.Equal(t, "PRIVATE", class)
	uid, err := ve.Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, eventUID(event), uid)
	assert.True(t, strings.HasPrefix(ve.Props.Get(ical.PropOrganizer).Value, "mailto:ana@example.org"))
}

func TestEventUID_Stable(t *testing.T) {
	assert.Equal(t, eventUID(&model.Event{ID: 1}), eventUID(&model.Event{ID: 1, Title: "changed"}))
	assert.NotEqual(t, eventUID(&model.Event{ID: 1}), eventUID(&model.Event{ID: 2}))
}

func TestICalFilename(t *testing.T) {
	assert.Equal(t, "go-meetup.ics", ICalFilename(&model.Event{ID: 1, Slug: "go-meetup"}))
	assert.Equal(t, "evento-1.ics", ICalFilename(&model.Event{ID: 1}))
}
