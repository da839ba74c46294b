package event

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dhis2-sre/eventos/pkg/model"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const productID = "-//dhis2-sre//eventos//ES"

// uidNamespace keeps the UID of an event stable across exports so calendar clients update the
// entry instead of adding a duplicate.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dhis2-sre/eventos"))

func eventUID(event *model.Event) string {
	return uuid.NewSHA1(uidNamespace, []byte(strconv.FormatUint(uint64(event.ID), 10))).String()
}

// toICal converts an event into a calendar with a single VEVENT.
func toICal(event *model.Event, now time.Time) *ical.Calendar {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, eventUID(event))
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.When.UTC())
	ve.Props.SetText(ical.PropCategories, event.Kind.Label())

	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}
	if event.IsPrivate {
		ve.Props.SetText(ical.PropClass, "PRIVATE")
	}
	if event.Organizer.Email != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", event.Organizer.Email))
		ve.Props.Add(p)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, ve)
	return cal
}

// WriteICal encodes event as an iCalendar document into w.
func (s Service) WriteICal(w io.Writer, event *model.Event) error {
	if err := ical.NewEncoder(w).Encode(toICal(event, s.now())); err != nil {
		return fmt.Errorf("failed to encode event to iCal format: %v", err)
	}
	return nil
}

// ICalFilename is the attachment name of the iCalendar export of event.
func ICalFilename(event *model.Event) string {
	name := event.Slug
	if name == "" {
		name = "evento-" + strconv.FormatUint(uint64(event.ID), 10)
	}
	return name + ".ics"
}
