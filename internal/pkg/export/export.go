package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/adiazny/calendar-events/internal/pkg/calendar"
)

const (
	defaultProductID = "-//calendar-events//EN"
	uidDomain        = "calendar-events"
)

// Exporter writes events as an iCalendar stream.
type Exporter struct {
	// Location is the zone event dates and times are interpreted in.
	Location  *time.Location
	ProductID string
	Now       func() time.Time
}

// Write encodes events as one VCALENDAR with a VEVENT per record.
func (e *Exporter) Write(w io.Writer, events []calendar.Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, e.productID())

	stamp := e.now().UTC()

	for _, event := range events {
		vevent, err := e.toICal(event, stamp)
		if err != nil {
			return fmt.Errorf("error exporting event %s %w", event.ID, err)
		}
		cal.Children = append(cal.Children, vevent)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("error encoding events to iCal format %w", err)
	}

	return nil
}

func (e *Exporter) toICal(event calendar.Event, stamp time.Time) (*ical.Component, error) {
	start, err := event.Time.On(event.Date, e.location())
	if err != nil {
		return nil, err
	}

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", event.ID, uidDomain))
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	ve.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())

	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}

	return ve, nil
}

func (e *Exporter) location() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

func (e *Exporter) productID() string {
	if e.ProductID == "" {
		return defaultProductID
	}
	return e.ProductID
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
