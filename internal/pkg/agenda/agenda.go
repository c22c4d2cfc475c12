// Package agenda owns the calendar view state: the fetched events, their
// marker projection and the selected day. Every successful mutation is
// followed by a full re-fetch before the caller gets control back; the
// marker map is never patched in place.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/adiazny/calendar-events/internal/pkg/calendar"
	"github.com/adiazny/calendar-events/internal/pkg/marker"
)

// ErrStaleView is returned when a mutation reached the store but the
// follow-up fetch did not, so the view no longer reflects the store.
var ErrStaleView = errors.New("view is stale")

// Store is the remote event resource. *events.Client satisfies it.
type Store interface {
	List(ctx context.Context) ([]calendar.Event, error)
	Create(ctx context.Context, input calendar.EventInput) error
	Update(ctx context.Context, id calendar.ID, input calendar.EventInput) error
	Delete(ctx context.Context, id calendar.ID) error
}

// View is an immutable snapshot handed to the presentation side.
type View struct {
	// Loaded is false until the first fetch attempt settles, successful or not.
	Loaded  bool             `json:"loaded" yaml:"loaded"`
	Events  []calendar.Event `json:"events" yaml:"events"`
	Markers marker.Map       `json:"markers" yaml:"markers"`

	// Selection carries the selected date, its events and the display map
	// with the selection overlay applied.
	Selection marker.Selection `json:"selection" yaml:"selection"`
}

// Edit is what the edit form collects. The date is kept from the stored
// record.
type Edit struct {
	Title       string
	Time        string
	Description string
}

type Agenda struct {
	Log     *logrus.Entry
	Store   Store
	Palette marker.Palette

	mu   sync.Mutex
	view View
}

// New returns an Agenda with an empty, not yet loaded view.
func New(log *logrus.Entry, store Store, palette marker.Palette) *Agenda {
	a := &Agenda{
		Log:     log,
		Store:   store,
		Palette: palette,
	}
	a.view = a.build(false, nil, marker.Map{}, "")
	return a
}

// View returns the current snapshot.
func (a *Agenda) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.view
}

// Load runs the initial fetch. A failure is logged and leaves an empty,
// loaded view so the calendar can still render.
func (a *Agenda) Load(ctx context.Context) View {
	if _, err := a.Refresh(ctx); err != nil {
		a.logger().WithError(err).Error("failed to fetch events")

		a.mu.Lock()
		a.view.Loaded = true
		a.mu.Unlock()
	}

	return a.View()
}

// Refresh fetches every event, re-projects and re-applies the current
// selection. On failure the previous view is kept.
func (a *Agenda) Refresh(ctx context.Context) (View, error) {
	fetched, err := a.Store.List(ctx)
	if err != nil {
		return a.View(), fmt.Errorf("error fetching events %w", err)
	}

	markers, err := marker.Project(fetched, a.Palette)
	if err != nil {
		return a.View(), fmt.Errorf("error projecting events %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.view = a.build(true, fetched, markers, a.view.Selection.Date)

	a.logger().WithFields(logrus.Fields{
		"count": len(fetched),
		"days":  len(markers),
	}).Info("events refreshed")

	return a.view, nil
}

// SelectDay records a day press and recomputes the display overlay without
// touching the store.
func (a *Agenda) SelectDay(date string) (View, error) {
	if err := calendar.ValidateDate(date); err != nil {
		return a.View(), fmt.Errorf("error selecting day %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.view = a.build(a.view.Loaded, a.view.Events, a.view.Markers, date)

	return a.view, nil
}

// Add creates an event and then refreshes.
func (a *Agenda) Add(ctx context.Context, input calendar.EventInput) (View, error) {
	if err := a.Store.Create(ctx, input); err != nil {
		return a.View(), fmt.Errorf("error adding event %w", err)
	}

	a.logger().WithField("date", input.Date).Info("event added")

	return a.afterMutation(ctx)
}

// Edit replaces title, time and description of the event with id, keeping
// its date. Title and time are required; the description may be empty.
func (a *Agenda) Edit(ctx context.Context, id calendar.ID, edit Edit) (View, error) {
	if strings.TrimSpace(edit.Title) == "" || strings.TrimSpace(edit.Time) == "" {
		return a.View(), fmt.Errorf("error editing event %s %w: title and time are required", id, calendar.ErrMalformedInput)
	}

	clock, err := calendar.ParseClock(edit.Time)
	if err != nil {
		return a.View(), fmt.Errorf("error editing event %s %w", id, err)
	}

	existing, ok := a.find(id)
	if !ok {
		return a.View(), fmt.Errorf("error editing event %s %w: not in the current view", id, calendar.ErrMalformedInput)
	}

	input := existing.Input()
	input.Title = edit.Title
	input.Time = clock
	input.Description = edit.Description

	if err := a.Store.Update(ctx, id, input); err != nil {
		return a.View(), fmt.Errorf("error editing event %s %w", id, err)
	}

	a.logger().WithField("id", id).Info("event updated")

	return a.afterMutation(ctx)
}

// Delete removes an event and then refreshes.
func (a *Agenda) Delete(ctx context.Context, id calendar.ID) (View, error) {
	if err := a.Store.Delete(ctx, id); err != nil {
		return a.View(), fmt.Errorf("error deleting event %s %w", id, err)
	}

	a.logger().WithField("id", id).Info("event deleted")

	return a.afterMutation(ctx)
}

// Find looks an event up by id in the current view.
func (a *Agenda) Find(id calendar.ID) (calendar.Event, bool) {
	return a.find(id)
}

func (a *Agenda) find(id calendar.ID) (calendar.Event, bool) {
	for _, event := range a.View().Events {
		if event.ID == id {
			return event, true
		}
	}
	return calendar.Event{}, false
}

func (a *Agenda) afterMutation(ctx context.Context) (View, error) {
	view, err := a.Refresh(ctx)
	if err != nil {
		return view, fmt.Errorf("%w: %w", ErrStaleView, err)
	}
	return view, nil
}

func (a *Agenda) build(loaded bool, events []calendar.Event, markers marker.Map, date string) View {
	if events == nil {
		events = []calendar.Event{}
	}
	return View{
		Loaded:    loaded,
		Events:    events,
		Markers:   markers,
		Selection: marker.Reconcile(events, markers, date, a.Palette),
	}
}

func (a *Agenda) logger() *logrus.Entry {
	if a.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return a.Log
}
