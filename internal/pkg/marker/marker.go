// Package marker turns fetched events into per-day calendar markings and
// overlays the user's selected day on top of them.
package marker

import (
	"fmt"

	"github.com/adiazny/calendar-events/internal/pkg/calendar"
)

const (
	DefaultDotColor       = "blue"
	DefaultHighlightColor = "#00adf5"

	// UnselectedColor is the selectedColor of every projected entry.
	UnselectedColor = "transparent"
)

// Palette holds the presentation constants used by Project and Reconcile.
type Palette struct {
	DotColor       string
	HighlightColor string
}

// DefaultPalette returns the stock dot and highlight colours.
func DefaultPalette() Palette {
	return Palette{
		DotColor:       DefaultDotColor,
		HighlightColor: DefaultHighlightColor,
	}
}

type Dot struct {
	Key   string `json:"key" yaml:"key"`
	Color string `json:"color" yaml:"color"`
}

type Marking struct {
	Dots          []Dot  `json:"dots" yaml:"dots"`
	Selected      bool   `json:"selected" yaml:"selected"`
	SelectedColor string `json:"selectedColor" yaml:"selectedColor"`
}

// Map is keyed by calendar date (calendar.DateLayout).
type Map map[string]Marking

// DotCount is the total number of dots across every date.
func (m Map) DotCount() int {
	n := 0
	for _, marking := range m {
		n += len(marking.Dots)
	}
	return n
}

// Clone deep-copies m so callers can never alias each other's dot slices.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for date, marking := range m {
		out[date] = marking.clone()
	}
	return out
}

func (mk Marking) clone() Marking {
	dots := make([]Dot, len(mk.Dots))
	copy(dots, mk.Dots)
	mk.Dots = dots
	return mk
}

// Project groups events by date, one dot per event in encounter order.
// A record without a valid date fails the whole projection rather than
// landing on the wrong day.
func Project(events []calendar.Event, palette Palette) (Map, error) {
	markers := make(Map)

	for i, event := range events {
		if err := calendar.ValidateDate(event.Date); err != nil {
			return nil, fmt.Errorf("error projecting event %d (id %q) %w", i, event.ID, err)
		}

		marking, ok := markers[event.Date]
		if !ok {
			marking = Marking{
				Dots:          []Dot{},
				Selected:      false,
				SelectedColor: UnselectedColor,
			}
		}
		marking.Dots = append(marking.Dots, Dot{Key: event.ID.String(), Color: palette.DotColor})
		markers[event.Date] = marking
	}

	return markers, nil
}

// Selection is the display-ready result of reconciling a selected day.
type Selection struct {
	Date    string           `json:"date" yaml:"date"`
	Events  []calendar.Event `json:"events" yaml:"events"`
	Markers Map              `json:"markers" yaml:"markers"`
}

// Reconcile filters events down to the selected date and marks that date as
// selected in a copy of markers. An empty date means nothing is selected.
// Neither events nor markers are modified, so repeated calls with the same
// arguments give equal results.
func Reconcile(events []calendar.Event, markers Map, date string, palette Palette) Selection {
	return Selection{
		Date:    date,
		Events:  filterEvents(events, func(event calendar.Event) bool { return date != "" && event.Date == date }),
		Markers: overlay(markers, date, palette),
	}
}

func filterEvents(events []calendar.Event, matchFunc func(event calendar.Event) bool) []calendar.Event {
	items := make([]calendar.Event, 0)

	for _, event := range events {
		if matchFunc(event) {
			items = append(items, event)
		}
	}

	return items
}

func overlay(markers Map, date string, palette Palette) Map {
	display := markers.Clone()
	if date == "" {
		return display
	}

	marking, ok := display[date]
	if !ok {
		marking = Marking{Dots: []Dot{}}
	}
	marking.Selected = true
	marking.SelectedColor = palette.HighlightColor
	display[date] = marking

	return display
}
