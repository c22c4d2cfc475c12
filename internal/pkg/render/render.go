package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adiazny/calendar-events/internal/pkg/agenda"
	"github.com/adiazny/calendar-events/internal/pkg/calendar"
	"github.com/adiazny/calendar-events/internal/pkg/marker"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q, want text, json or yaml", s)
	}
}

// Write renders v in the given format. Text output understands views,
// selections, marker maps and event lists; anything else falls back to %v.
func Write(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, v any) error {
	var b strings.Builder

	switch value := v.(type) {
	case agenda.View:
		if value.Selection.Date != "" {
			writeSelection(&b, value.Selection)
		} else {
			writeMarkers(&b, value.Markers)
		}
	case marker.Selection:
		writeSelection(&b, value)
	case marker.Map:
		writeMarkers(&b, value)
	case []calendar.Event:
		writeEvents(&b, value)
	default:
		fmt.Fprintf(&b, "%v\n", value)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkers(b *strings.Builder, markers marker.Map) {
	if len(markers) == 0 {
		b.WriteString("No events.\n")
		return
	}

	dates := make([]string, 0, len(markers))
	for date := range markers {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		marking := markers[date]
		keys := make([]string, 0, len(marking.Dots))
		for _, dot := range marking.Dots {
			keys = append(keys, dot.Key)
		}

		selected := " "
		if marking.Selected {
			selected = "*"
		}
		fmt.Fprintf(b, "%s %s  %s  [%s]\n", selected, date, strings.Repeat("•", len(marking.Dots)), strings.Join(keys, " "))
	}
}

func writeSelection(b *strings.Builder, selection marker.Selection) {
	fmt.Fprintf(b, "Events on %s\n", selection.Date)
	if len(selection.Events) == 0 {
		b.WriteString("No events found for this day.\n")
		return
	}
	writeEvents(b, selection.Events)
}

func writeEvents(b *strings.Builder, events []calendar.Event) {
	for _, event := range events {
		fmt.Fprintf(b, "%s %s  %s", event.Date, event.Time.Short(), event.Title)
		if event.Description != "" {
			fmt.Fprintf(b, " - %s", event.Description)
		}
		fmt.Fprintf(b, " (id %s)\n", event.ID)
	}
}
