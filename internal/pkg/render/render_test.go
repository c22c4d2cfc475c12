package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/adiazny/calendar-events/internal/pkg/calendar"
	"github.com/adiazny/calendar-events/internal/pkg/marker"
	"github.com/adiazny/calendar-events/internal/pkg/render"
)

func sample() ([]calendar.Event, marker.Map) {
	events := []calendar.Event{
		{ID: "1", Title: "Standup", Description: "Daily sync", Date: "2024-05-01", Time: calendar.MustParseClock("09:00:00")},
		{ID: "2", Title: "Lunch", Date: "2024-05-01", Time: calendar.MustParseClock("12:30:00")},
		{ID: "3", Title: "Dentist", Date: "2024-05-02", Time: calendar.MustParseClock("15:45:00")},
	}
	markers, err := marker.Project(events, marker.DefaultPalette())
	if err != nil {
		panic(err)
	}
	return events, markers
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Format
		wantErr bool
	}{
		{in: "", want: render.FormatText},
		{in: "JSON", want: render.FormatJSON},
		{in: "yaml", want: render.FormatYAML},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := render.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrite_TextMarkers(t *testing.T) {
	events, markers := sample()
	selection := marker.Reconcile(events, markers, "2024-05-02", marker.DefaultPalette())

	var buf bytes.Buffer
	if err := render.Write(&buf, render.FormatText, selection.Markers); err != nil {
		t.Fatal(err)
	}

	want := "  2024-05-01  ••  [1 2]\n* 2024-05-02  •  [3]\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}

func TestWrite_TextSelection(t *testing.T) {
	events, markers := sample()

	tests := []struct {
		name string
		date string
		want string
	}{
		{
			name: "events",
			date: "2024-05-01",
			want: "Events on 2024-05-01\n" +
				"2024-05-01 09:00  Standup - Daily sync (id 1)\n" +
				"2024-05-01 12:30  Lunch (id 2)\n",
		},
		{
			name: "empty day",
			date: "2024-05-05",
			want: "Events on 2024-05-05\nNo events found for this day.\n",
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := render.Write(&buf, render.FormatText, marker.Reconcile(events, markers, tt.date, marker.DefaultPalette()))
			if err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("Write() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWrite_JSONMarkers(t *testing.T) {
	_, markers := sample()

	var buf bytes.Buffer
	if err := render.Write(&buf, render.FormatJSON, markers); err != nil {
		t.Fatal(err)
	}

	var got map[string]struct {
		Dots []struct {
			Key   string `json:"key"`
			Color string `json:"color"`
		} `json:"dots"`
		Selected      bool   `json:"selected"`
		SelectedColor string `json:"selectedColor"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}

	day := got["2024-05-01"]
	if len(day.Dots) != 2 || day.Dots[0].Key != "1" || day.Dots[0].Color != "blue" {
		t.Errorf("2024-05-01 = %+v", day)
	}
	if day.Selected || day.SelectedColor != "transparent" {
		t.Errorf("2024-05-01 selection = %v/%q", day.Selected, day.SelectedColor)
	}
}

func TestWrite_YAMLEvents(t *testing.T) {
	events, _ := sample()

	var buf bytes.Buffer
	if err := render.Write(&buf, render.FormatYAML, events[:1]); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "time: \"09:00:00\"") && !strings.Contains(buf.String(), "time: 09:00:00") {
		t.Errorf("yaml output does not carry the store time form:\n%s", buf.String())
	}

	var got []map[string]string
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0]["title"] != "Standup" || got[0]["time"] != "09:00:00" {
		t.Errorf("decoded yaml = %v", got)
	}
}
