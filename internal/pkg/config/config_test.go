package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adiazny/calendar-events/internal/pkg/config"
	"github.com/adiazny/calendar-events/internal/pkg/marker"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *config.Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{"EVENTS_API_URL": "http://localhost:8000/api"},
			want: &config.Config{
				BaseURL:       "http://localhost:8000/api",
				Timeout:       10 * time.Second,
				DotColor:      "blue",
				SelectedColor: "#00adf5",
				Timezone:      "UTC",
				LogLevel:      "info",
				LogFormat:     "json",
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"EVENTS_API_URL":        "http://192.168.1.99:8000/api",
				"EVENTS_API_TIMEOUT":    "3s",
				"MARKER_DOT_COLOR":      "red",
				"MARKER_SELECTED_COLOR": "#ff0000",
				"TIMEZONE":              "America/New_York",
				"SHARE_TOPIC_ARN":       "arn:aws:sns:us-east-1:123456789012:agenda",
				"LOG_LEVEL":             "debug",
				"LOG_FORMAT":            "text",
			},
			want: &config.Config{
				BaseURL:       "http://192.168.1.99:8000/api",
				Timeout:       3 * time.Second,
				DotColor:      "red",
				SelectedColor: "#ff0000",
				Timezone:      "America/New_York",
				TopicARN:      "arn:aws:sns:us-east-1:123456789012:agenda",
				LogLevel:      "debug",
				LogFormat:     "text",
			},
		},
		{
			name:    "missing base url",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			env:     map[string]string{"EVENTS_API_URL": "http://x", "TIMEZONE": "Mars/Olympus"},
			wantErr: true,
		},
		{
			name:    "non positive timeout",
			env:     map[string]string{"EVENTS_API_URL": "http://x", "EVENTS_API_TIMEOUT": "0s"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"EVENTS_API_URL", "EVENTS_API_TIMEOUT", "MARKER_DOT_COLOR", "MARKER_SELECTED_COLOR",
				"TIMEZONE", "SHARE_TOPIC_ARN", "LOG_LEVEL", "LOG_FORMAT",
			} {
				t.Setenv(key, tt.env[key])
				if _, ok := tt.env[key]; !ok {
					os.Unsetenv(key)
				}
			}

			got, err := config.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if *got != *tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfig_Palette(t *testing.T) {
	cfg := &config.Config{DotColor: "green", SelectedColor: "black"}

	want := marker.Palette{DotColor: "green", HighlightColor: "black"}
	if got := cfg.Palette(); got != want {
		t.Errorf("Palette() = %+v, want %+v", got, want)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level     string
		format    string
		wantLevel logrus.Level
		wantText  bool
	}{
		{level: "debug", format: "json", wantLevel: logrus.DebugLevel},
		{level: "warn", format: "TEXT", wantLevel: logrus.WarnLevel, wantText: true},
		{level: "loud", format: "", wantLevel: logrus.InfoLevel},
	}
	for _, tt := range tests {
		logger := config.NewLogger(tt.level, tt.format)

		if logger.GetLevel() != tt.wantLevel {
			t.Errorf("NewLogger(%q).GetLevel() = %v, want %v", tt.level, logger.GetLevel(), tt.wantLevel)
		}

		_, isText := logger.Formatter.(*logrus.TextFormatter)
		if isText != tt.wantText {
			t.Errorf("NewLogger(%q, %q) text formatter = %v, want %v", tt.level, tt.format, isText, tt.wantText)
		}
	}
}
