package main

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/sirupsen/logrus"

	"github.com/adiazny/calendar-events/internal/pkg/agenda"
	"github.com/adiazny/calendar-events/internal/pkg/calendar"
	"github.com/adiazny/calendar-events/internal/pkg/events"
	"github.com/adiazny/calendar-events/internal/pkg/marker"
	"github.com/adiazny/calendar-events/internal/pkg/share"
)

type listStore struct {
	events []calendar.Event
	err    error
}

func (s *listStore) List(ctx context.Context) ([]calendar.Event, error) {
	return s.events, s.err
}

func (s *listStore) Create(ctx context.Context, input calendar.EventInput) error {
	return errors.New("not implemented")
}

func (s *listStore) Update(ctx context.Context, id calendar.ID, input calendar.EventInput) error {
	return errors.New("not implemented")
}

func (s *listStore) Delete(ctx context.Context, id calendar.ID) error {
	return errors.New("not implemented")
}

type mockSNS struct {
	inputs []*sns.PublishInput
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	return &sns.PublishOutput{MessageId: aws.String("msg-42")}, nil
}

func TestPublishToday(t *testing.T) {
	log := logrus.NewEntry(logrus.New())
	now := time.Date(2024, time.May, 1, 7, 0, 0, 0, time.UTC)

	standup := calendar.Event{ID: "1", Title: "Standup", Date: "2024-05-01", Time: calendar.MustParseClock("09:00:00")}
	dentist := calendar.Event{ID: "3", Title: "Dentist", Date: "2024-05-02", Time: calendar.MustParseClock("15:45:00")}

	tests := []struct {
		name        string
		store       *listStore
		want        Response
		wantErr     bool
		wantMessage string
	}{
		{
			name:        "events today",
			store:       &listStore{events: []calendar.Event{standup, dentist}},
			want:        Response{Date: "2024-05-01", Count: 1, MessageID: "msg-42", Events: []calendar.Event{standup}},
			wantMessage: "09:00  Standup",
		},
		{
			name:        "nothing today",
			store:       &listStore{events: []calendar.Event{dentist}},
			want:        Response{Date: "2024-05-01", Count: 0, MessageID: "msg-42", Events: []calendar.Event{}},
			wantMessage: "No events found for this day.",
		},
		{
			name:    "store unreachable",
			store:   &listStore{err: events.ErrNetworkFailure},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			snsClient := &mockSNS{}
			publisher := &share.Publisher{Log: log, SNS: snsClient, TopicARN: "arn:aws:sns:us-east-1:123456789012:agenda"}

			got, err := publishToday(context.Background(), agenda.New(log, tt.store, marker.DefaultPalette()), publisher, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("publishToday() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if len(snsClient.inputs) != 0 {
					t.Errorf("published despite a failed fetch")
				}
				return
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("publishToday() = %+v, want %+v", got, tt.want)
			}
			if len(snsClient.inputs) != 1 {
				t.Fatalf("published %d messages, want 1", len(snsClient.inputs))
			}
			if msg := aws.ToString(snsClient.inputs[0].Message); !strings.Contains(msg, tt.wantMessage) {
				t.Errorf("message = %q, want it to contain %q", msg, tt.wantMessage)
			}
		})
	}
}
