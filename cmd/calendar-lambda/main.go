package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	cfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/adiazny/calendar-events/internal/pkg/agenda"
	"github.com/adiazny/calendar-events/internal/pkg/calendar"
	"github.com/adiazny/calendar-events/internal/pkg/config"
	"github.com/adiazny/calendar-events/internal/pkg/events"
	"github.com/adiazny/calendar-events/internal/pkg/share"
)

/*
	Runs on an EventBridge schedule: fetches every event, selects today in
	TIMEZONE and publishes that day's agenda to SHARE_TOPIC_ARN.
*/

type Response struct {
	Date      string           `json:"date"`
	Count     int              `json:"count"`
	MessageID string           `json:"message_id"`
	Events    []calendar.Event `json:"events"`
}

func setup() (*config.Config, error) {
	_, err := maxprocs.Set()
	if err != nil {
		return nil, fmt.Errorf("error setting GOMAXPROCS %w", err)
	}

	envVars, err := config.Parse()
	if err != nil {
		return nil, err
	}

	if envVars.TopicARN == "" {
		return nil, fmt.Errorf("error parsing environment variables: SHARE_TOPIC_ARN is required")
	}

	return envVars, nil
}

func HandleRequest(ctx context.Context) (Response, error) {
	envVars, err := setup()
	if err != nil {
		return Response{}, err
	}

	log := envVars.NewLogger("calendar-lambda")
	log.Info("starting up")

	defer log.Info("shutting down")

	loc, err := envVars.Location()
	if err != nil {
		return Response{}, err
	}

	awsConfig, err := cfg.LoadDefaultConfig(ctx)
	if err != nil {
		log.WithError(err).Error()
		return Response{}, fmt.Errorf("error loading AWS config %w", err)
	}

	store := &events.Client{
		Log:    log,
		Config: events.Config{BaseURL: envVars.BaseURL},
		HTTP: &http.Client{
			Timeout: envVars.Timeout,
		},
	}

	publisher := &share.Publisher{
		Log:      log,
		SNS:      sns.NewFromConfig(awsConfig),
		TopicARN: envVars.TopicARN,
	}

	return publishToday(ctx, agenda.New(log, store, envVars.Palette()), publisher, time.Now().In(loc))
}

// publishToday refreshes the agenda, selects now's date and publishes it.
// A failed fetch is an error here: publishing an empty agenda would read
// as "nothing today".
func publishToday(ctx context.Context, a *agenda.Agenda, publisher *share.Publisher, now time.Time) (Response, error) {
	if _, err := a.Refresh(ctx); err != nil {
		return Response{}, err
	}

	today := now.Format(calendar.DateLayout)

	view, err := a.SelectDay(today)
	if err != nil {
		return Response{}, err
	}

	digest := share.Digest{Date: today, Events: view.Selection.Events}

	messageID, err := publisher.PublishDigest(ctx, digest)
	if err != nil {
		return Response{}, err
	}

	return Response{
		Date:      today,
		Count:     len(digest.Events),
		MessageID: messageID,
		Events:    digest.Events,
	}, nil
}

func main() {
	lambda.Start(HandleRequest)
}
