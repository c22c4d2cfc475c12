package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adiazny/calendar-events/internal/pkg/calendar"
)

const (
	eventsEndpoint = "events/"

	contentTypeHeaderKey = "Content-Type"
	jsonContentType      = "application/json"

	cacheControlHeaderKey = "Cache-Control"
	noCacheValue          = "no-cache"

	requestIDHeaderKey = "X-Request-ID"
)

// ErrNetworkFailure wraps every failed round trip to the store: transport
// errors and non-2xx responses alike.
var ErrNetworkFailure = errors.New("network failure")

// StatusError is returned (wrapped in ErrNetworkFailure) when the store
// answers with an unexpected status code.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error status code from %s %s, got %d", e.Method, e.URL, e.Code)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	// BaseURL is the API root, e.g. http://192.168.1.99:8000/api
	BaseURL string
}

// Client talks to the remote event store. It keeps no state between calls.
type Client struct {
	Log    *logrus.Entry
	Config Config
	HTTP   HTTPClient
}

// List fetches every event in the order the store returns them.
func (client *Client) List(ctx context.Context) ([]calendar.Event, error) {
	resp, err := client.do(ctx, http.MethodGet, client.collectionURL(), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response body %w", ErrNetworkFailure, err)
	}

	events := make([]calendar.Event, 0)

	err = json.Unmarshal(body, &events)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling events response body %w", err)
	}

	client.logger().WithField("count", len(events)).Debug("fetched events")

	return events, nil
}

// Create posts a new event. The response body is ignored.
func (client *Client) Create(ctx context.Context, input calendar.EventInput) error {
	if err := input.Validate(); err != nil {
		return fmt.Errorf("error validating new event %w", err)
	}

	return client.send(ctx, http.MethodPost, client.collectionURL(), input, http.StatusOK, http.StatusCreated)
}

// Update replaces every field of the event with id.
func (client *Client) Update(ctx context.Context, id calendar.ID, input calendar.EventInput) error {
	if id == "" {
		return fmt.Errorf("%w: event id is required", calendar.ErrMalformedInput)
	}
	if err := input.Validate(); err != nil {
		return fmt.Errorf("error validating event %s %w", id, err)
	}

	return client.send(ctx, http.MethodPut, client.itemURL(id), input, http.StatusOK, http.StatusNoContent)
}

// Patch sends only the given fields. Any time value in fields is normalised
// to HH:MM:SS first.
func (client *Client) Patch(ctx context.Context, id calendar.ID, fields map[string]string) error {
	if id == "" {
		return fmt.Errorf("%w: event id is required", calendar.ErrMalformedInput)
	}

	payload := make(map[string]string, len(fields))
	for key, value := range fields {
		switch key {
		case "title":
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("%w: title cannot be blank", calendar.ErrMalformedInput)
			}
		case "date":
			if err := calendar.ValidateDate(value); err != nil {
				return err
			}
		case "time":
			clock, err := calendar.ParseClock(value)
			if err != nil {
				return err
			}
			value = clock.String()
		case "description":
		default:
			return fmt.Errorf("%w: unknown event field %q", calendar.ErrMalformedInput, key)
		}
		payload[key] = value
	}

	return client.send(ctx, http.MethodPatch, client.itemURL(id), payload, http.StatusOK, http.StatusNoContent)
}

// Delete removes the event with id.
func (client *Client) Delete(ctx context.Context, id calendar.ID) error {
	if id == "" {
		return fmt.Errorf("%w: event id is required", calendar.ErrMalformedInput)
	}

	resp, err := client.do(ctx, http.MethodDelete, client.itemURL(id), nil, http.StatusOK, http.StatusAccepted, http.StatusNoContent)
	if err != nil {
		return err
	}

	return resp.Body.Close()
}

func (client *Client) send(ctx context.Context, method, endpoint string, payload any, okCodes ...int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling request body %w", err)
	}

	resp, err := client.do(ctx, method, endpoint, data, okCodes...)
	if err != nil {
		return err
	}

	return resp.Body.Close()
}

// do performs one request. On success the caller owns resp.Body.
func (client *Client) do(ctx context.Context, method, endpoint string, body []byte, okCodes ...int) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating http request %w", err)
	}

	requestID := uuid.NewString()

	req.Header.Add(cacheControlHeaderKey, noCacheValue)
	req.Header.Add(requestIDHeaderKey, requestID)
	if body != nil {
		req.Header.Add(contentTypeHeaderKey, jsonContentType)
	}

	log := client.logger().WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"url":        endpoint,
	})

	resp, err := client.HTTP.Do(req)
	if err != nil {
		log.WithError(err).Warn("event store request failed")
		return nil, fmt.Errorf("%w: error performing http request %w", ErrNetworkFailure, err)
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}

	for _, code := range okCodes {
		if resp.StatusCode == code {
			log.WithField("status", resp.StatusCode).Debug("event store request done")
			return resp, nil
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	log.WithField("status", resp.StatusCode).Warn("event store returned unexpected status")

	return nil, fmt.Errorf("%w: %w", ErrNetworkFailure, &StatusError{Method: method, URL: endpoint, Code: resp.StatusCode})
}

func (client *Client) collectionURL() string {
	return strings.TrimRight(client.Config.BaseURL, "/") + "/" + eventsEndpoint
}

func (client *Client) itemURL(id calendar.ID) string {
	return client.collectionURL() + url.PathEscape(id.String()) + "/"
}

func (client *Client) logger() *logrus.Entry {
	if client.Log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return client.Log
}
