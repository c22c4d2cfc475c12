package calendar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the store's calendar date format. Dates in this layout sort
// correctly as plain strings.
const DateLayout = "2006-01-02"

// ErrMalformedInput marks records or payloads that are missing fields or carry
// dates and times in an unexpected shape.
var ErrMalformedInput = errors.New("malformed input")

// ID is the store-assigned event identifier. The store may send it as a JSON
// number or string; it is kept as a string either way.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("error decoding event id %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("error decoding event id %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

// Event is a read-only copy of one record held by the remote store.
type Event struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        Clock  `json:"time"`
}

// EventInput is the body sent when creating or replacing a record.
type EventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        Clock  `json:"time"`
}

// Validate checks an outgoing payload before any request is built.
func (in EventInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrMalformedInput)
	}
	if err := ValidateDate(in.Date); err != nil {
		return err
	}
	if in.Time.IsZero() {
		return fmt.Errorf("%w: time is required", ErrMalformedInput)
	}
	return nil
}

// Input returns the payload that would recreate e as-is.
func (e Event) Input() EventInput {
	return EventInput{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
	}
}

// ValidateDate reports whether date is a real calendar day in DateLayout.
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("%w: date is required", ErrMalformedInput)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrMalformedInput, date)
	}
	return nil
}
