package calendar

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day with second precision. The store speaks HH:MM:SS
// while people type HH:MM; both parse to the same Clock.
type Clock struct {
	Hour   int
	Minute int
	Second int
	set    bool
}

// NewClock builds a Clock, rejecting out of range components.
func NewClock(hour, minute, second int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return Clock{}, fmt.Errorf("%w: time %02d:%02d:%02d out of range", ErrMalformedInput, hour, minute, second)
	}
	return Clock{Hour: hour, Minute: minute, Second: second, set: true}, nil
}

// ParseClock accepts "HH:MM" or "HH:MM:SS". A fractional seconds suffix
// ("10:00:00.123456") is accepted and dropped.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	malformed := fmt.Errorf("%w: time %q is not HH:MM or HH:MM:SS", ErrMalformedInput, s)

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Clock{}, malformed
	}

	if len(parts) == 3 {
		whole, frac, found := strings.Cut(parts[2], ".")
		if found && (frac == "" || !isDigits(frac)) {
			return Clock{}, malformed
		}
		parts[2] = whole
	}

	var fields [3]int
	for i, p := range parts {
		if len(p) != 2 || !isDigits(p) {
			return Clock{}, malformed
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Clock{}, malformed
		}
		fields[i] = n
	}

	return NewClock(fields[0], fields[1], fields[2])
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MustParseClock is ParseClock for constants and tests.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero reports whether the clock was never set. Midnight is not zero.
func (c Clock) IsZero() bool {
	return !c.set
}

// String is the store form, HH:MM:SS.
func (c Clock) String() string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// Short is the display form, HH:MM.
func (c Clock) Short() string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On combines the clock with a DateLayout date in loc.
func (c Clock) On(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrMalformedInput, date)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, c.Second, 0, loc), nil
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: time must be a string", ErrMalformedInput)
	}
	if s == "" {
		*c = Clock{}
		return nil
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML keeps YAML output in the same HH:MM:SS form as JSON.
func (c Clock) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
