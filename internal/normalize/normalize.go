// Package normalize maps raw channel webhook payloads onto the canonical order record.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"orderdesk/internal/models"
)

// ErrNormalization is wrapped by every NormalizationError
var ErrNormalization = errors.New("normalization failed")

// NormalizationError reports a payload field with the wrong structural type
type NormalizationError struct {
	Channel models.Source
	Field   string
	Reason  string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s payload: field %q %s", e.Channel, e.Field, e.Reason)
}

func (e *NormalizationError) Unwrap() error {
	return ErrNormalization
}

// Normalizer converts one channel's payload into an Order
type Normalizer interface {
	Source() models.Source
	Normalize(payload map[string]any) (*models.Order, error)
}

// Option configures a normalizer
type Option func(*clock)

// WithClock overrides the time source used to stamp orders
func WithClock(now func() time.Time) Option {
	return func(c *clock) {
		c.now = now
	}
}

// WithLocation sets the zone order timestamps are rendered in
func WithLocation(loc *time.Location) Option {
	return func(c *clock) {
		if loc != nil {
			c.loc = loc
		}
	}
}

type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c clock) stamp() string {
	return c.now().In(c.loc).Truncate(time.Second).Format(models.TimestampLayout)
}

// Decode parses a webhook body, keeping numbers in their original textual form
func Decode(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("failed to decode payload: empty object")
	}
	return payload, nil
}
