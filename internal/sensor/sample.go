// Package sensor delivers compass samples to a heading filter, either from a
// newline-delimited JSON stream or from an MQTT topic.
package sensor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/smokyabdulrahman/salat/internal/heading"
)

// ErrInvalidSample is returned for payloads that parse but carry impossible
// values.
var ErrInvalidSample = errors.New("invalid compass sample")

// Sample is the wire form of one compass reading:
//
//	{"heading": 12.3, "declination": 4.1, "ts": 1718000000000}
type Sample struct {
	Heading     float64 `json:"heading"`
	Declination float64 `json:"declination,omitempty"`
	Timestamp   int64   `json:"ts"`
}

// Source produces samples until it is exhausted or ctx is done.
type Source interface {
	// Run calls handle for every valid sample, in arrival order, from a
	// single goroutine. It returns nil when the source ends or ctx is
	// cancelled.
	Run(ctx context.Context, handle func(heading.Sample)) error
}

// Decode parses and validates one JSON payload.
func Decode(payload []byte) (heading.Sample, error) {
	var s Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return heading.Sample{}, fmt.Errorf("decode sample: %w", err)
	}
	if err := s.Validate(); err != nil {
		return heading.Sample{}, err
	}
	return heading.Sample{
		Heading:     s.Heading,
		Declination: s.Declination,
		TimestampMs: s.Timestamp,
	}, nil
}

// Validate checks the ranges of the sample's fields.
func (s Sample) Validate() error {
	switch {
	case math.IsNaN(s.Heading) || s.Heading < 0 || s.Heading >= 360:
		return fmt.Errorf("%w: heading %v outside [0, 360)", ErrInvalidSample, s.Heading)
	case math.IsNaN(s.Declination) || math.Abs(s.Declination) > 180:
		return fmt.Errorf("%w: declination %v outside [-180, 180]", ErrInvalidSample, s.Declination)
	case s.Timestamp <= 0:
		return fmt.Errorf("%w: ts is required", ErrInvalidSample)
	}
	return nil
}
