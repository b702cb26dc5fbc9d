// Package heading turns noisy compass samples into a stable display heading
// and the rotation that points a compass needle at the Qibla.
//
// A Filter is owned by one session. Samples may arrive on one goroutine while
// another reads Current; the estimate is an immutable snapshot swapped
// atomically, so neither side ever blocks.
package heading

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/smokyabdulrahman/salat/internal/astro"
)

// DefaultTimeConstant is the smoothing time constant used when New is given
// a non-positive one.
const DefaultTimeConstant = 300 * time.Millisecond

// State is the subscription state of a Filter.
type State int

const (
	Idle State = iota
	Sampling
)

func (s State) String() string {
	if s == Sampling {
		return "sampling"
	}
	return "idle"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Sample is one raw reading from the sensor collaborator.
type Sample struct {
	Heading     float64 // degrees from magnetic north, [0, 360)
	Declination float64 // magnetic declination at the device, degrees east positive
	TimestampMs int64
}

// Smoothed is the filter's output.
type Smoothed struct {
	Heading  float64 `json:"heading"`  // smoothed heading, [0, 360)
	Rotation float64 `json:"rotation"` // qibla - heading, [-180, 180]
	Samples  int     `json:"samples"`  // samples folded into the estimate
	State    State   `json:"state"`
}

type snapshot struct {
	state       State
	heading     float64
	lastTs      int64
	count       int
	initialized bool
}

// Filter is an exponential moving average over headings on the circle.
type Filter struct {
	tau       float64 // milliseconds
	qibla     float64
	trueNorth bool

	snap atomic.Pointer[snapshot]
}

// Option configures a Filter.
type Option func(*Filter)

// WithQiblaBearing sets the bearing Rotation is measured against.
func WithQiblaBearing(deg float64) Option {
	return func(f *Filter) { f.qibla = astro.Normalize360(deg) }
}

// WithTrueNorth adds each sample's declination to its heading before
// smoothing, turning magnetic headings into true ones.
func WithTrueNorth() Option {
	return func(f *Filter) { f.trueNorth = true }
}

// New returns an idle filter with the given time constant.
func New(timeConstant time.Duration, opts ...Option) *Filter {
	if timeConstant <= 0 {
		timeConstant = DefaultTimeConstant
	}
	f := &Filter{tau: float64(timeConstant) / float64(time.Millisecond)}
	for _, opt := range opts {
		opt(f)
	}
	f.snap.Store(&snapshot{})
	return f
}

// TimeConstant returns the smoothing time constant.
func (f *Filter) TimeConstant() time.Duration {
	return time.Duration(f.tau * float64(time.Millisecond))
}

// Subscribe moves the filter to Sampling. Calling it while sampling is a
// no-op.
func (f *Filter) Subscribe() { f.setState(Sampling) }

// Unsubscribe moves the filter to Idle. The estimate is kept but no further
// sample changes it. Calling it while idle is a no-op.
func (f *Filter) Unsubscribe() { f.setState(Idle) }

func (f *Filter) setState(s State) {
	for {
		old := f.snap.Load()
		if old.state == s {
			return
		}
		next := *old
		next.state = s
		if f.snap.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Reset discards the estimate. The next sample initialises it directly.
func (f *Filter) Reset() {
	for {
		old := f.snap.Load()
		if f.snap.CompareAndSwap(old, &snapshot{state: old.state}) {
			return
		}
	}
}

// Update folds a raw heading into the estimate and returns the result.
//
// While idle, and for samples that are not newer than the last one or are
// not finite, the current estimate is returned unchanged.
func (f *Filter) Update(raw, declination float64, timestampMs int64) Smoothed {
	h := raw
	if f.trueNorth {
		h += declination
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return f.Current()
	}
	h = astro.Normalize360(h)

	for {
		old := f.snap.Load()
		if old.state == Idle {
			return f.output(old)
		}

		next := *old
		if !old.initialized {
			next.heading = h
			next.initialized = true
		} else {
			dt := float64(timestampMs - old.lastTs)
			if dt <= 0 {
				return f.output(old)
			}
			alpha := 1 - math.Exp(-dt/f.tau)
			next.heading = astro.Normalize360(old.heading + alpha*astro.ShortestDelta(old.heading, h))
		}
		next.lastTs = timestampMs
		next.count++

		if f.snap.CompareAndSwap(old, &next) {
			return f.output(&next)
		}
	}
}

// UpdateSample is Update for a Sample.
func (f *Filter) UpdateSample(s Sample) Smoothed {
	return f.Update(s.Heading, s.Declination, s.TimestampMs)
}

// Current returns the latest estimate without changing it.
func (f *Filter) Current() Smoothed {
	return f.output(f.snap.Load())
}

func (f *Filter) output(s *snapshot) Smoothed {
	return Smoothed{
		Heading:  s.heading,
		Rotation: astro.Normalize180(f.qibla - s.heading),
		Samples:  s.count,
		State:    s.state,
	}
}
