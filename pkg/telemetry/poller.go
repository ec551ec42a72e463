package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/alert"
)

// DefaultInterval is the telemetry polling period.
const DefaultInterval = 500 * time.Millisecond

// Source yields one raw telemetry payload per call.
type Source interface {
	FetchReading(ctx context.Context) (map[string]any, error)
}

// Notifier receives detected alert conditions.
type Notifier interface {
	Alert(ctx context.Context, kind alert.Kind, what string) *alert.Record
}

// Checker contributes extra events on every successful tick.
type Checker interface {
	Check(ctx context.Context) []Event
}

// Poller runs the fetch, normalize, detect, notify cycle on a timer.
type Poller struct {
	source     Source
	normalizer *Normalizer
	detectors  *Detectors
	notifier   Notifier
	checkers   []Checker

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration

	latestMu  sync.RWMutex
	latest    *Reading
	latestRaw map[string]any
}

// NewPoller wires a poller. checkers run after the detectors on each successful tick.
func NewPoller(source Source, normalizer *Normalizer, detectors *Detectors, notifier Notifier, checkers ...Checker) *Poller {
	return &Poller{
		source:     source,
		normalizer: normalizer,
		detectors:  detectors,
		notifier:   notifier,
		checkers:   checkers,
	}
}

// Start begins polling every interval. A running poller is stopped first.
func (p *Poller) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// Swap under one lock so concurrent Starts never orphan a timer.
	p.mu.Lock()
	prevCancel, prevDone := p.cancel, p.done
	p.cancel, p.done, p.interval = cancel, done, interval
	p.mu.Unlock()

	if halt(prevCancel, prevDone) {
		log.Info().Msg("Telemetry polling restarted")
	}

	go func() {
		defer close(done)
		runEvery(ctx, interval, "telemetry", func(ctx context.Context) {
			if _, err := p.Poll(ctx); err != nil {
				log.Debug().Err(err).Msg("Telemetry tick skipped")
			}
		})
	}()

	log.Info().Dur("interval", interval).Msg("Telemetry polling started")
}

// Stop cancels the timer and any in-flight request. Safe to call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if halt(cancel, done) {
		log.Info().Msg("Telemetry polling stopped")
	}
}

// Running reports whether the timer is active, and its interval.
func (p *Poller) Running() (bool, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil, p.interval
}

// Poll performs one cycle and returns the events it dispatched. Results of a
// cycle whose ctx was cancelled mid-flight are discarded.
func (p *Poller) Poll(ctx context.Context) ([]Event, error) {
	raw, err := p.source.FetchReading(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch reading: %w", err)
	}

	reading, err := p.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	p.latestMu.Lock()
	p.latest = &reading
	p.latestRaw = raw
	p.latestMu.Unlock()

	events := p.detectors.Evaluate(raw, reading)
	for _, c := range p.checkers {
		events = append(events, c.Check(ctx)...)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	for _, e := range events {
		log.Debug().Str("detector", e.Detector).Str("kind", string(e.Kind)).Msg("Alert condition detected")
		p.notifier.Alert(ctx, e.Kind, e.Message)
	}
	return events, nil
}

// Latest returns the most recent normalized reading.
func (p *Poller) Latest() (Reading, map[string]any, bool) {
	p.latestMu.RLock()
	defer p.latestMu.RUnlock()
	if p.latest == nil {
		return Reading{}, nil, false
	}
	return *p.latest, p.latestRaw, true
}

// Detectors returns the poller's detector set.
func (p *Poller) Detectors() *Detectors {
	return p.detectors
}

// halt cancels a timer and waits for its goroutine to exit. It reports whether
// a timer was running.
func halt(cancel context.CancelFunc, done <-chan struct{}) bool {
	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// runEvery calls fn every interval until ctx is done. Each call is isolated:
// a panic is logged and the timer keeps running.
func runEvery(ctx context.Context, interval time.Duration, name string, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			safeTick(ctx, name, fn)
		}
	}
}

func safeTick(ctx context.Context, name string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("timer", name).Msg("Recovered from panic in timer tick")
		}
	}()
	fn(ctx)
}
