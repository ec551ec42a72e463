package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/alert"
	"github.com/urmzd/guardit/pkg/device"
)

// DefaultBuzzerInterval is how often the buzzer status is polled.
const DefaultBuzzerInterval = 2 * time.Second

// DetectionSource reads the on-device detection state.
type DetectionSource interface {
	DetectionStatus(ctx context.Context) (device.DetectionStatus, error)
}

// BuzzerSource reads the buzzer state.
type BuzzerSource interface {
	BuzzerStatus(ctx context.Context) (device.BuzzerStatus, error)
}

// DetectionWatcher raises SuspiciousActivity when the device's person detection
// turns suspicious. Failures are silent.
type DetectionWatcher struct {
	source DetectionSource
	now    func() time.Time

	mu     sync.Mutex
	active bool
}

// NewDetectionWatcher creates a watcher over source.
func NewDetectionWatcher(source DetectionSource) *DetectionWatcher {
	return &DetectionWatcher{source: source, now: time.Now}
}

// Check implements Checker.
func (w *DetectionWatcher) Check(ctx context.Context) []Event {
	status, err := w.source.DetectionStatus(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Detection status unavailable")
		return nil
	}

	suspicious := status.SuspiciousAt(w.now())

	w.mu.Lock()
	defer w.mu.Unlock()
	fire := suspicious && !w.active
	w.active = suspicious
	if !fire {
		return nil
	}
	return []Event{{alert.KindSuspiciousActivity, DetectorDetection, "Suspicious activity was detected"}}
}

// BuzzerWatcher raises MotionAlert when the device buzzer starts sounding,
// whoever triggered it. It runs on its own timer.
type BuzzerWatcher struct {
	source   BuzzerSource
	notifier Notifier

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBuzzerWatcher creates a watcher dispatching to notifier.
func NewBuzzerWatcher(source BuzzerSource, notifier Notifier) *BuzzerWatcher {
	return &BuzzerWatcher{source: source, notifier: notifier}
}

// Check implements Checker.
func (w *BuzzerWatcher) Check(ctx context.Context) []Event {
	status, err := w.source.BuzzerStatus(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Buzzer status unavailable")
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	fire := status.Active && !w.active
	w.active = status.Active
	if !fire {
		return nil
	}
	return []Event{{alert.KindMotion, DetectorBuzzer, "Buzzer activated on device"}}
}

// Start polls the buzzer every interval. A running watcher is restarted.
func (w *BuzzerWatcher) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultBuzzerInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	w.mu.Lock()
	prevCancel, prevDone := w.cancel, w.done
	w.cancel, w.done = cancel, done
	w.mu.Unlock()

	halt(prevCancel, prevDone)

	go func() {
		defer close(done)
		runEvery(ctx, interval, "buzzer", func(ctx context.Context) {
			for _, e := range w.Check(ctx) {
				if ctx.Err() != nil {
					return
				}
				w.notifier.Alert(ctx, e.Kind, e.Message)
			}
		})
	}()
}

// Stop cancels the buzzer timer. Safe to call when not running.
func (w *BuzzerWatcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	halt(cancel, done)
}
