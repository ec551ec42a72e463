package telemetry

import (
	"math"
	"sync"
	"time"

	"github.com/urmzd/guardit/pkg/alert"
)

// Detector thresholds.
const (
	FallThreshold    = 20.0  // g
	RestDeviation    = 0.1   // |magnitude - 1g|
	UnusualChange    = 0.1   // change metric
	GyroThreshold    = 5.0   // gyroscope magnitude, used when no change value is present
	SpikeThreshold   = 0.01  // change that starts a spike
	SettleThreshold  = 0.005 // rolling average that clears the spike latch
	ChangeWindowSize = 5
	SettleSamples    = 2
)

// Detector names reported on events.
const (
	DetectorAlertFlag = "alert_flag"
	DetectorAlertType = "alert_type"
	DetectorShake     = "shake"
	DetectorThreshold = "threshold"
	DetectorSpike     = "spike"
	DetectorDeviation = "deviation"
	DetectorFall      = "fall"
	DetectorUnusual   = "unusual_movement"
	DetectorDetection = "detection"
	DetectorBuzzer    = "buzzer"
)

// Event is one alert condition that became true.
type Event struct {
	Kind     alert.Kind `json:"kind"`
	Detector string     `json:"detector"`
	Message  string     `json:"message"`
}

// DetectorConfig tunes detector behavior.
type DetectorConfig struct {
	// EdgeGateShake makes the shake flag fire only on false->true like the other detectors.
	EdgeGateShake bool
}

// DetectorState is a snapshot of the detectors' memory.
type DetectorState struct {
	LastAlertActive    bool      `json:"last_alert_active"`
	RecentChangeWindow []float64 `json:"recent_change_window"`
	Elevated           bool      `json:"elevated"`
	LastSpikeAt        time.Time `json:"last_spike_at,omitempty"`
}

// Detectors evaluates every heuristic against a reading in a fixed order.
// Device flags (alert, alertType) and the spike latch fire on a false->true edge.
// The shake flag, declared threshold, rest deviation, fall and unusual movement
// fire on every reading that meets their condition; the dispatcher cooldown
// deduplicates them.
type Detectors struct {
	cfg DetectorConfig

	mu              sync.Mutex
	lastAlertActive bool
	lastAlertType   string
	shakeActive     bool
	window          []float64
	elevated        bool
	lastSpikeAt     time.Time
}

// NewDetectors creates detectors with empty state.
func NewDetectors(cfg DetectorConfig) *Detectors {
	return &Detectors{cfg: cfg}
}

// Evaluate runs all detectors on r (raw is the payload r came from) and returns the
// events that fired. No detector short-circuits another.
func (d *Detectors) Evaluate(raw map[string]any, r Reading) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	var events []Event

	// Explicit alert flag. A missing flag leaves the previous state.
	if active, ok := boolOf(raw["alert"]); ok {
		if active && !d.lastAlertActive {
			events = append(events, Event{alert.KindMotion, DetectorAlertFlag, "Device movement detected"})
		}
		d.lastAlertActive = active
	}

	alertType, _ := raw["alertType"].(string)
	if alertType != d.lastAlertType {
		switch alertType {
		case string(alert.KindSuspiciousActivity):
			events = append(events, Event{alert.KindSuspiciousActivity, DetectorAlertType, "Suspicious activity was detected"})
		case string(alert.KindProximity):
			events = append(events, Event{alert.KindProximity, DetectorAlertType, "Person detected too close to camera"})
		}
	}
	d.lastAlertType = alertType

	shake, _ := boolOf(raw["shake_detected"])
	if shake && (!d.cfg.EdgeGateShake || !d.shakeActive) {
		events = append(events, Event{alert.KindMotion, DetectorShake, "Shake detected"})
	}
	d.shakeActive = shake

	if threshold, ok := thresholdOf(raw); ok && r.DeviceChange && r.Change > threshold {
		events = append(events, Event{alert.KindMotion, DetectorThreshold, "Movement exceeded device threshold"})
	}

	if e, ok := d.spike(r); ok {
		events = append(events, e)
	}

	if math.Abs(r.Magnitude-1.0) > RestDeviation {
		events = append(events, Event{alert.KindUnusualMovement, DetectorDeviation, "Device moved from rest"})
	}

	if r.Magnitude > FallThreshold {
		events = append(events, Event{alert.KindFall, DetectorFall, "Possible fall detected"})
	}

	var unusual bool
	if r.Change != 0 {
		unusual = r.Change > UnusualChange
	} else {
		unusual = r.Gyro.Magnitude() > GyroThreshold
	}
	if unusual {
		events = append(events, Event{alert.KindUnusualMovement, DetectorUnusual, "Unusual movement detected"})
	}

	return events
}

// spike keeps the rolling change window and applies latch hysteresis.
func (d *Detectors) spike(r Reading) (Event, bool) {
	d.window = append(d.window, r.Change)
	if len(d.window) > ChangeWindowSize {
		d.window = d.window[len(d.window)-ChangeWindowSize:]
	}

	if d.elevated && d.settledAverage() < SettleThreshold {
		d.elevated = false
	}

	if r.Change > SpikeThreshold && !d.elevated {
		d.elevated = true
		d.lastSpikeAt = r.Timestamp
		return Event{alert.KindUnusualMovement, DetectorSpike, "Sudden movement spike"}, true
	}
	return Event{}, false
}

func (d *Detectors) settledAverage() float64 {
	n := SettleSamples
	if len(d.window) < n {
		n = len(d.window)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range d.window[len(d.window)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// State returns a snapshot of the detector memory.
func (d *Detectors) State() DetectorState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DetectorState{
		LastAlertActive:    d.lastAlertActive,
		RecentChangeWindow: append([]float64(nil), d.window...),
		Elevated:           d.elevated,
		LastSpikeAt:        d.lastSpikeAt,
	}
}

// Reset clears all detector memory.
func (d *Detectors) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastAlertActive = false
	d.lastAlertType = ""
	d.shakeActive = false
	d.window = nil
	d.elevated = false
	d.lastSpikeAt = time.Time{}
}

// thresholdOf reads a device-declared limit from the payload top level or its accelerometer block.
func thresholdOf(raw map[string]any) (float64, bool) {
	if t, ok := numberOf(raw["threshold"]); ok {
		return t, true
	}
	if accel, ok := raw["accelerometer"].(map[string]any); ok {
		return numberOf(accel["threshold"])
	}
	return 0, false
}
