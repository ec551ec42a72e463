package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/alert"
)

// ErrPermissionDenied indicates the platform refused notification delivery.
var ErrPermissionDenied = errors.New("notification permission denied")

// DefaultCooldown is the minimum time between two deliveries, across all kinds.
const DefaultCooldown = 2 * time.Second

// Dispatcher turns alert conditions into delivered notifications and history records.
// Deliveries closer together than the cooldown are dropped.
type Dispatcher struct {
	platform Platform
	store    *alert.Store

	mu             sync.Mutex
	cooldown       time.Duration
	lastDispatchAt time.Time
	initialized    bool
	now            func() time.Time
	location       *time.Location

	subscribers   []chan alert.Record
	subscribersMu sync.Mutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCooldown overrides DefaultCooldown.
func WithCooldown(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.cooldown = d }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(disp *Dispatcher) { disp.now = now }
}

// WithLocation sets the timezone used in notification bodies.
func WithLocation(loc *time.Location) Option {
	return func(disp *Dispatcher) {
		if loc != nil {
			disp.location = loc
		}
	}
}

// NewDispatcher creates a dispatcher delivering through platform and recording into store.
func NewDispatcher(platform Platform, store *alert.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		platform: platform,
		store:    store,
		cooldown: DefaultCooldown,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers one notification and appends it to the store.
// It returns nil when the call falls inside the cooldown window, when permission
// is not granted, or when delivery fails. Failures are logged, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, kind alert.Kind, title, body string) *alert.Record {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if !d.lastDispatchAt.IsZero() && now.Sub(d.lastDispatchAt) < d.cooldown {
		log.Debug().Str("kind", string(kind)).Msg("Notification suppressed by cooldown")
		return nil
	}

	if err := d.ensurePermission(ctx); err != nil {
		log.Warn().Err(err).Str("platform", d.platform.Name()).Msg("Notification not delivered")
		return nil
	}

	n := Notification{
		Title: title,
		Body:  body,
		Kind:  kind,
		Metadata: map[string]any{
			"type":      string(kind),
			"timestamp": now.UnixMilli(),
		},
	}
	if err := d.platform.Deliver(ctx, n); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("Notification delivery failed")
		return nil
	}

	record := d.store.Add(alert.Record{
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: now,
	})
	d.lastDispatchAt = now

	d.publish(record)
	return &record
}

// ensurePermission asks the platform once; a grant is remembered, a denial is
// asked again on the next dispatch. Callers hold d.mu.
func (d *Dispatcher) ensurePermission(ctx context.Context) error {
	if d.initialized {
		return nil
	}
	perm, err := d.platform.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if perm != PermissionGranted {
		return ErrPermissionDenied
	}
	d.initialized = true
	return nil
}

// RequestPermission initializes the platform ahead of the first dispatch.
func (d *Dispatcher) RequestPermission(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensurePermission(ctx)
}

// Alert dispatches kind with its standard title and a timestamped body.
func (d *Dispatcher) Alert(ctx context.Context, kind alert.Kind, what string) *alert.Record {
	at := d.now().In(d.location).Format("3:04:05 PM")
	return d.Dispatch(ctx, kind, kind.Title(), fmt.Sprintf("%s at %s", what, at))
}

// SetCooldown changes the cooldown for subsequent calls.
func (d *Dispatcher) SetCooldown(cooldown time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cooldown = cooldown
}

// Cooldown returns the current cooldown.
func (d *Dispatcher) Cooldown() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cooldown
}

// Store returns the history the dispatcher records into.
func (d *Dispatcher) Store() *alert.Store {
	return d.store
}

// PlatformName returns the name of the delivery platform.
func (d *Dispatcher) PlatformName() string {
	return d.platform.Name()
}

// Subscribe returns a channel receiving every dispatched record.
func (d *Dispatcher) Subscribe() chan alert.Record {
	d.subscribersMu.Lock()
	defer d.subscribersMu.Unlock()

	ch := make(chan alert.Record, 16)
	d.subscribers = append(d.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (d *Dispatcher) Unsubscribe(ch chan alert.Record) {
	d.subscribersMu.Lock()
	defer d.subscribersMu.Unlock()

	for i, sub := range d.subscribers {
		if sub == ch {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// publish fans a record out to subscribers without blocking on slow readers.
func (d *Dispatcher) publish(r alert.Record) {
	d.subscribersMu.Lock()
	defer d.subscribersMu.Unlock()

	for _, ch := range d.subscribers {
		select {
		case ch <- r:
		default:
			log.Debug().Str("id", r.ID).Msg("Alert subscriber full, dropping record")
		}
	}
}
