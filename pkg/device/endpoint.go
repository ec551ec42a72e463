package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Options controls addressing defaults and discovery for an Endpoint.
type Options struct {
	DefaultPort        int
	ProbeTimeout       time.Duration
	RequestTimeout     time.Duration
	AlternativeTimeout time.Duration
	AlternativePorts   []int
	AlternativePaths   []string
	ReadingPaths       []string
}

// DefaultOptions returns the discovery settings observed across firmware generations.
func DefaultOptions() Options {
	return Options{
		DefaultPort:        8080,
		ProbeTimeout:       5 * time.Second,
		RequestTimeout:     5 * time.Second,
		AlternativeTimeout: 3 * time.Second,
		AlternativePorts:   []int{80, 8000, 8080},
		AlternativePaths:   []string{"/", "/imu", "/status", "/data", "/sensor", "/camera/info"},
		ReadingPaths:       []string{"/imu", "/data", "/sensor", "/camera/info", "/"},
	}
}

// Paths on the device API.
const (
	PathStatus = "/status"
	PathIMU    = "/imu"
)

// Endpoint is the single remote device the process talks to. Its address is shared
// by the telemetry poller and the camera client; a change applies to the next request.
type Endpoint struct {
	opts   Options
	client *resty.Client

	mu          sync.RWMutex
	host        string
	port        int
	state       ConnectionState
	kind        Kind
	lastProbeAt time.Time
}

// NewEndpoint creates an unconfigured endpoint.
func NewEndpoint(opts Options) *Endpoint {
	defaults := DefaultOptions()
	if opts.DefaultPort == 0 {
		opts.DefaultPort = defaults.DefaultPort
	}
	if opts.ProbeTimeout == 0 {
		opts.ProbeTimeout = defaults.ProbeTimeout
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = defaults.RequestTimeout
	}
	if opts.AlternativeTimeout == 0 {
		opts.AlternativeTimeout = defaults.AlternativeTimeout
	}
	if len(opts.AlternativePorts) == 0 {
		opts.AlternativePorts = defaults.AlternativePorts
	}
	if len(opts.AlternativePaths) == 0 {
		opts.AlternativePaths = defaults.AlternativePaths
	}
	if len(opts.ReadingPaths) == 0 {
		opts.ReadingPaths = defaults.ReadingPaths
	}

	client := resty.New().
		SetLogger(restyLogger{}).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Endpoint{
		opts:   opts,
		client: client,
		state:  StateDisconnected,
		kind:   KindUnknown,
	}
}

// Configure sets the device address. Any http:// or https:// scheme and path are
// dropped; when no port is given defaultPort is used, or the endpoint default if 0.
func (e *Endpoint) Configure(address string, defaultPort int) error {
	host, port, err := parseAddress(address)
	if err != nil {
		return err
	}
	if port == 0 {
		port = defaultPort
	}
	if port == 0 {
		port = e.opts.DefaultPort
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.host = host
	e.port = port
	e.state = StateDisconnected
	e.kind = KindUnknown

	log.Info().Str("address", e.baseLocked()).Msg("Device address configured")
	return nil
}

func parseAddress(address string) (string, int, error) {
	a := strings.TrimSpace(address)
	a = strings.TrimPrefix(a, "http://")
	a = strings.TrimPrefix(a, "https://")
	if i := strings.IndexByte(a, '/'); i >= 0 {
		a = a[:i]
	}
	if a == "" {
		return "", 0, fmt.Errorf("%w: empty device address", ErrValidation)
	}

	if !strings.Contains(a, ":") {
		return a, 0, nil
	}

	host, portStr, err := net.SplitHostPort(a)
	if err != nil {
		return "", 0, fmt.Errorf("%w: invalid device address %q", ErrValidation, address)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("%w: invalid port in %q", ErrValidation, address)
	}
	if host == "" {
		return "", 0, fmt.Errorf("%w: missing host in %q", ErrValidation, address)
	}
	return host, port, nil
}

// BaseAddress returns "http://host:port", or "" when unconfigured.
func (e *Endpoint) BaseAddress() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.baseLocked()
}

func (e *Endpoint) baseLocked() string {
	if e.host == "" {
		return ""
	}
	return "http://" + net.JoinHostPort(e.host, strconv.Itoa(e.port))
}

// State returns the connection state.
func (e *Endpoint) State() ConnectionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Kind returns the inferred firmware dialect.
func (e *Endpoint) Kind() Kind {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.kind
}

// Info returns a snapshot of the endpoint.
func (e *Endpoint) Info() Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Info{
		Address:     e.baseLocked(),
		State:       e.state,
		Status:      e.state.Status(),
		Kind:        e.kind,
		LastProbeAt: e.lastProbeAt,
	}
}

// Disconnect marks the endpoint disconnected. The address is kept.
func (e *Endpoint) Disconnect() {
	e.setState(StateDisconnected)
}

// Reset forgets the address and everything learned about the device.
func (e *Endpoint) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.host = ""
	e.port = 0
	e.state = StateDisconnected
	e.kind = KindUnknown
	e.lastProbeAt = time.Time{}
}

func (e *Endpoint) setState(s ConnectionState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

// markConnected records a successful probe against host:port.
func (e *Endpoint) markConnected(host string, port int, kind Kind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.host = host
	e.port = port
	e.state = StateConnected
	e.kind = kind
	e.lastProbeAt = time.Now()
}

func (e *Endpoint) target() (string, int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.host, e.port, e.host != ""
}

// Probe checks the configured address with GET /status. On any failure other than
// cancellation it falls back to ProbeAlternatives. It never returns an error: the
// outcome is the boolean and the resulting State.
func (e *Endpoint) Probe(ctx context.Context) bool {
	host, port, ok := e.target()
	if !ok {
		e.setState(StateFailed)
		return false
	}

	e.setState(StateConnecting)

	body, err := e.get(ctx, e.BaseAddress()+PathStatus, e.opts.ProbeTimeout)
	if err == nil {
		e.markConnected(host, port, inferKind(body))
		log.Info().Str("address", e.BaseAddress()).Str("kind", string(e.Kind())).Msg("Device connected")
		return true
	}
	if errors.Is(err, context.Canceled) {
		e.setState(StateDisconnected)
		return false
	}

	log.Debug().Err(err).Str("address", e.BaseAddress()).Msg("Device probe failed, trying alternatives")
	if e.ProbeAlternatives(ctx) {
		return true
	}
	e.setState(StateFailed)
	return false
}

// ProbeAlternatives tries each alternative port and path on the configured host with
// a shorter timeout, adopting the first combination that answers.
func (e *Endpoint) ProbeAlternatives(ctx context.Context) bool {
	host, _, ok := e.target()
	if !ok {
		return false
	}

	for _, port := range e.opts.AlternativePorts {
		base := "http://" + net.JoinHostPort(host, strconv.Itoa(port))
		for _, path := range e.opts.AlternativePaths {
			if ctx.Err() != nil {
				return false
			}
			body, err := e.get(ctx, base+path, e.opts.AlternativeTimeout)
			if err != nil {
				continue
			}
			e.markConnected(host, port, inferKind(body))
			log.Info().Str("address", base).Str("path", path).Msg("Device found on alternative endpoint")
			return true
		}
	}

	log.Warn().Str("host", host).Msg("No alternative device endpoint answered")
	return false
}

// ConnectWithRetry probes up to attempts times, waiting delay between attempts.
func (e *Endpoint) ConnectWithRetry(ctx context.Context, attempts int, delay time.Duration) bool {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if e.Probe(ctx) {
			return true
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
	}
	return false
}

// FetchReading returns the raw telemetry object from GET /imu. When that fails the
// alternative reading paths are searched once and the winning base is adopted.
func (e *Endpoint) FetchReading(ctx context.Context) (map[string]any, error) {
	base := e.BaseAddress()
	if base == "" {
		return nil, ErrNotConnected
	}

	body, err := e.get(ctx, base+PathIMU, e.opts.RequestTimeout)
	if err == nil {
		return decodeObject(body)
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	log.Debug().Err(err).Msg("Telemetry fetch failed, searching alternatives")
	if raw, ok := e.searchReading(ctx); ok {
		return raw, nil
	}
	return nil, err
}

func (e *Endpoint) searchReading(ctx context.Context) (map[string]any, bool) {
	host, _, ok := e.target()
	if !ok {
		return nil, false
	}

	for _, port := range e.opts.AlternativePorts {
		base := "http://" + net.JoinHostPort(host, strconv.Itoa(port))
		for _, path := range e.opts.ReadingPaths {
			if ctx.Err() != nil {
				return nil, false
			}
			body, err := e.get(ctx, base+path, e.opts.AlternativeTimeout)
			if err != nil {
				continue
			}
			raw, err := decodeObject(body)
			if err != nil {
				continue
			}
			e.markConnected(host, port, e.Kind())
			log.Info().Str("address", base).Str("path", path).Msg("Telemetry found on alternative endpoint")
			return raw, true
		}
	}
	return nil, false
}

// GetJSON issues GET path against the current address and decodes the body into out.
// A zero timeout uses the endpoint request timeout.
func (e *Endpoint) GetJSON(ctx context.Context, path string, timeout time.Duration, out any) error {
	base := e.BaseAddress()
	if base == "" {
		return ErrNotConnected
	}
	if timeout == 0 {
		timeout = e.opts.RequestTimeout
	}

	body, err := e.get(ctx, base+path, timeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

// PostJSON issues POST path with body encoded as JSON and decodes the response into out.
// An empty response body is accepted.
func (e *Endpoint) PostJSON(ctx context.Context, path string, body, out any) error {
	base := e.BaseAddress()
	if base == "" {
		return ErrNotConnected
	}

	reqCtx, cancel := context.WithTimeout(ctx, e.opts.RequestTimeout)
	defer cancel()

	req := e.client.R().SetContext(reqCtx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(base + path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, classify(err))
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: POST %s returned %d", ErrHTTPStatus, path, resp.StatusCode())
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: POST %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

// get performs a bounded GET and returns the body of a 2xx response.
func (e *Endpoint) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.client.R().SetContext(reqCtx).Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, classify(ctx.Err())
		}
		return nil, fmt.Errorf("GET %s: %w", url, classify(err))
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrHTTPStatus, url, resp.StatusCode())
	}
	return resp.Body(), nil
}

func decodeObject(body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: expected JSON object", ErrMalformedResponse)
	}
	return raw, nil
}

// inferKind guesses the firmware dialect from a probe response body.
func inferKind(body []byte) Kind {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil || m == nil {
		return KindUnknown
	}

	name, _ := m["name"].(string)
	typ, _ := m["type"].(string)
	name = strings.ToLower(name)
	typ = strings.ToLower(typ)

	_, hasCameraOpened := m["camera_opened"]
	_, hasCameraStatus := m["camera_status"]
	_, hasStreaming := m["is_streaming"]

	switch {
	case strings.Contains(typ, "raspberry") || strings.Contains(name, "raspberry"):
		return KindRaspberryPi
	case hasCameraOpened || hasCameraStatus || hasStreaming:
		return KindRaspberryPi
	case strings.Contains(typ, "arduino") || strings.Contains(name, "arduino"):
		return KindArduino
	case name != "":
		return KindArduino
	}
	return KindUnknown
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) {
	log.Error().Msgf(strings.TrimSpace(format), v...)
}

func (restyLogger) Warnf(format string, v ...any) {
	log.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (restyLogger) Debugf(format string, v ...any) {
	log.Debug().Msgf(strings.TrimSpace(format), v...)
}
