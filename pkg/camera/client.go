package camera

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/alert"
	"github.com/urmzd/guardit/pkg/device"
)

// Camera paths on the device API.
const (
	PathCamera      = "/camera"
	PathStatus      = "/status"
	PathStreamStart = "/stream/start"
	PathStreamStop  = "/stream/stop"
	PathStreamFrame = "/stream/frame"
	PathDetect      = "/detect"
)

// Options holds capture and stream defaults.
type Options struct {
	Quality        int
	Width          int
	Height         int
	Format         string
	StreamInterval time.Duration
	RequestTimeout time.Duration
}

// DefaultOptions returns the capture settings the device firmware expects.
func DefaultOptions() Options {
	return Options{
		Quality:        80,
		Width:          640,
		Height:         480,
		Format:         "jpeg",
		StreamInterval: 200 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}
}

// Notifier receives camera-originated alerts.
type Notifier interface {
	Alert(ctx context.Context, kind alert.Kind, what string) *alert.Record
}

// Client talks to the camera side of the shared device endpoint. Every call returns
// a value; failures are carried in its Error field.
type Client struct {
	endpoint *device.Endpoint
	notifier Notifier
	opts     Options

	mu              sync.Mutex
	cancel          context.CancelFunc
	done            chan struct{}
	motionActive    bool
	proximityActive bool
	lastFrame       *Frame

	subscribersMu sync.Mutex
	subscribers   []chan Frame
}

// NewClient creates a camera client. notifier may be nil.
func NewClient(endpoint *device.Endpoint, notifier Notifier, opts Options) *Client {
	defaults := DefaultOptions()
	if opts.Quality == 0 {
		opts.Quality = defaults.Quality
	}
	if opts.Width == 0 {
		opts.Width = defaults.Width
	}
	if opts.Height == 0 {
		opts.Height = defaults.Height
	}
	if opts.Format == "" {
		opts.Format = defaults.Format
	}
	if opts.StreamInterval == 0 {
		opts.StreamInterval = defaults.StreamInterval
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = defaults.RequestTimeout
	}
	return &Client{endpoint: endpoint, notifier: notifier, opts: opts}
}

// FetchStatus reads the camera status from /camera, then /status, accepting the
// first response whose shape is recognized.
func (c *Client) FetchStatus(ctx context.Context) Status {
	var lastErr error
	for _, path := range []string{PathCamera, PathStatus} {
		var raw map[string]any
		if err := c.endpoint.GetJSON(ctx, path, c.opts.RequestTimeout, &raw); err != nil {
			lastErr = err
			continue
		}
		if st, ok := parseStatus(raw); ok {
			return st
		}
		lastErr = fmt.Errorf("%w: unrecognized camera status from %s", device.ErrMalformedResponse, path)
	}
	return Status{Error: errorText(lastErr)}
}

// CaptureFrame grabs a still image from source.
func (c *Client) CaptureFrame(ctx context.Context, source Source) Capture {
	if !source.Valid() {
		return Capture{Error: fmt.Sprintf("unknown camera source %q", source)}
	}

	path := fmt.Sprintf("%s/%s?quality=%d&width=%d&height=%d&format=%s",
		PathCamera, source, c.opts.Quality, c.opts.Width, c.opts.Height, c.opts.Format)

	var raw map[string]any
	if err := c.endpoint.GetJSON(ctx, path, c.opts.RequestTimeout, &raw); err != nil {
		return Capture{Error: errorText(err)}
	}

	var frames []Frame
	if source == SourceBoth {
		cameras, _ := raw["cameras"].(map[string]any)
		ts := timestampOf(raw["timestamp"])
		for _, s := range []Source{SourceCSI, SourceUSB} {
			entry, ok := cameras[string(s)].(map[string]any)
			if !ok {
				continue
			}
			f := parseFrame(entry, "image")
			f.Source = s
			if f.Timestamp.IsZero() {
				f.Timestamp = ts
			}
			frames = append(frames, f)
		}
		if len(frames) == 0 {
			return Capture{Error: "no camera returned a frame"}
		}
	} else {
		f := parseFrame(raw, "image")
		f.Source = source
		frames = append(frames, f)
	}

	for _, f := range frames {
		c.checkProximity(ctx, f)
	}
	return Capture{Frames: frames}
}

// StartStream asks the device to start streaming and starts the local frame timer.
// The device call is best effort; firmware without /stream/start still serves frames.
func (c *Client) StartStream(ctx context.Context) StreamResult {
	var resp map[string]any
	msg := "Streaming started"
	if err := c.endpoint.PostJSON(ctx, PathStreamStart, nil, &resp); err != nil {
		if errors.Is(err, device.ErrNotConnected) {
			return StreamResult{Error: errorText(err)}
		}
		log.Debug().Err(err).Msg("Device stream start unavailable, polling frames anyway")
	} else if m, ok := resp["message"].(string); ok {
		msg = m
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	prevCancel, prevDone := c.cancel, c.done
	c.cancel, c.done = cancel, done
	c.proximityActive = false
	c.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	go c.streamLoop(streamCtx, done)

	log.Info().Dur("interval", c.opts.StreamInterval).Msg("Camera stream started")
	return StreamResult{Streaming: true, Message: msg}
}

// StopStream stops the local frame timer and, when notifyDevice is set, asks the
// device to stop streaming.
func (c *Client) StopStream(ctx context.Context, notifyDevice bool) StreamResult {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		log.Info().Msg("Camera stream stopped")
	}

	if !notifyDevice {
		return StreamResult{Streaming: false}
	}
	if err := c.endpoint.PostJSON(ctx, PathStreamStop, nil, nil); err != nil {
		log.Debug().Err(err).Msg("Device stream stop unavailable")
	}
	return StreamResult{Streaming: false, Message: "Streaming stopped"}
}

// Streaming reports whether the local frame timer is running.
func (c *Client) Streaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Client) streamLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.opts.StreamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.streamTick(ctx)
		}
	}
}

func (c *Client) streamTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic in camera stream tick")
		}
	}()

	f := c.PollNextFrame(ctx)
	if ctx.Err() != nil || !f.Success {
		return
	}
	c.publish(f)
}

// PollNextFrame fetches the current stream frame. Both the full
// {"success", "frame", "timestamp"} and the compact {"f", "t"} forms are accepted.
func (c *Client) PollNextFrame(ctx context.Context) Frame {
	var raw map[string]any
	if err := c.endpoint.GetJSON(ctx, PathStreamFrame, c.opts.RequestTimeout, &raw); err != nil {
		return Frame{Error: errorText(err)}
	}

	var f Frame
	if _, compact := raw["f"]; compact {
		img, _ := raw["f"].(string)
		f = Frame{Success: img != "", Image: img, Format: c.opts.Format, Timestamp: timestampOf(raw["t"])}
	} else {
		f = parseFrame(raw, "frame")
	}
	if f.Error == "" && !f.Success {
		f.Error = "no frame available"
	}
	if f.Success {
		c.mu.Lock()
		c.lastFrame = &f
		c.mu.Unlock()
		c.checkProximity(ctx, f)
	}
	return f
}

// LastFrame returns the most recent successfully polled stream frame.
func (c *Client) LastFrame() (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastFrame == nil {
		return Frame{}, false
	}
	return *c.lastFrame, true
}

// CheckMotion reads GET /detect and raises a motion alert when motion_detected
// turns true.
func (c *Client) CheckMotion(ctx context.Context) MotionResult {
	var raw map[string]any
	if err := c.endpoint.GetJSON(ctx, PathDetect, c.opts.RequestTimeout, &raw); err != nil {
		return MotionResult{Error: errorText(err)}
	}

	detected, _ := raw["motion_detected"].(bool)

	c.mu.Lock()
	fire := detected && !c.motionActive
	c.motionActive = detected
	c.mu.Unlock()

	res := MotionResult{MotionDetected: detected}
	if fire && c.notifier != nil {
		res.Alerted = c.notifier.Alert(ctx, alert.KindMotion, "Motion detected by camera") != nil
	}
	return res
}

// checkProximity raises a proximity warning when frames start flagging a close object.
func (c *Client) checkProximity(ctx context.Context, f Frame) {
	near := f.AlertType == "object_close" || f.Alert

	c.mu.Lock()
	fire := near && !c.proximityActive
	c.proximityActive = near
	c.mu.Unlock()

	if fire && c.notifier != nil {
		c.notifier.Alert(ctx, alert.KindProximity, "Object detected too close to camera")
	}
}

// Subscribe returns a channel receiving every streamed frame.
func (c *Client) Subscribe() chan Frame {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	ch := make(chan Frame, 4)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a frame subscription.
func (c *Client) Unsubscribe(ch chan Frame) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (c *Client) publish(f Frame) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- f:
		default:
		}
	}
}

// parseFrame decodes {success, <imageKey>, format, width, height, timestamp, alertType, alert}
// or {error}.
func parseFrame(raw map[string]any, imageKey string) Frame {
	if msg, ok := raw["error"].(string); ok && msg != "" {
		return Frame{Error: msg}
	}

	img, _ := raw[imageKey].(string)
	success, ok := raw["success"].(bool)
	if !ok {
		success = img != ""
	}

	f := Frame{
		Success:   success && img != "",
		Image:     img,
		Timestamp: timestampOf(raw["timestamp"]),
	}
	f.Format, _ = raw["format"].(string)
	if w, ok := raw["width"].(float64); ok {
		f.Width = int(w)
	}
	if h, ok := raw["height"].(float64); ok {
		f.Height = int(h)
	}
	f.AlertType, _ = raw["alertType"].(string)
	f.Alert, _ = raw["alert"].(bool)
	return f
}

// timestampOf reads milliseconds (or seconds for small values); anything else is now.
func timestampOf(v any) time.Time {
	switch ts := v.(type) {
	case float64:
		if ts <= 0 {
			break
		}
		if ts < 1e11 {
			return time.UnixMilli(int64(ts * 1000))
		}
		return time.UnixMilli(int64(ts))
	case string:
		if n, err := strconv.ParseInt(ts, 10, 64); err == nil && n > 0 {
			return time.UnixMilli(n)
		}
	}
	return time.Now()
}

func errorText(err error) string {
	switch {
	case err == nil:
		return "unknown camera error"
	case errors.Is(err, device.ErrNotConnected):
		return "Camera not connected"
	case errors.Is(err, device.ErrTimeout):
		return "Camera request timed out"
	case errors.Is(err, device.ErrUnreachable):
		return "Camera unreachable"
	}
	return err.Error()
}
