package camera

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/guardit/pkg/alert"
	"github.com/urmzd/guardit/pkg/device"
)

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []alert.Kind
}

func (f *fakeNotifier) Alert(ctx context.Context, kind alert.Kind, what string) *alert.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	return &alert.Record{Kind: kind}
}

func (f *fakeNotifier) Kinds() []alert.Kind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]alert.Kind(nil), f.kinds...)
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *fakeNotifier) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	e := device.NewEndpoint(device.Options{})
	require.NoError(t, e.Configure(srv.URL, 0))

	n := &fakeNotifier{}
	return NewClient(e, n, Options{StreamInterval: 10 * time.Millisecond}), n
}

func TestParseStatus_ShapeChain(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		shape     string
		opened    bool
		streaming bool
	}{
		{"pi camera_status", map[string]any{"camera_status": map[string]any{"csi_available": true, "usb_available": false, "streaming": true}}, "camera_status", true, true},
		{"flat", map[string]any{"camera_opened": true, "is_streaming": false}, "camera_opened", true, false},
		{"camera object", map[string]any{"camera": map[string]any{"available": true, "streaming": true}}, "camera", true, true},
		{"status.camera", map[string]any{"status": map[string]any{"camera": map[string]any{"opened": false}}}, "status.camera", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := parseStatus(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.shape, st.Shape)
			assert.Equal(t, tt.opened, st.Opened)
			assert.Equal(t, tt.streaming, st.Streaming)
		})
	}

	_, ok := parseStatus(map[string]any{"name": "GuardIt"})
	assert.False(t, ok)
}

func TestFetchStatus_FallsBackToStatusPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/camera", jsonHandler(`{"unrelated": true}`))
	mux.HandleFunc("/status", jsonHandler(`{"camera_opened": true, "is_streaming": true}`))
	c, _ := newTestClient(t, mux)

	st := c.FetchStatus(context.Background())

	assert.Empty(t, st.Error)
	assert.True(t, st.Opened)
	assert.True(t, st.Streaming)
	assert.Equal(t, "camera_opened", st.Shape)
}

func TestFetchStatus_ErrorValue(t *testing.T) {
	c := NewClient(device.NewEndpoint(device.Options{}), nil, Options{})

	st := c.FetchStatus(context.Background())

	assert.Equal(t, "Camera not connected", st.Error)
}

func TestCaptureFrame(t *testing.T) {
	var query atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/camera/usb", func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.RawQuery)
		jsonHandler(`{"success": true, "image": "aGVsbG8=", "format": "jpeg", "width": 640, "height": 480, "timestamp": 1700000000000}`)(w, r)
	})
	c, n := newTestClient(t, mux)

	capture := c.CaptureFrame(context.Background(), SourceUSB)

	require.Empty(t, capture.Error)
	require.Len(t, capture.Frames, 1)
	f := capture.Frames[0]
	assert.True(t, f.Success)
	assert.Equal(t, SourceUSB, f.Source)
	assert.Equal(t, "aGVsbG8=", f.Image)
	assert.Equal(t, 640, f.Width)
	assert.Equal(t, int64(1700000000000), f.Timestamp.UnixMilli())
	q, err := url.ParseQuery(query.Load().(string))
	require.NoError(t, err)
	assert.Equal(t, "80", q.Get("quality"))
	assert.Equal(t, "640", q.Get("width"))
	assert.Equal(t, "480", q.Get("height"))
	assert.Equal(t, "jpeg", q.Get("format"))
	assert.Empty(t, n.Kinds())
}

func TestCaptureFrame_Both(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/camera/both", jsonHandler(`{"timestamp": 1700000000000, "cameras": {
		"csi": {"error": "CSI camera not available"},
		"usb": {"success": true, "image": "aGk=", "format": "jpeg"}}}`))
	c, _ := newTestClient(t, mux)

	capture := c.CaptureFrame(context.Background(), SourceBoth)

	require.Len(t, capture.Frames, 2)
	assert.Equal(t, "CSI camera not available", capture.Frames[0].Error)
	assert.False(t, capture.Frames[0].Success)
	assert.True(t, capture.Frames[1].Success)
	assert.Equal(t, SourceUSB, capture.Frames[1].Source)
}

func TestCaptureFrame_InvalidSource(t *testing.T) {
	c, _ := newTestClient(t, http.NewServeMux())
	assert.NotEmpty(t, c.CaptureFrame(context.Background(), Source("thermal")).Error)
}

func TestCaptureFrame_ProximityEdge(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/camera/csi", jsonHandler(`{"success": true, "image": "eA==", "alertType": "object_close"}`))
	c, n := newTestClient(t, mux)
	ctx := context.Background()

	c.CaptureFrame(ctx, SourceCSI)
	c.CaptureFrame(ctx, SourceCSI)

	assert.Equal(t, []alert.Kind{alert.KindProximity}, n.Kinds())
}

func TestPollNextFrame_Forms(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		success bool
		image   string
	}{
		{"full", `{"success": true, "frame": "ZnVsbA==", "format": "jpeg", "timestamp": 1700000000000}`, true, "ZnVsbA=="},
		{"compact", `{"f": "Y29tcGFjdA==", "t": 1700000000000}`, true, "Y29tcGFjdA=="},
		{"not streaming", `{"error": "Streaming not active. Call /stream/start first"}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/stream/frame", jsonHandler(tt.body))
			c, _ := newTestClient(t, mux)

			f := c.PollNextFrame(context.Background())

			assert.Equal(t, tt.success, f.Success)
			assert.Equal(t, tt.image, f.Image)
			if !tt.success {
				assert.NotEmpty(t, f.Error)
			}
		})
	}
}

func TestStream_StartPublishesAndStops(t *testing.T) {
	var started, stopped atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/stream/start", func(w http.ResponseWriter, r *http.Request) {
		started.Store(true)
		jsonHandler(`{"success": true, "message": "USB camera streaming started"}`)(w, r)
	})
	mux.HandleFunc("/stream/stop", func(w http.ResponseWriter, r *http.Request) {
		stopped.Store(true)
		jsonHandler(`{"success": true}`)(w, r)
	})
	mux.HandleFunc("/stream/frame", jsonHandler(`{"f": "ZnJhbWU=", "t": 1700000000000}`))
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	frames := c.Subscribe()
	defer c.Unsubscribe(frames)

	res := c.StartStream(ctx)
	require.Empty(t, res.Error)
	assert.True(t, res.Streaming)
	assert.Equal(t, "USB camera streaming started", res.Message)
	assert.True(t, c.Streaming())

	select {
	case f := <-frames:
		assert.Equal(t, "ZnJhbWU=", f.Image)
	case <-time.After(time.Second):
		t.Fatal("no frame published")
	}

	res = c.StopStream(ctx, true)
	assert.False(t, res.Streaming)
	assert.False(t, c.Streaming())
	assert.True(t, started.Load())
	assert.True(t, stopped.Load())

	last, ok := c.LastFrame()
	require.True(t, ok)
	assert.Equal(t, "ZnJhbWU=", last.Image)
}

func TestStream_StartWithoutDeviceControl(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream/frame", jsonHandler(`{"f": "eA==", "t": 1}`))
	c, _ := newTestClient(t, mux)

	res := c.StartStream(context.Background())
	defer c.StopStream(context.Background(), false)

	assert.True(t, res.Streaming)
	assert.Empty(t, res.Error)
}

func TestStream_ConcurrentStartsLeaveOneTimer(t *testing.T) {
	var frameCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/stream/frame", func(w http.ResponseWriter, r *http.Request) {
		frameCalls.Add(1)
		jsonHandler(`{"f": "eA==", "t": 1}`)(w, r)
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.StartStream(ctx)
		}()
	}
	wg.Wait()
	require.True(t, c.Streaming())

	c.StopStream(ctx, false)
	assert.False(t, c.Streaming())

	calls := frameCalls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, frameCalls.Load(), "no frame polling after StopStream")
}

func TestCheckMotion_Edge(t *testing.T) {
	var motion atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/detect", func(w http.ResponseWriter, r *http.Request) {
		if motion.Load() {
			jsonHandler(`{"motion_detected": true}`)(w, r)
			return
		}
		jsonHandler(`{"motion_detected": false}`)(w, r)
	})
	c, n := newTestClient(t, mux)
	ctx := context.Background()

	assert.False(t, c.CheckMotion(ctx).Alerted)
	motion.Store(true)
	res := c.CheckMotion(ctx)
	assert.True(t, res.MotionDetected)
	assert.True(t, res.Alerted)
	assert.False(t, c.CheckMotion(ctx).Alerted)

	assert.Equal(t, []alert.Kind{alert.KindMotion}, n.Kinds())
}
