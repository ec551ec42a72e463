package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/guardit/pkg/api/types"
	"github.com/urmzd/guardit/pkg/app"
	"github.com/urmzd/guardit/pkg/camera"
	"github.com/urmzd/guardit/pkg/notify"
)

func deviceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/status", write(`{"camera_opened": true, "is_streaming": false}`))
	mux.HandleFunc("/buzzer", write(`{"success": true}`))
	mux.HandleFunc("/stream/frame", write(`{"f": "ZnJhbWU=", "t": 1700000000000}`))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) (*Router, *app.Services) {
	t.Helper()
	services := app.New(app.Options{
		Platform: notify.NewNullPlatform(),
		Camera:   camera.Options{StreamInterval: 10 * time.Millisecond},
	})
	t.Cleanup(func() { services.Close(context.Background()) })
	return NewRouter(services), services
}

func do(t *testing.T, r *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth_DegradedWithoutDevice(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[types.HealthResponse](t, w)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "Disconnected", resp.Device.Status)
	assert.Equal(t, "none", resp.Platform)
}

func TestConnect(t *testing.T) {
	r, _ := newTestRouter(t)
	dev := deviceServer(t)

	w := do(t, r, http.MethodPost, "/api/v1/device/connect", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/device/connect", `{"address": "`+dev.URL+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[types.DeviceResponse](t, w)
	assert.Equal(t, "Connected", resp.Device.Status)
	assert.Equal(t, "raspberry_pi", string(resp.Device.Kind))

	w = do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuzzer(t *testing.T) {
	r, services := newTestRouter(t)
	dev := deviceServer(t)
	require.NoError(t, services.Endpoint.Configure(dev.URL, 0))

	w := do(t, r, http.MethodPost, "/api/v1/device/buzzer", `{"frequency": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode[types.ErrorResponse](t, w).Error)

	w = do(t, r, http.MethodPost, "/api/v1/device/buzzer", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[types.BuzzerResponse](t, w)
	assert.Equal(t, 1000.0, resp.Command.Frequency)
	assert.Equal(t, 1, services.Store.UnreadCount())
}

func TestBuzzer_NotConnected(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/device/buzzer", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_connected", decode[types.ErrorResponse](t, w).Error)
}

func TestTelemetry_Endpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/telemetry/start", `{"interval_ms": 100}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/telemetry/start", `{"interval_ms": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/telemetry/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/telemetry/stop", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[types.TelemetryStatusResponse](t, w).Running)
}

func TestAlerts_Lifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/alerts/test", "")
	require.Equal(t, http.StatusOK, w.Code)
	test := decode[types.TestAlertResponse](t, w)
	require.True(t, test.Delivered)
	id := test.Alert.ID

	w = do(t, r, http.MethodPost, "/api/v1/alerts/test", "")
	assert.False(t, decode[types.TestAlertResponse](t, w).Delivered, "cooldown")

	w = do(t, r, http.MethodGet, "/api/v1/alerts?kind=led_alert&since=1h", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[types.ListAlertsResponse](t, w)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Just now", list.Alerts[0].Age)
	assert.Equal(t, 1, list.Unread)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/alerts?kind=earthquake", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/api/v1/alerts?since=soon", "").Code)

	w = do(t, r, http.MethodPost, "/api/v1/alerts/"+id+"/read", "")
	assert.Equal(t, 0, decode[types.UnreadResponse](t, w).Unread)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/v1/alerts/missing", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/v1/alerts/"+id, "").Code)

	w = do(t, r, http.MethodGet, "/api/v1/alerts", "")
	assert.Equal(t, 0, decode[types.ListAlertsResponse](t, w).Count)
}

func TestCamera_ErrorsAreValues(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/camera/capture/thermal", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/camera/capture/usb", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Camera not connected", decode[camera.Capture](t, w).Error)
}

func TestAlertEvents_SSE(t *testing.T) {
	r, services := newTestRouter(t)
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/alerts/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		_, err = reader.ReadString('\n') // data
		require.NoError(t, err)
		_, err = reader.ReadString('\n') // blank
		require.NoError(t, err)
		return strings.TrimSpace(line)
	}

	assert.Equal(t, "event: connected", readEvent())

	_, err = services.TestNotification(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "event: alert", readEvent())
}

func TestStreamSocket_RelaysFrames(t *testing.T) {
	r, services := newTestRouter(t)
	dev := deviceServer(t)
	require.NoError(t, services.Endpoint.Configure(dev.URL, 0))

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/camera/stream/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f camera.Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.True(t, f.Success)
	assert.Equal(t, "ZnJhbWU=", f.Image)
	assert.True(t, services.Camera.Streaming())
}
