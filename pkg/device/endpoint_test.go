package device

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverHostPort(t *testing.T, srv *httptest.Server) (string, int) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestConfigure_NormalizesAddress(t *testing.T) {
	tests := []struct {
		in          string
		defaultPort int
		want        string
	}{
		{"192.168.1.20", 0, "http://192.168.1.20:8080"},
		{"192.168.1.20", 8090, "http://192.168.1.20:8090"},
		{"http://192.168.1.20:8000", 8090, "http://192.168.1.20:8000"},
		{"https://guardit.local/imu", 0, "http://guardit.local:8080"},
		{"  10.0.0.5:80/ ", 0, "http://10.0.0.5:80"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e := NewEndpoint(Options{})
			require.NoError(t, e.Configure(tt.in, tt.defaultPort))
			assert.Equal(t, tt.want, e.BaseAddress())
			assert.Equal(t, StateDisconnected, e.State())
		})
	}
}

func TestConfigure_Invalid(t *testing.T) {
	e := NewEndpoint(Options{})

	for _, in := range []string{"", "http://", "host:notaport", ":8080", "host:70000"} {
		err := e.Configure(in, 0)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
	assert.Equal(t, "", e.BaseAddress())
}

func TestProbe_HappyPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", jsonHandler(`{"camera_opened": true, "is_streaming": false}`))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewEndpoint(Options{})
	require.NoError(t, e.Configure(srv.URL, 0))

	ok := e.Probe(context.Background())

	assert.True(t, ok)
	assert.Equal(t, StateConnected, e.State())
	assert.Equal(t, KindRaspberryPi, e.Kind())
	assert.Equal(t, "Connected", e.Info().Status)
	assert.False(t, e.Info().LastProbeAt.IsZero())
}

func TestProbe_FallbackDiscovery(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	alt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		jsonHandler(`{"name": "GuardIt IMU Server", "type": "raspberry-pi"}`)(w, r)
	}))
	defer alt.Close()

	_, altPort := serverHostPort(t, alt)

	e := NewEndpoint(Options{
		ProbeTimeout:       100 * time.Millisecond,
		AlternativeTimeout: 100 * time.Millisecond,
		AlternativePorts:   []int{altPort},
	})
	require.NoError(t, e.Configure(slow.URL, 0))

	ok := e.Probe(context.Background())

	require.True(t, ok)
	assert.Equal(t, StateConnected, e.State())
	assert.Equal(t, "http://127.0.0.1:"+strconv.Itoa(altPort), e.BaseAddress())
	assert.Equal(t, KindRaspberryPi, e.Kind())
}

func TestProbe_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, port := serverHostPort(t, srv)

	e := NewEndpoint(Options{AlternativePorts: []int{port}, AlternativeTimeout: 100 * time.Millisecond})
	require.NoError(t, e.Configure(srv.URL, 0))

	assert.False(t, e.Probe(context.Background()))
	assert.Equal(t, StateFailed, e.State())
	assert.Equal(t, "Connection failed", e.State().Status())
	assert.Equal(t, srv.URL, e.BaseAddress(), "address is kept on failure")
}

func TestProbe_Unconfigured(t *testing.T) {
	e := NewEndpoint(Options{})
	assert.False(t, e.Probe(context.Background()))
	assert.False(t, e.ProbeAlternatives(context.Background()))
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		body string
		want Kind
	}{
		{`{"name": "GuardIt IMU Server", "type": "raspberry-pi"}`, KindRaspberryPi},
		{`{"camera_status": {"csi_available": true}}`, KindRaspberryPi},
		{`{"name": "Arduino Nano 33 IoT"}`, KindArduino},
		{`{"name": "GuardIt"}`, KindArduino},
		{`{"ok": true}`, KindUnknown},
		{`OK`, KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferKind([]byte(tt.body)), tt.body)
	}
}

func TestFetchReading_Primary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/imu", jsonHandler(`{"ax": 0, "ay": 0, "az": 1}`))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewEndpoint(Options{})
	require.NoError(t, e.Configure(srv.URL, 0))

	raw, err := e.FetchReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(1), raw["az"])
}

func TestFetchReading_SearchesAlternatives(t *testing.T) {
	primary := httptest.NewServer(http.NotFoundHandler())
	defer primary.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/data", jsonHandler(`{"accelerometer": {"x": 0, "y": 0, "z": 1}}`))
	alt := httptest.NewServer(mux)
	defer alt.Close()
	_, altPort := serverHostPort(t, alt)

	e := NewEndpoint(Options{AlternativePorts: []int{altPort}, AlternativeTimeout: 200 * time.Millisecond})
	require.NoError(t, e.Configure(primary.URL, 0))

	raw, err := e.FetchReading(context.Background())
	require.NoError(t, err)
	assert.Contains(t, raw, "accelerometer")
	assert.Equal(t, alt.URL, e.BaseAddress())
	assert.Equal(t, StateConnected, e.State())
}

func TestFetchReading_NotConfigured(t *testing.T) {
	e := NewEndpoint(Options{})
	_, err := e.FetchReading(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestGetJSON_ErrorTaxonomy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/text", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewEndpoint(Options{})
	require.NoError(t, e.Configure(srv.URL, 0))
	ctx := context.Background()

	var out map[string]any
	assert.ErrorIs(t, e.GetJSON(ctx, "/missing", 0, &out), ErrHTTPStatus)
	assert.ErrorIs(t, e.GetJSON(ctx, "/text", 0, &out), ErrMalformedResponse)
	assert.ErrorIs(t, e.GetJSON(ctx, "/slow", 50*time.Millisecond, &out), ErrTimeout)

	srv.Close()
	assert.ErrorIs(t, e.GetJSON(ctx, "/text", 0, &out), ErrUnreachable)
}

func TestConnectWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) < 2 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		jsonHandler(`{"name": "GuardIt"}`)(w, r)
	}))
	defer srv.Close()
	_, port := serverHostPort(t, srv)

	e := NewEndpoint(Options{AlternativePorts: []int{port}, AlternativePaths: []string{"/nope"}})
	require.NoError(t, e.Configure(srv.URL, 0))

	ok := e.ConnectWithRetry(context.Background(), 3, 10*time.Millisecond)

	assert.True(t, ok)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, KindArduino, e.Kind())
}

func TestDisconnectAndReset(t *testing.T) {
	e := NewEndpoint(Options{})
	require.NoError(t, e.Configure("10.0.0.2", 0))
	e.markConnected("10.0.0.2", 8080, KindArduino)

	e.Disconnect()
	assert.Equal(t, StateDisconnected, e.State())
	assert.Equal(t, "http://10.0.0.2:8080", e.BaseAddress())

	e.Reset()
	assert.Equal(t, "", e.BaseAddress())
	assert.Equal(t, KindUnknown, e.Kind())
}
