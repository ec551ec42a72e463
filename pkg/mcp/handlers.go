package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/guardit/pkg/alert"
	"github.com/urmzd/guardit/pkg/camera"
	"github.com/urmzd/guardit/pkg/device"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h := s.services.Health()

	status := "healthy"
	if h.Device.State != device.StateConnected {
		status = "degraded"
	}

	out := GetHealthOutput{
		Status:           status,
		Device:           h.Device,
		TelemetryRunning: h.TelemetryRunning,
		CameraStreaming:  h.CameraStreaming,
		Platform:         h.Platform,
		UnreadAlerts:     h.UnreadAlerts,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleConnectDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := requiredString(request, "address")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := s.services.Connect(ctx, address)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to connect to %s: %s", address, err)), nil
	}
	return mcp.NewToolResultText(formatJSON(DeviceOutput{Device: info})), nil
}

func (s *Server) handleDisconnectDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(DeviceOutput{Device: s.services.Disconnect(ctx)})), nil
}

func (s *Server) handleActivateBuzzer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cmd := device.DefaultBuzzerCommand
	if f, ok := optionalNumber(request, "frequency"); ok {
		cmd.Frequency = f
	}
	if d, ok := optionalNumber(request, "duration"); ok {
		cmd.Duration = d
	}

	result, err := s.services.ActivateBuzzer(ctx, cmd)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to activate buzzer: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(BuzzerOutput{Command: cmd, Result: result})), nil
}

func (s *Server) handleStartTelemetry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var interval time.Duration
	if ms, ok := optionalNumber(request, "interval_ms"); ok {
		if ms < 0 || ms > 60000 {
			return mcp.NewToolResultError("interval_ms must be between 0 and 60000"), nil
		}
		interval = time.Duration(ms) * time.Millisecond
	}

	if err := s.services.StartTelemetry(interval); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start telemetry: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(s.telemetryOutput())), nil
}

func (s *Server) handleStopTelemetry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.services.StopTelemetry()
	return mcp.NewToolResultText(formatJSON(s.telemetryOutput())), nil
}

func (s *Server) telemetryOutput() TelemetryOutput {
	running, interval := s.services.Poller.Running()
	out := TelemetryOutput{Running: running}
	if running {
		out.IntervalMs = interval.Milliseconds()
	}
	return out
}

func (s *Server) handleGetLatestReading(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reading, _, ok := s.services.Poller.Latest()
	if !ok {
		return mcp.NewToolResultError("no telemetry reading received yet; call start_telemetry first"), nil
	}
	out := LatestReadingOutput{
		Reading: reading,
		Age:     time.Since(reading.Timestamp).Round(time.Millisecond).String(),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := s.services.Store
	records := store.List()

	if k, ok := request.GetArguments()["kind"].(string); ok && k != "" {
		kind := alert.Kind(k)
		if !kind.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown alert kind %q", k)), nil
		}
		records = store.ByKind(kind)
	}
	unreadOnly, _ := request.GetArguments()["unread_only"].(bool)

	now := time.Now()
	infos := make([]AlertInfo, 0, len(records))
	for _, r := range records {
		if unreadOnly && r.Read {
			continue
		}
		infos = append(infos, AlertInfo{Record: r, Age: alert.FormatAge(r.CreatedAt, now)})
	}

	out := ListAlertsOutput{
		Alerts: infos,
		Count:  len(infos),
		Unread: store.UnreadCount(),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleMarkAlertRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := s.services.Store.Get(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("alert %q not found", id)), nil
	}
	s.services.Store.MarkRead(id)
	return s.alertAction(fmt.Sprintf("Alert %s marked read", id))
}

func (s *Server) handleMarkAllAlertsRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.services.Store.MarkAllRead()
	return s.alertAction("All alerts marked read")
}

func (s *Server) handleDeleteAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.services.Store.Delete(id)
	return s.alertAction(fmt.Sprintf("Alert %s deleted", id))
}

func (s *Server) handleClearAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.services.Store.ClearAll()
	return s.alertAction("Alert history cleared")
}

func (s *Server) alertAction(msg string) (*mcp.CallToolResult, error) {
	out := AlertActionOutput{
		Success: true,
		Message: msg,
		Unread:  s.services.Store.UnreadCount(),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleCameraStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.services.Camera.FetchStatus(ctx)
	if st.Error != "" {
		return mcp.NewToolResultError(st.Error), nil
	}
	st.Raw = nil
	return mcp.NewToolResultText(formatJSON(st)), nil
}

func (s *Server) handleCaptureFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source := camera.SourceUSB
	if v, ok := request.GetArguments()["source"].(string); ok && v != "" {
		source = camera.Source(v)
	}
	if !source.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown camera source %q", source)), nil
	}

	capture := s.services.Camera.CaptureFrame(ctx, source)
	if capture.Error != "" {
		return mcp.NewToolResultError(capture.Error), nil
	}
	return mcp.NewToolResultText(formatJSON(capture)), nil
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func optionalNumber(request mcp.CallToolRequest, key string) (float64, bool) {
	switch n := request.GetArguments()[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
