package mcp

import "github.com/mark3labs/mcp-go/mcp"

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Report device connection, telemetry polling, camera streaming and unread alert count"),
		),
		s.handleGetHealth,
	)

	// Device
	s.mcpServer.AddTool(
		mcp.NewTool("connect_device",
			mcp.WithDescription("Connect to the GuardIt device. Alternative ports and paths are searched and the probe is retried before failing."),
			mcp.WithString("address",
				mcp.Required(),
				mcp.Description("Device address, e.g. 192.168.4.1 or http://192.168.4.1:8080"),
			),
		),
		s.handleConnectDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("disconnect_device",
			mcp.WithDescription("Stop telemetry and the camera stream and mark the device disconnected"),
		),
		s.handleDisconnectDevice,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("activate_buzzer",
			mcp.WithDescription("Sound the device buzzer"),
			mcp.WithNumber("frequency",
				mcp.Description("Tone in Hz, 20-20000 (default 1000)"),
			),
			mcp.WithNumber("duration",
				mcp.Description("Seconds, up to 30 (default 1)"),
			),
		),
		s.handleActivateBuzzer,
	)

	// Telemetry
	s.mcpServer.AddTool(
		mcp.NewTool("start_telemetry",
			mcp.WithDescription("Start polling the motion sensor and raising alerts"),
			mcp.WithNumber("interval_ms",
				mcp.Description("Polling interval in milliseconds (default 500)"),
			),
		),
		s.handleStartTelemetry,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("stop_telemetry",
			mcp.WithDescription("Stop polling the motion sensor"),
		),
		s.handleStopTelemetry,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_latest_reading",
			mcp.WithDescription("Get the most recent normalized sensor reading"),
		),
		s.handleGetLatestReading,
	)

	// Alerts
	s.mcpServer.AddTool(
		mcp.NewTool("list_alerts",
			mcp.WithDescription("List alert history, newest first"),
			mcp.WithString("kind",
				mcp.Description("Only this kind: led_alert, motion_alert, suspicious_activity, proximity_alert, fall, unusual_movement"),
			),
			mcp.WithBoolean("unread_only",
				mcp.Description("Only unread alerts (default false)"),
			),
		),
		s.handleListAlerts,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("mark_alert_read",
			mcp.WithDescription("Mark one alert read"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Alert ID"),
			),
		),
		s.handleMarkAlertRead,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("mark_all_alerts_read",
			mcp.WithDescription("Mark every alert read"),
		),
		s.handleMarkAllAlertsRead,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_alert",
			mcp.WithDescription("Delete one alert"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Alert ID"),
			),
		),
		s.handleDeleteAlert,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("clear_alerts",
			mcp.WithDescription("Delete all alert history"),
		),
		s.handleClearAlerts,
	)

	// Camera
	s.mcpServer.AddTool(
		mcp.NewTool("camera_status",
			mcp.WithDescription("Get the camera status reported by the device"),
		),
		s.handleCameraStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("capture_frame",
			mcp.WithDescription("Capture a still image as base64"),
			mcp.WithString("source",
				mcp.Description("csi, usb or both (default usb)"),
			),
		),
		s.handleCaptureFrame,
	)
}
