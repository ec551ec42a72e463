package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/guardit/pkg/api/types"
	"github.com/urmzd/guardit/pkg/app"
	"github.com/urmzd/guardit/pkg/device"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	services *app.Services
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(services *app.Services) *HealthHandler {
	return &HealthHandler{services: services}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the device connection, telemetry and notification state. The API itself stays up while the device is away.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Device connected"
// @Failure      503  {object}  types.HealthResponse  "Device not connected"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	snap := h.services.Health()

	status := "healthy"
	httpStatus := http.StatusOK
	if snap.Device.State != device.StateConnected {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, types.HealthResponse{
		Status:           status,
		Device:           snap.Device,
		TelemetryRunning: snap.TelemetryRunning,
		CameraStreaming:  snap.CameraStreaming,
		Platform:         snap.Platform,
		UnreadAlerts:     snap.UnreadAlerts,
		Uptime:           snap.Uptime,
		Timestamp:        time.Now(),
	})
}
