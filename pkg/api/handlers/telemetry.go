package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/guardit/pkg/api/types"
	"github.com/urmzd/guardit/pkg/app"
)

// TelemetryHandler handles the telemetry poller endpoints
type TelemetryHandler struct {
	services *app.Services
}

// NewTelemetryHandler creates a new telemetry handler
func NewTelemetryHandler(services *app.Services) *TelemetryHandler {
	return &TelemetryHandler{services: services}
}

// Start handles POST /telemetry/start
// @Summary      Start telemetry polling
// @Description  Starts (or restarts) the fetch, normalize, detect, notify cycle
// @Tags         telemetry
// @Accept       json
// @Produce      json
// @Param        request  body      types.StartTelemetryRequest  false  "Polling interval (default 500 ms)"
// @Success      200      {object}  types.TelemetryStatusResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid interval"
// @Failure      503      {object}  types.ErrorResponse  "Device not connected"
// @Router       /telemetry/start [post]
func (h *TelemetryHandler) Start(c *gin.Context) {
	var req types.StartTelemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}
	if req.IntervalMs < 0 || req.IntervalMs > 60000 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_interval",
			Message: "Interval must be between 0 and 60000 ms",
		})
		return
	}

	if err := h.services.StartTelemetry(time.Duration(req.IntervalMs) * time.Millisecond); err != nil {
		abortWithDeviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

// Stop handles POST /telemetry/stop
// @Summary      Stop telemetry polling
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  types.TelemetryStatusResponse
// @Router       /telemetry/stop [post]
func (h *TelemetryHandler) Stop(c *gin.Context) {
	h.services.StopTelemetry()
	c.JSON(http.StatusOK, h.status())
}

// Latest handles GET /telemetry/latest
// @Summary      Get the latest reading
// @Description  Returns the most recent normalized reading, its raw payload and the detector state
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  types.LatestReadingResponse
// @Failure      404  {object}  types.ErrorResponse  "No reading yet"
// @Router       /telemetry/latest [get]
func (h *TelemetryHandler) Latest(c *gin.Context) {
	reading, raw, ok := h.services.Poller.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:   "no_reading",
			Message: "No telemetry reading received yet",
		})
		return
	}
	c.JSON(http.StatusOK, types.LatestReadingResponse{
		Reading:   reading,
		Raw:       raw,
		Detectors: h.services.Poller.Detectors().State(),
	})
}

func (h *TelemetryHandler) status() types.TelemetryStatusResponse {
	running, interval := h.services.Poller.Running()
	resp := types.TelemetryStatusResponse{Running: running}
	if running {
		resp.IntervalMs = interval.Milliseconds()
	}
	return resp
}

