package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/guardit/pkg/api/types"
	"github.com/urmzd/guardit/pkg/app"
	"github.com/urmzd/guardit/pkg/device"
)

// DeviceHandler handles the device connection and actuator endpoints
type DeviceHandler struct {
	services *app.Services
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(services *app.Services) *DeviceHandler {
	return &DeviceHandler{services: services}
}

// GetDevice handles GET /device
// @Summary      Get device
// @Description  Returns the configured device address, connection state and inferred firmware kind
// @Tags         device
// @Produce      json
// @Success      200  {object}  types.DeviceResponse
// @Router       /device [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	c.JSON(http.StatusOK, types.DeviceResponse{Device: h.services.Endpoint.Info()})
}

// Connect handles POST /device/connect
// @Summary      Connect to device
// @Description  Configures the device address and probes it, searching alternative ports and paths and retrying before giving up
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        request  body      types.ConnectRequest  true  "Device address"
// @Success      200      {object}  types.DeviceResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid address"
// @Failure      503      {object}  types.ErrorResponse  "Device did not answer"
// @Router       /device/connect [post]
func (h *DeviceHandler) Connect(c *gin.Context) {
	var req types.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Body must contain an address",
		})
		return
	}

	info, err := h.services.Connect(c.Request.Context(), req.Address)
	if err != nil {
		abortWithDeviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DeviceResponse{Device: info})
}

// Disconnect handles POST /device/disconnect
// @Summary      Disconnect from device
// @Description  Stops telemetry and the camera stream and marks the device disconnected. The address is kept.
// @Tags         device
// @Produce      json
// @Success      200  {object}  types.DeviceResponse
// @Router       /device/disconnect [post]
func (h *DeviceHandler) Disconnect(c *gin.Context) {
	c.JSON(http.StatusOK, types.DeviceResponse{Device: h.services.Disconnect(c.Request.Context())})
}

// ActivateBuzzer handles POST /device/buzzer
// @Summary      Sound the buzzer
// @Description  Validates the tone and sends it to the device. A motion alert is recorded on success.
// @Tags         device
// @Accept       json
// @Produce      json
// @Param        request  body      types.BuzzerRequest  false  "Tone (defaults to 1000 Hz for 1 s)"
// @Success      200      {object}  types.BuzzerResponse
// @Failure      400      {object}  types.ErrorResponse  "Tone out of range"
// @Failure      503      {object}  types.ErrorResponse  "Device not connected"
// @Failure      504      {object}  types.ErrorResponse  "Request timed out"
// @Router       /device/buzzer [post]
func (h *DeviceHandler) ActivateBuzzer(c *gin.Context) {
	var req types.BuzzerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	cmd := buzzerCommand(req)
	result, err := h.services.ActivateBuzzer(c.Request.Context(), cmd)
	if err != nil {
		abortWithDeviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.BuzzerResponse{
		Command:   cmd,
		Result:    result,
		Timestamp: time.Now(),
	})
}

// BuzzerStatus handles GET /device/buzzer/status
// @Summary      Get buzzer status
// @Tags         device
// @Produce      json
// @Success      200  {object}  device.BuzzerStatus
// @Failure      503  {object}  types.ErrorResponse  "Device not connected"
// @Router       /device/buzzer/status [get]
func (h *DeviceHandler) BuzzerStatus(c *gin.Context) {
	st, err := h.services.Actuators.BuzzerStatus(c.Request.Context())
	if err != nil {
		abortWithDeviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// EnableDetection handles POST /device/detection/enable
// @Summary      Enable person detection
// @Tags         device
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Failure      503  {object}  types.ErrorResponse  "Device not connected"
// @Router       /device/detection/enable [post]
func (h *DeviceHandler) EnableDetection(c *gin.Context) {
	if err := h.services.Actuators.EnableDetection(c.Request.Context()); err != nil {
		abortWithDeviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.StatusResponse{Status: "detection_enabled"})
}

// DisableDetection handles POST /device/detection/disable
// @Summary      Disable person detection
// @Tags         device
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Failure      503  {object}  types.ErrorResponse  "Device not connected"
// @Router       /device/detection/disable [post]
func (h *DeviceHandler) DisableDetection(c *gin.Context) {
	if err := h.services.Actuators.DisableDetection(c.Request.Context()); err != nil {
		abortWithDeviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.StatusResponse{Status: "detection_disabled"})
}

// DetectionStatus handles GET /device/detection/status
// @Summary      Get person detection status
// @Tags         device
// @Produce      json
// @Success      200  {object}  types.DetectionResponse
// @Failure      503  {object}  types.ErrorResponse  "Device not connected"
// @Router       /device/detection/status [get]
func (h *DeviceHandler) DetectionStatus(c *gin.Context) {
	st, err := h.services.Actuators.DetectionStatus(c.Request.Context())
	if err != nil {
		abortWithDeviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DetectionResponse{
		Detection:  st,
		Suspicious: st.SuspiciousAt(time.Now()),
	})
}

func buzzerCommand(req types.BuzzerRequest) device.BuzzerCommand {
	cmd := device.DefaultBuzzerCommand
	if req.Frequency != nil {
		cmd.Frequency = *req.Frequency
	}
	if req.Duration != nil {
		cmd.Duration = *req.Duration
	}
	return cmd
}
