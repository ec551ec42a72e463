package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/api/types"
	"github.com/urmzd/guardit/pkg/app"
	"github.com/urmzd/guardit/pkg/camera"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CameraHandler handles the camera endpoints. Camera results carry failures in
// their error field; the HTTP status mirrors it.
type CameraHandler struct {
	services *app.Services
}

// NewCameraHandler creates a new camera handler
func NewCameraHandler(services *app.Services) *CameraHandler {
	return &CameraHandler{services: services}
}

// Status handles GET /camera/status
// @Summary      Get camera status
// @Description  Reads the camera status from /camera or /status on the device, whichever answers in a known shape
// @Tags         camera
// @Produce      json
// @Success      200  {object}  camera.Status
// @Failure      502  {object}  camera.Status  "Device error"
// @Failure      503  {object}  camera.Status  "Camera not connected"
// @Router       /camera/status [get]
func (h *CameraHandler) Status(c *gin.Context) {
	st := h.services.Camera.FetchStatus(c.Request.Context())
	c.JSON(valueStatus(st.Error), st)
}

// Capture handles GET /camera/capture/:source
// @Summary      Capture a frame
// @Tags         camera
// @Produce      json
// @Param        source  path      string  true  "csi, usb or both"
// @Success      200     {object}  camera.Capture
// @Failure      400     {object}  types.ErrorResponse  "Unknown source"
// @Failure      502     {object}  camera.Capture  "Device error"
// @Router       /camera/capture/{source} [get]
func (h *CameraHandler) Capture(c *gin.Context) {
	source := camera.Source(c.Param("source"))
	if !source.Valid() {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_source",
			Message: "Source must be csi, usb or both",
		})
		return
	}

	capture := h.services.Camera.CaptureFrame(c.Request.Context(), source)
	c.JSON(valueStatus(capture.Error), capture)
}

// StartStream handles POST /camera/stream/start
// @Summary      Start the frame stream
// @Description  Asks the device to stream and starts polling frames locally
// @Tags         camera
// @Produce      json
// @Success      200  {object}  camera.StreamResult
// @Failure      503  {object}  camera.StreamResult  "Camera not connected"
// @Router       /camera/stream/start [post]
func (h *CameraHandler) StartStream(c *gin.Context) {
	res := h.services.Camera.StartStream(c.Request.Context())
	c.JSON(valueStatus(res.Error), res)
}

// StopStream handles POST /camera/stream/stop
// @Summary      Stop the frame stream
// @Tags         camera
// @Produce      json
// @Success      200  {object}  camera.StreamResult
// @Router       /camera/stream/stop [post]
func (h *CameraHandler) StopStream(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Camera.StopStream(c.Request.Context(), true))
}

// Frame handles GET /camera/stream/frame
// @Summary      Get the current stream frame
// @Tags         camera
// @Produce      json
// @Success      200  {object}  camera.Frame
// @Failure      502  {object}  camera.Frame  "No frame"
// @Router       /camera/stream/frame [get]
func (h *CameraHandler) Frame(c *gin.Context) {
	f := h.services.Camera.PollNextFrame(c.Request.Context())
	c.JSON(valueStatus(f.Error), f)
}

// CheckMotion handles POST /camera/motion/check
// @Summary      Check camera motion
// @Description  Reads the device motion flag; a new detection records a motion alert
// @Tags         camera
// @Produce      json
// @Success      200  {object}  camera.MotionResult
// @Failure      502  {object}  camera.MotionResult  "Device error"
// @Router       /camera/motion/check [post]
func (h *CameraHandler) CheckMotion(c *gin.Context) {
	res := h.services.Camera.CheckMotion(c.Request.Context())
	c.JSON(valueStatus(res.Error), res)
}

// StreamSocket handles GET /camera/stream/ws
// @Summary      Relay stream frames over a websocket
// @Description  Starts the frame stream if needed and writes every frame as a JSON text message
// @Tags         camera
// @Success      101  {string}  string  "Switching protocols"
// @Router       /camera/stream/ws [get]
func (h *CameraHandler) StreamSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	cam := h.services.Camera
	frames := cam.Subscribe()
	defer cam.Unsubscribe(frames)

	if !cam.Streaming() {
		if res := cam.StartStream(c.Request.Context()); res.Error != "" {
			_ = conn.WriteJSON(res)
			return
		}
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Msg("WebSocket read error")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
