package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/guardit/pkg/alert"
	"github.com/urmzd/guardit/pkg/api/types"
	"github.com/urmzd/guardit/pkg/app"
)

const heartbeatInterval = 30 * time.Second

// AlertsHandler handles the alert history and notification endpoints
type AlertsHandler struct {
	services  *app.Services
	heartbeat time.Duration
}

// NewAlertsHandler creates a new alerts handler
func NewAlertsHandler(services *app.Services) *AlertsHandler {
	return &AlertsHandler{services: services, heartbeat: heartbeatInterval}
}

// List handles GET /alerts
// @Summary      List alerts
// @Description  Returns alert history, newest first
// @Tags         alerts
// @Produce      json
// @Param        kind   query     string  false  "Only this alert kind"
// @Param        since  query     string  false  "Only alerts newer than this duration, e.g. 24h"
// @Success      200    {object}  types.ListAlertsResponse
// @Failure      400    {object}  types.ErrorResponse  "Invalid filter"
// @Router       /alerts [get]
func (h *AlertsHandler) List(c *gin.Context) {
	store := h.services.Store
	records := store.List()

	if k := c.Query("kind"); k != "" {
		kind := alert.Kind(k)
		if !kind.Valid() {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error:   "invalid_kind",
				Message: "Unknown alert kind " + k,
			})
			return
		}
		records = store.ByKind(kind)
	}

	if s := c.Query("since"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error:   "invalid_since",
				Message: "since must be a positive duration such as 24h",
			})
			return
		}
		cutoff := time.Now().Add(-d)
		filtered := records[:0]
		for _, r := range records {
			if r.CreatedAt.After(cutoff) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	now := time.Now()
	views := make([]types.AlertView, 0, len(records))
	for _, r := range records {
		views = append(views, types.AlertView{Record: r, Age: alert.FormatAge(r.CreatedAt, now)})
	}

	c.JSON(http.StatusOK, types.ListAlertsResponse{
		Alerts: views,
		Count:  len(views),
		Unread: store.UnreadCount(),
	})
}

// Unread handles GET /alerts/unread
// @Summary      Count unread alerts
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  types.UnreadResponse
// @Router       /alerts/unread [get]
func (h *AlertsHandler) Unread(c *gin.Context) {
	c.JSON(http.StatusOK, types.UnreadResponse{Unread: h.services.Store.UnreadCount()})
}

// MarkRead handles POST /alerts/:id/read
// @Summary      Mark an alert read
// @Description  Idempotent; an unknown id is not an error
// @Tags         alerts
// @Produce      json
// @Param        id   path      string  true  "Alert ID"
// @Success      200  {object}  types.UnreadResponse
// @Router       /alerts/{id}/read [post]
func (h *AlertsHandler) MarkRead(c *gin.Context) {
	h.services.Store.MarkRead(c.Param("id"))
	c.JSON(http.StatusOK, types.UnreadResponse{Unread: h.services.Store.UnreadCount()})
}

// MarkAllRead handles POST /alerts/read-all
// @Summary      Mark every alert read
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  types.UnreadResponse
// @Router       /alerts/read-all [post]
func (h *AlertsHandler) MarkAllRead(c *gin.Context) {
	h.services.Store.MarkAllRead()
	c.JSON(http.StatusOK, types.UnreadResponse{Unread: 0})
}

// Delete handles DELETE /alerts/:id
// @Summary      Delete an alert
// @Description  Idempotent; an unknown id is not an error
// @Tags         alerts
// @Param        id   path  string  true  "Alert ID"
// @Success      204
// @Router       /alerts/{id} [delete]
func (h *AlertsHandler) Delete(c *gin.Context) {
	h.services.Store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Clear handles DELETE /alerts
// @Summary      Clear alert history
// @Tags         alerts
// @Success      204
// @Router       /alerts [delete]
func (h *AlertsHandler) Clear(c *gin.Context) {
	h.services.Store.ClearAll()
	c.Status(http.StatusNoContent)
}

// Test handles POST /alerts/test
// @Summary      Send a test notification
// @Description  Dispatches an LED alert. delivered is false when the cooldown dropped it.
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  types.TestAlertResponse
// @Failure      403  {object}  types.ErrorResponse  "Notification permission denied"
// @Router       /alerts/test [post]
func (h *AlertsHandler) Test(c *gin.Context) {
	record, err := h.services.TestNotification(c.Request.Context())
	if err != nil {
		abortWithDeviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.TestAlertResponse{Delivered: record != nil, Alert: record})
}

// Events handles GET /alerts/events (SSE stream)
// @Summary      Subscribe to alerts
// @Description  Server-Sent Events stream of every dispatched alert
// @Tags         alerts
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE event stream"
// @Router       /alerts/events [get]
func (h *AlertsHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	dispatcher := h.services.Dispatcher
	records := dispatcher.Subscribe()
	defer dispatcher.Unsubscribe(records)

	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
		"unread":    h.services.Store.UnreadCount(),
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case r, ok := <-records:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, "alert", r)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
			c.Writer.Flush()
		}
	}
}

func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
