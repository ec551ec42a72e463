package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/guardit/pkg/api/types"
	"github.com/urmzd/guardit/pkg/app"
	"github.com/urmzd/guardit/pkg/device"
	"github.com/urmzd/guardit/pkg/notify"
)

// abortWithDeviceError maps the device error taxonomy onto HTTP statuses.
func abortWithDeviceError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "device_error"

	switch {
	case errors.Is(err, device.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, device.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, device.ErrNotConnected):
		status, code = http.StatusServiceUnavailable, "not_connected"
	case errors.Is(err, device.ErrUnreachable), errors.Is(err, app.ErrConnectFailed):
		status, code = http.StatusServiceUnavailable, "unreachable"
	case errors.Is(err, device.ErrMalformedResponse), errors.Is(err, device.ErrHTTPStatus):
		status, code = http.StatusBadGateway, "bad_device_response"
	case errors.Is(err, notify.ErrPermissionDenied):
		status, code = http.StatusForbidden, "permission_denied"
	}

	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: code, Message: err.Error()})
}

// valueStatus is the HTTP status for camera results that carry their error inline.
func valueStatus(errText string) int {
	if errText == "" {
		return http.StatusOK
	}
	if errText == "Camera not connected" {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
