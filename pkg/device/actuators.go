package device

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/guardit/pkg/device/schema"
)

// Actuator paths on the device API.
const (
	PathBuzzer           = "/buzzer"
	PathBuzzerStatus     = "/buzzer/status"
	PathDetectionEnable  = "/detection/enable"
	PathDetectionDisable = "/detection/disable"
	PathDetectionStatus  = "/detection/status"
)

// Actuators drives the buzzer and the on-device detection switch.
type Actuators struct {
	endpoint  *Endpoint
	validator *schema.Validator
}

// NewActuators creates actuators bound to endpoint.
func NewActuators(endpoint *Endpoint, validator *schema.Validator) *Actuators {
	if validator == nil {
		validator = schema.NewValidator()
	}
	return &Actuators{endpoint: endpoint, validator: validator}
}

// ActivateBuzzer sounds the buzzer. The command is validated before anything is sent.
func (a *Actuators) ActivateBuzzer(ctx context.Context, cmd BuzzerCommand) (map[string]any, error) {
	payload := map[string]any{
		"frequency": cmd.Frequency,
		"duration":  cmd.Duration,
	}
	if err := a.validator.Validate(schema.BuzzerCommand, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var result map[string]any
	if err := a.endpoint.PostJSON(ctx, PathBuzzer, cmd, &result); err != nil {
		return nil, fmt.Errorf("activate buzzer: %w", err)
	}

	log.Info().Float64("frequency", cmd.Frequency).Float64("duration", cmd.Duration).Msg("Buzzer activated")
	return result, nil
}

// BuzzerStatus reads whether the buzzer is currently sounding. Firmware reports
// either {"buzzer": {"is_active": b}} or {"active": b}.
func (a *Actuators) BuzzerStatus(ctx context.Context) (BuzzerStatus, error) {
	var raw map[string]any
	if err := a.endpoint.GetJSON(ctx, PathBuzzerStatus, 0, &raw); err != nil {
		return BuzzerStatus{}, fmt.Errorf("buzzer status: %w", err)
	}

	status := BuzzerStatus{Raw: raw}
	if buzzer, ok := raw["buzzer"].(map[string]any); ok {
		if active, ok := buzzer["is_active"].(bool); ok {
			status.Active = active
			return status, nil
		}
	}
	if active, ok := raw["active"].(bool); ok {
		status.Active = active
	}
	return status, nil
}

// EnableDetection turns on person detection on the device.
func (a *Actuators) EnableDetection(ctx context.Context) error {
	if err := a.endpoint.PostJSON(ctx, PathDetectionEnable, nil, nil); err != nil {
		return fmt.Errorf("enable detection: %w", err)
	}
	log.Info().Msg("Detection enabled")
	return nil
}

// DisableDetection turns off person detection on the device.
func (a *Actuators) DisableDetection(ctx context.Context) error {
	if err := a.endpoint.PostJSON(ctx, PathDetectionDisable, nil, nil); err != nil {
		return fmt.Errorf("disable detection: %w", err)
	}
	log.Info().Msg("Detection disabled")
	return nil
}

// DetectionStatus reads the detection state. suspicious may also arrive nested
// under "status".
func (a *Actuators) DetectionStatus(ctx context.Context) (DetectionStatus, error) {
	var raw map[string]json.RawMessage
	if err := a.endpoint.GetJSON(ctx, PathDetectionStatus, 0, &raw); err != nil {
		return DetectionStatus{}, fmt.Errorf("detection status: %w", err)
	}

	var status DetectionStatus
	readBool(raw["enabled"], &status.Enabled)
	readBool(raw["suspicious"], &status.Suspicious)
	readBool(raw["person_detected"], &status.PersonDetected)
	if v, ok := raw["last_detection"]; ok {
		_ = json.Unmarshal(v, &status.LastDetection)
	}

	if !status.Suspicious {
		var nested struct {
			Suspicious bool `json:"suspicious"`
		}
		if v, ok := raw["status"]; ok && json.Unmarshal(v, &nested) == nil {
			status.Suspicious = nested.Suspicious
		}
	}
	return status, nil
}

// readBool decodes v into dst when v is a JSON boolean; anything else leaves dst alone.
func readBool(v json.RawMessage, dst *bool) {
	if len(v) == 0 {
		return
	}
	var b bool
	if json.Unmarshal(v, &b) == nil {
		*dst = b
	}
}
