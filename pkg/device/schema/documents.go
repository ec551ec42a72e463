package schema

import "encoding/json"

// Shape is a named structural pattern for a device payload.
type Shape struct {
	Name   string
	Schema json.RawMessage
}

// Telemetry payload shape names
const (
	ShapeNested   = "nested"    // {"data": {"accelerometer": {...}, "gyroscope": {...}, "temperature": n}}
	ShapeFlat     = "flat"      // {"accelerometer": {"x","y","z","magnitude","change"}, ...}
	ShapeTopLevel = "top_level" // {"ax","ay","az","gx","gy","gz","temp"}
)

// TelemetryShapes lists the known IMU payload shapes in matching order.
var TelemetryShapes = []Shape{
	{Name: ShapeNested, Schema: json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["data"],
		"properties": {
			"data": {
				"type": "object",
				"required": ["accelerometer"],
				"properties": {
					"accelerometer": {"$ref": "#/$defs/vector"},
					"gyroscope": {"$ref": "#/$defs/vector"},
					"temperature": {"type": ["number", "null"]}
				}
			}
		},
		"$defs": {
			"vector": {
				"type": "object",
				"required": ["x", "y", "z"],
				"properties": {
					"x": {"type": "number"},
					"y": {"type": "number"},
					"z": {"type": "number"}
				}
			}
		}
	}`)},
	{Name: ShapeFlat, Schema: json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["accelerometer"],
		"properties": {
			"accelerometer": {
				"type": "object",
				"required": ["x", "y", "z"],
				"properties": {
					"x": {"type": "number"},
					"y": {"type": "number"},
					"z": {"type": "number"},
					"magnitude": {"type": "number"},
					"change": {"type": "number"}
				}
			}
		}
	}`)},
	{Name: ShapeTopLevel, Schema: json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["ax", "ay", "az"],
		"properties": {
			"ax": {"type": "number"},
			"ay": {"type": "number"},
			"az": {"type": "number"},
			"gx": {"type": "number"},
			"gy": {"type": "number"},
			"gz": {"type": "number"},
			"temp": {"type": "number"}
		}
	}`)},
}

// BuzzerCommand constrains POST /buzzer bodies. Duration is in seconds.
var BuzzerCommand = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["frequency", "duration"],
	"properties": {
		"frequency": {"type": "number", "minimum": 20, "maximum": 20000},
		"duration": {"type": "number", "exclusiveMinimum": 0, "maximum": 30}
	},
	"additionalProperties": false
}`)
