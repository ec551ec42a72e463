package camera

// statusShape recognizes one nesting pattern of a camera status payload.
type statusShape struct {
	name  string
	match func(raw map[string]any) (Status, bool)
}

// statusShapes are tried in order; the first structural match wins.
var statusShapes = []statusShape{
	{"camera_status", matchCameraStatus},
	{"camera_opened", matchCameraOpened},
	{"camera", matchCameraObject},
	{"status.camera", matchNestedStatus},
}

// parseStatus runs the shape chain over raw.
func parseStatus(raw map[string]any) (Status, bool) {
	for _, s := range statusShapes {
		if st, ok := s.match(raw); ok {
			st.Shape = s.name
			st.Raw = raw
			return st, true
		}
	}
	return Status{}, false
}

// {"camera_status": {"csi_available": b, "usb_available": b, "streaming": b}}
func matchCameraStatus(raw map[string]any) (Status, bool) {
	cs, ok := raw["camera_status"].(map[string]any)
	if !ok {
		return Status{}, false
	}
	st := Status{
		CSIAvailable: flag(cs, "csi_available"),
		USBAvailable: flag(cs, "usb_available"),
		Streaming:    flag(cs, "streaming") || flag(cs, "is_streaming"),
	}
	st.Opened = st.CSIAvailable || st.USBAvailable || flag(cs, "camera_opened")
	return st, true
}

// {"camera_opened": b, "is_streaming": b}
func matchCameraOpened(raw map[string]any) (Status, bool) {
	opened, ok := raw["camera_opened"].(bool)
	if !ok {
		return Status{}, false
	}
	return Status{Opened: opened, Streaming: flag(raw, "is_streaming")}, true
}

// {"camera": {"opened"|"available": b, "streaming": b}}
func matchCameraObject(raw map[string]any) (Status, bool) {
	cam, ok := raw["camera"].(map[string]any)
	if !ok {
		return Status{}, false
	}
	return cameraFields(cam)
}

// {"status": {"camera": {...}}}
func matchNestedStatus(raw map[string]any) (Status, bool) {
	status, ok := raw["status"].(map[string]any)
	if !ok {
		return Status{}, false
	}
	cam, ok := status["camera"].(map[string]any)
	if !ok {
		return Status{}, false
	}
	return cameraFields(cam)
}

func cameraFields(cam map[string]any) (Status, bool) {
	st := Status{
		Opened:       flag(cam, "opened") || flag(cam, "available") || flag(cam, "camera_opened"),
		Streaming:    flag(cam, "streaming") || flag(cam, "is_streaming"),
		CSIAvailable: flag(cam, "csi_available"),
		USBAvailable: flag(cam, "usb_available"),
	}
	return st, true
}

func flag(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
