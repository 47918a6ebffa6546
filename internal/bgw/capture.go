package bgw

import "strings"

// Lifecycle base states for the packet-capture state machine. The stored
// value may carry trailing detail text (for example a buffer occupancy
// percentage); baseState strips it before the transition rules apply.
const (
	stateNA       = "NA"
	stateStarting = "starting"
	stateStopping = "stopping"
	stateRunning  = "running"
	stateStopped  = "stopped"
	stateDisabled = "disabled"
)

func baseState(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if s == "na" {
		return stateNA
	}
	for _, st := range []string{stateStarting, stateStopping, stateRunning, stateStopped, stateDisabled} {
		if strings.HasPrefix(s, st) {
			return st
		}
	}
	return s
}

// SetPacketCapture runs the capture lifecycle state machine: it reconciles
// a newly observed raw status against the stored state and either accepts
// the new value or leaves the stored state unchanged. Raw capture status
// can report a stale state for a cycle mid-transition; rejecting
// out-of-order observations keeps the visible lifecycle monotonic.
func (g *Gateway) SetPacketCapture(value string) {
	current := strings.TrimSpace(g.packetCapture)
	value = strings.TrimSpace(value)

	curBase := baseState(current)
	valBase := baseState(value)

	switch {
	// Clearing and unknown are always accepted.
	case valBase == "" || valBase == stateNA:
		if valBase == stateNA {
			g.packetCapture = stateNA
		} else {
			g.packetCapture = ""
		}

	// Transitional observations are inherently transient and must never
	// be suppressed.
	case valBase == stateStarting || valBase == stateStopping:
		g.packetCapture = value

	// Same steady state: accept to refresh the detail text.
	case curBase == valBase && (valBase == stateRunning || valBase == stateStopped):
		g.packetCapture = value

	// Bootstrap from empty/unknown.
	case curBase == "" || curBase == stateNA:
		if valBase == stateRunning || valBase == stateStopped || valBase == stateDisabled {
			g.packetCapture = value
		}

	case curBase == stateStarting:
		if valBase == stateRunning {
			g.packetCapture = value
		}

	case curBase == stateStopping:
		if valBase == stateStopped {
			g.packetCapture = value
		}

	case curBase == stateRunning:
		if valBase == stateStopped {
			g.packetCapture = value
		}
	}
	// Everything else is flapping noise; the stored state stands.
}

// PacketCapture returns the user-facing capture status. The stored
// lifecycle value overrides the instantaneous status only during
// transitional windows; otherwise the freshly derived status is shown.
func (g *Gateway) PacketCapture() string {
	val := strings.ToLower(strings.TrimSpace(g.packetCapture))
	if strings.HasPrefix(val, stateStarting) || strings.HasPrefix(val, stateStopping) {
		return g.packetCapture
	}
	return g.Field("capture_status")
}

// PcapUpload returns the stored upload lifecycle value, falling back to
// the instantaneous upload status when nothing has been stored yet.
func (g *Gateway) PcapUpload() string {
	if g.pcapUpload != "" {
		return g.pcapUpload
	}
	return g.Field("upload_status")
}
