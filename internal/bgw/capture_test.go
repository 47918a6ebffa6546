package bgw

import (
	"testing"

	"pgregory.net/rapid"
)

func TestSetPacketCapture(t *testing.T) {
	tests := []struct {
		name    string
		current string
		observe string
		want    string
	}{
		{"bootstrap running", "", "running ( 4%)", "running ( 4%)"},
		{"bootstrap stopped", "", "stopped (71%)", "stopped (71%)"},
		{"bootstrap disabled", "", "inactive", ""},
		{"bootstrap from NA", "NA", "running ( 4%)", "running ( 4%)"},
		{"starting always accepted", "stopped (71%)", "starting", "starting"},
		{"stopping always accepted", "running ( 4%)", "stopping", "stopping"},
		{"starting to running", "starting", "running ( 1%)", "running ( 1%)"},
		{"starting holds on stale stopped", "starting", "stopped (71%)", "starting"},
		{"stopping to stopped", "stopping", "stopped (80%)", "stopped (80%)"},
		{"stopping holds on stale running", "stopping", "running ( 9%)", "stopping"},
		{"running to stopped", "running ( 4%)", "stopped (12%)", "stopped (12%)"},
		{"stopped rejects direct running", "stopped (71%)", "running ( 4%)", "stopped (71%)"},
		{"running refresh", "running ( 4%)", "running ( 9%)", "running ( 9%)"},
		{"stopped refresh", "stopped (12%)", "stopped (71%)", "stopped (71%)"},
		{"clear always accepted", "running ( 4%)", "", ""},
		{"NA always accepted", "running ( 4%)", "NA", "NA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New("10.10.48.58", "ssh", 10)
			g.packetCapture = tt.current
			g.SetPacketCapture(tt.observe)
			if g.packetCapture != tt.want {
				t.Errorf("state = %q, want %q", g.packetCapture, tt.want)
			}
		})
	}
}

func TestPacketCaptureGetter(t *testing.T) {
	g := setupGateway(t, map[Command]string{CmdCapture: sampleCapture})

	// Steady states always reflect the freshly derived status.
	g.packetCapture = "running (99%)"
	if got := g.PacketCapture(); got != "running ( 4%)" {
		t.Errorf("PacketCapture = %q, want derived running ( 4%%)", got)
	}

	// Transitional states mask the raw status until they resolve.
	g.packetCapture = "stopping"
	if got := g.PacketCapture(); got != "stopping" {
		t.Errorf("PacketCapture = %q, want stopping", got)
	}
	g.packetCapture = "starting"
	if got := g.PacketCapture(); got != "starting" {
		t.Errorf("PacketCapture = %q, want starting", got)
	}
}

func TestPcapUpload(t *testing.T) {
	g := setupGateway(t, map[Command]string{CmdUploadStatus: sampleUploadIdle})

	if got := g.PcapUpload(); got != "idle" {
		t.Errorf("PcapUpload = %q, want derived idle", got)
	}

	g.pcapUpload = "executing"
	if got := g.PcapUpload(); got != "executing" {
		t.Errorf("PcapUpload = %q, want stored executing", got)
	}
}

// TestPacketCaptureSequences drives the lifecycle with random observation
// sequences and checks the invariants that hold for every history: the
// stored value is either the previous value or the latest observation,
// and a stopped capture never reports running without an intervening
// start request or reset.
func TestPacketCaptureSequences(t *testing.T) {
	observations := []string{
		"", "NA", "starting", "stopping",
		"running ( 4%)", "running (12%)",
		"stopped (71%)", "stopped ( 0%)",
		"inactive",
	}

	rapid.Check(t, func(t *rapid.T) {
		g := New("10.10.48.58", "ssh", 10)
		n := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < n; i++ {
			prev := g.packetCapture
			obs := rapid.SampledFrom(observations).Draw(t, "obs")
			g.SetPacketCapture(obs)
			cur := g.packetCapture

			if cur != prev && cur != obs && !(obs == "NA" && cur == "NA") && !(obs == "" && cur == "") {
				t.Fatalf("stored %q is neither previous %q nor observed %q", cur, prev, obs)
			}
			if baseState(prev) == stateStopped && baseState(obs) == stateRunning && baseState(cur) == stateRunning {
				t.Fatalf("stopped capture accepted running directly (obs %q)", obs)
			}
		}
	})
}
