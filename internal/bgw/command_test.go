package bgw

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"show system", CmdSystem},
		{"SHOW SYSTEM", CmdSystem},
		{"  show   system  ", CmdSystem},
		{"show running-config", CmdRunningConfig},
		{"show running config", CmdRunningConfig},
		{"show_running_config", CmdRunningConfig},
		{"show rtp-stat summary", CmdRTPStatSummary},
		{"show upload status 10", CmdUploadStatus},
		{"show voip-dsp", CmdVoIPDSP},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeUnknown(t *testing.T) {
	for _, in := range []string{"", "show nonsense", "reboot", "show systems"} {
		if _, err := Normalize(in); !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("Normalize(%q) err = %v, want ErrUnknownCommand", in, err)
		}
	}
}

func TestCommandsCoverEveryConstant(t *testing.T) {
	seen := make(map[Command]bool, len(Commands))
	for _, c := range Commands {
		if seen[c] {
			t.Errorf("duplicate command %q", c)
		}
		seen[c] = true
	}
	if len(Commands) != 15 {
		t.Errorf("len(Commands) = %d, want 15", len(Commands))
	}
}
