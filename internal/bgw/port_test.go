package bgw

import "testing"

func TestParsePort(t *testing.T) {
	rec, ok := parsePort(samplePort, 0)
	if !ok {
		t.Fatal("primary port did not parse")
	}
	if rec.Port != "10/5" {
		t.Errorf("Port = %q, want 10/5", rec.Port)
	}
	if rec.Status != "connected" {
		t.Errorf("Status = %q, want connected", rec.Status)
	}
	if rec.VLAN != "1" || rec.Level != "0" {
		t.Errorf("VLAN/Level = %q/%q, want 1/0", rec.VLAN, rec.Level)
	}
	if rec.Neg != "enable" || rec.Duplex != "full" || rec.Speed != "1G" {
		t.Errorf("Neg/Duplex/Speed = %q/%q/%q", rec.Neg, rec.Duplex, rec.Speed)
	}

	rec, ok = parsePort(samplePort, 1)
	if !ok {
		t.Fatal("secondary port did not parse")
	}
	if rec.Port != "10/6" {
		t.Errorf("Port = %q, want 10/6", rec.Port)
	}
	if rec.Status != "no link" {
		t.Errorf("Status = %q, want no link", rec.Status)
	}
}

func TestParsePortMissing(t *testing.T) {
	tests := []struct {
		name string
		text string
		idx  int
	}{
		{"empty listing", "", 0},
		{"no marker lines", "Port   Name   Status\n10/5   NO NAME connected", 0},
		{"index beyond rows", samplePort, 2},
		{"negative index handled upstream", samplePort, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parsePort(tt.text, tt.idx); ok {
				t.Error("parsePort ok = true, want false")
			}
		})
	}
}

func TestParsePortDisabled(t *testing.T) {
	listing := `10/5   NO NAME          disabled  1     0     enable  full 1G   Avaya Inc., G450 Media Gateway Port 10/5`

	rec, ok := parsePort(listing, 0)
	if !ok {
		t.Fatal("row did not parse")
	}
	if rec.Status != "disabled" {
		t.Errorf("Status = %q, want disabled", rec.Status)
	}
}
