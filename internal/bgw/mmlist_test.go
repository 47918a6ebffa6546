package bgw

import "testing"

func TestParseMediaModules(t *testing.T) {
	records := parseMediaModules(sampleMGList)

	if _, ok := records["v1"]; ok {
		t.Error("v1 is not installed, want no record")
	}

	v3, ok := records["v3"]
	if !ok {
		t.Fatal("missing record for v3")
	}
	want := SlotRecord{Slot: "v3", Type: "E1T1", Code: "MM710", Suffix: "B", HWVintage: "16", FWVintage: "52"}
	if v3 != want {
		t.Errorf("v3 = %+v, want %+v", v3, want)
	}

	v10, ok := records["v10"]
	if !ok {
		t.Fatal("missing record for v10")
	}
	if v10.Code != "G450" || v10.HWVintage != "2" || v10.Suffix != "B" {
		t.Errorf("v10 = %+v", v10)
	}
}

func TestSlotDisplay(t *testing.T) {
	records := parseMediaModules(sampleMGList)

	tests := []struct {
		slot string
		want string
	}{
		{"v3", "MM710B"},
		{"v6", "MM714B"},
		{"v5", "Initializing"}, // state word reassembled from code+suffix
		{"v1", ""},
		{"v8", ""},
	}

	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			if got := slotDisplay(records, tt.slot); got != tt.want {
				t.Errorf("slotDisplay(%q) = %q, want %q", tt.slot, got, tt.want)
			}
		})
	}
}

func TestSlotDisplayICC(t *testing.T) {
	listing := `
SLOT   TYPE         CODE        SUFFIX  HW VINTAGE  FW VINTAGE
----   --------     ----------  ------  ----------  -----------
v1     S8300        ICC         E       1           30.12.1`

	records := parseMediaModules(listing)
	if got := slotDisplay(records, "v1"); got != "S8300E" {
		t.Errorf("slotDisplay(v1) = %q, want S8300E", got)
	}
}

func TestMainboardDisplay(t *testing.T) {
	records := parseMediaModules(sampleMGList)
	if got := mainboardDisplay(records); got != "2B" {
		t.Errorf("mainboardDisplay = %q, want 2B", got)
	}

	if got := mainboardDisplay(map[string]SlotRecord{}); got != "" {
		t.Errorf("mainboardDisplay(empty) = %q, want empty", got)
	}
}

func TestParseMediaModulesEmpty(t *testing.T) {
	if records := parseMediaModules(""); len(records) != 0 {
		t.Errorf("got %d records from empty listing", len(records))
	}
}
