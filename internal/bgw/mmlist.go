package bgw

import (
	"regexp"
	"strings"
)

// SlotRecord is one row of the media-module listing ("show mg list"),
// keyed by slot identifier (v1..v8, v10 for the mainboard).
type SlotRecord struct {
	Slot      string `json:"slot"`
	Type      string `json:"type"`
	Code      string `json:"code"`
	Suffix    string `json:"suffix"`
	HWVintage string `json:"hw_vint"`
	FWVintage string `json:"fw_vint"`
}

// iccCode marks an interconnect card row; its display value falls back to
// the module type because the code column carries no model information.
const iccCode = "ICC"

var reMMRow = regexp.MustCompile(
	`.*?(?P<slot>\S+)` +
		`.*?(?P<type>\S+)` +
		`.*?(?P<code>\S+)` +
		`.*?(?P<suffix>\S+)` +
		`.*?(?P<hw_vint>\S+)` +
		`.*?(?P<fw_vint>\S+)`)

// parseMediaModules extracts installed module rows from the raw listing.
// Rows marked "Not Installed" are skipped. A row still coming up
// ("-- Initializing --") parses with its state word split across the code
// and suffix columns, so its display value reads "Initializing".
func parseMediaModules(text string) map[string]SlotRecord {
	records := make(map[string]SlotRecord)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "v") || strings.Contains(line, "Not Installed") {
			continue
		}
		m := reMMRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rec := SlotRecord{
			Slot:      m[reMMRow.SubexpIndex("slot")],
			Type:      m[reMMRow.SubexpIndex("type")],
			Code:      m[reMMRow.SubexpIndex("code")],
			Suffix:    m[reMMRow.SubexpIndex("suffix")],
			HWVintage: m[reMMRow.SubexpIndex("hw_vint")],
			FWVintage: m[reMMRow.SubexpIndex("fw_vint")],
		}
		records[rec.Slot] = rec
	}
	return records
}

// slotDisplay composes the per-slot display value for slots 1-8:
// module code plus suffix, falling back to the type column for
// interconnect cards.
func slotDisplay(records map[string]SlotRecord, slot string) string {
	rec := records[slot]
	code := rec.Code
	if code == iccCode {
		code = rec.Type
	}
	return code + rec.Suffix
}

// mainboardDisplay composes the slot 10 display value. The mainboard row
// reports its own model in the code column, so the hardware vintage plus
// suffix is shown instead of code plus suffix.
func mainboardDisplay(records map[string]SlotRecord) string {
	rec := records["v10"]
	return rec.HWVintage + rec.Suffix
}
