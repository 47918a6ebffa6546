package bgw

import "regexp"

// PortRecord is one parsed LAN-port line from "show port". Index 0 is the
// primary port, index 1 the secondary.
type PortRecord struct {
	Port   string `json:"port"`
	Name   string `json:"name"`
	Status string `json:"status"`
	VLAN   string `json:"vlan"`
	Level  string `json:"level"`
	Neg    string `json:"neg"`
	Duplex string `json:"duplex"`
	Speed  string `json:"speed"`
}

// portMarker identifies the rows of interest in the port listing; only
// lines carrying the vendor name describe the gateway's own LAN ports.
var rePortMarker = regexp.MustCompile(`.*Avaya Inc`)

var rePortRow = regexp.MustCompile(
	`.*?(?P<port>\d+/\d+)` +
		`.*?(?P<name>.*)` +
		`.*?(?P<status>(connected|no link|disabled))` +
		`.*?(?P<vlan>\d+)` +
		`.*?(?P<level>\d+)` +
		`.*?(?P<neg>\S+)` +
		`.*?(?P<duplex>\S+)` +
		`.*?(?P<speed>\S+)`)

// parsePort extracts the port record at idx from the raw listing.
// The second return value is false when the listing is missing, has no
// marker lines, idx is out of range, or the row does not parse.
func parsePort(text string, idx int) (PortRecord, bool) {
	if text == "" {
		return PortRecord{}, false
	}

	lines := rePortMarker.FindAllString(text, -1)
	if len(lines) == 0 || idx >= len(lines) {
		return PortRecord{}, false
	}

	m := rePortRow.FindStringSubmatch(lines[idx])
	if m == nil {
		return PortRecord{}, false
	}

	return PortRecord{
		Port:   m[rePortRow.SubexpIndex("port")],
		Name:   m[rePortRow.SubexpIndex("name")],
		Status: m[rePortRow.SubexpIndex("status")],
		VLAN:   m[rePortRow.SubexpIndex("vlan")],
		Level:  m[rePortRow.SubexpIndex("level")],
		Neg:    m[rePortRow.SubexpIndex("neg")],
		Duplex: m[rePortRow.SubexpIndex("duplex")],
		Speed:  m[rePortRow.SubexpIndex("speed")],
	}, true
}
