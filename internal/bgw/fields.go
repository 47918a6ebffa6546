package bgw

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A fieldSpec defines one derived telemetry field: its source commands and
// the pure derivation over the raw store. Derivations never fail; a parse
// miss yields "" and a missing source yields "NA". Fields with selfGuard
// set handle missing sources themselves (their absence value differs from
// the uniform "NA").
type fieldSpec struct {
	name      string
	sources   []Command
	selfGuard bool
	derive    func(g *Gateway) string
}

type cacheEntry struct {
	value    string
	versions []uint64
}

// valueNA is returned by every extractor whose source blob was never
// observed, as opposed to "" which means "parsed, nothing found".
const valueNA = "NA"

var (
	reActiveSessions = regexp.MustCompile(`nal\s+\S+\s+(\S+)`)
	reTotalSessions  = regexp.MustCompile(`nal\s+\S+\s+\S+\s+(\S+)`)
	reCaptureAdmin   = regexp.MustCompile(`Capture service is (\w+)`)
	reCaptureBuffer  = regexp.MustCompile(`Current buffer size is (\d+) KB`)
	reCaptureRun     = regexp.MustCompile(`Capture service is \w+ and (\w+)`)
	reCaptureOcc     = regexp.MustCompile(`buffer occupancy: (\d+)\.`)
	reHWVintage      = regexp.MustCompile(`HW Vintage\s+:\s+(\S+)`)
	reHWSuffix       = regexp.MustCompile(`HW Suffix\s+:\s+(\S+)`)
	reCompFlash      = regexp.MustCompile(`Flash Memory\s+: (\d+)\S+ ([MG])B`)
	reCPUUtil        = regexp.MustCompile(`10\s+\d+%\s+(\d+)%`)
	reMediaSocket    = regexp.MustCompile(`Media Socket .*?: M?P?(\d+) `)
	reFaultLine      = regexp.MustCompile(`\s+\+ (\S+)`)
	reFWVintage      = regexp.MustCompile(`FW Vintage\s+:\s+(\S+)`)
	reLocation       = regexp.MustCompile(`System Location\s+:\s*(\S+)`)
	reLANMAC         = regexp.MustCompile(`LAN MAC Address\s+:\s+(\S+)`)
	reMBVintage      = regexp.MustCompile(`Mainboard HW Vintage\s+:\s+(\S+)`)
	reMBSuffix       = regexp.MustCompile(`Mainboard HW Suffix\s+:\s+(\S+)`)
	reRAMMemory      = regexp.MustCompile(`RAM Memory\s+:\s+(\S+)`)
	reMemoryBank     = regexp.MustCompile(`Memory #\d+\s+:\s+(\S+)`)
	reMemToken       = regexp.MustCompile(`(\d+)([MG]B)`)
	reModel          = regexp.MustCompile(`Model\s+:\s+(\S+)`)
	rePortRedu       = regexp.MustCompile(`port redundancy \d+/(\d+) \d+/(\d+)`)
	reMainPSU        = regexp.MustCompile(`Main PSU\s+:\s+(\S+)`)
	rePSU1           = regexp.MustCompile(`PSU #1\s+:\s+\S+ (\S+)`)
	rePSU2           = regexp.MustCompile(`PSU #2\s+:\s+\S+ (\S+)`)
	reRAMUtil        = regexp.MustCompile(`10\s+\S+\s+\S+\s+(\d+)%`)
	reSerial         = regexp.MustCompile(`Serial No\s+:\s+(\S+)`)
	reSLAMonitor     = regexp.MustCompile(`SLA Monitor:\s+(\S+)`)
	reSLAServer      = regexp.MustCompile(`Registered Server IP Address:\s+(\S+)`)
	reSNMPTrap       = regexp.MustCompile(`snmp-server host (\S+) trap`)
	reTemp           = regexp.MustCompile(`Temperature\s+:\s+(\S+) \((\S+)\)`)
	reUploadState    = regexp.MustCompile(`Running state\s+:\s+(\S+)`)
	reUploadFailure  = regexp.MustCompile(`Failure display\s+:\s+(\S+)`)
	reUptime         = regexp.MustCompile(`Uptime \(\S+\)\s+:\s+(\S+)`)
	reInUseDSP       = regexp.MustCompile(`In Use\s+:\s+(\d+)`)
)

// search1 returns the first capture group of the first match, or "".
func search1(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// toMByte converts a memory token like "256MB" or "1GB" to megabytes.
// Unrecognized tokens count as zero.
func toMByte(token string) int {
	m := reMemToken.FindStringSubmatch(token)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "MB":
		return n
	case "GB":
		return 1024 * n
	}
	return 0
}

var fieldSpecs = []fieldSpec{
	{name: "active_sessions", sources: []Command{CmdRTPStatSummary}, derive: func(g *Gateway) string {
		return search1(reActiveSessions, g.store.Get(CmdRTPStatSummary))
	}},
	{name: "announcements", sources: []Command{CmdAnnouncementFiles}, derive: func(g *Gateway) string {
		return strconv.Itoa(strings.Count(g.store.Get(CmdAnnouncementFiles), "announcement file"))
	}},
	{name: "capture_service", sources: []Command{CmdCapture}, derive: deriveCaptureService},
	{name: "capture_status", sources: []Command{CmdCapture}, selfGuard: true, derive: deriveCaptureStatus},
	{name: "chassis_hw", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		text := g.store.Get(CmdSystem)
		return search1(reHWVintage, text) + search1(reHWSuffix, text)
	}},
	{name: "comp_flash", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		m := reCompFlash.FindStringSubmatch(g.store.Get(CmdSystem))
		if m == nil {
			return ""
		}
		return m[1] + m[2] + "B"
	}},
	{name: "cpu_util", sources: []Command{CmdUtilization}, derive: func(g *Gateway) string {
		if v := search1(reCPUUtil, g.store.Get(CmdUtilization)); v != "" {
			return v + "%"
		}
		return ""
	}},
	{name: "dsp", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		ms := reMediaSocket.FindAllStringSubmatch(g.store.Get(CmdSystem), -1)
		if len(ms) == 0 {
			return ""
		}
		total := 0
		for _, m := range ms {
			n, _ := strconv.Atoi(m[1])
			total += n
		}
		return strconv.Itoa(total)
	}},
	{name: "faults", sources: []Command{CmdFaults}, derive: func(g *Gateway) string {
		text := g.store.Get(CmdFaults)
		if strings.Contains(text, "No Fault Messages") {
			return "0"
		}
		return strconv.Itoa(len(reFaultLine.FindAllString(text, -1)))
	}},
	{name: "fw", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		return search1(reFWVintage, g.store.Get(CmdSystem))
	}},
	{name: "hw", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		text := g.store.Get(CmdSystem)
		vintage := search1(reHWVintage, text)
		if vintage == "" {
			vintage = "?"
		}
		suffix := search1(reHWSuffix, text)
		if suffix == "" {
			suffix = "?"
		}
		return vintage + suffix
	}},
	{name: "inuse_dsp", sources: []Command{CmdVoIPDSP}, selfGuard: true, derive: func(g *Gateway) string {
		total := 0
		for _, m := range reInUseDSP.FindAllStringSubmatch(g.store.Get(CmdVoIPDSP), -1) {
			n, _ := strconv.Atoi(m[1])
			total += n
		}
		return strconv.Itoa(total)
	}},
	{name: "lldp", sources: []Command{CmdLLDPConfig}, derive: func(g *Gateway) string {
		if strings.Contains(g.store.Get(CmdLLDPConfig), "Application status: disable") {
			return "disabled"
		}
		return "enabled"
	}},
	{name: "location", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		return search1(reLocation, g.store.Get(CmdSystem))
	}},
	{name: "mac", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		return strings.ReplaceAll(search1(reLANMAC, g.store.Get(CmdSystem)), ":", "")
	}},
	{name: "mainboard_hw", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		text := g.store.Get(CmdSystem)
		vintage := search1(reMBVintage, text)
		if vintage == "" {
			vintage = "N"
		}
		suffix := search1(reMBSuffix, text)
		if suffix == "" {
			suffix = "A"
		}
		return vintage + suffix
	}},
	{name: "memory", sources: []Command{CmdSystem}, derive: deriveMemory},
	{name: "mm_v1", sources: []Command{CmdMGList}, derive: mmField("v1")},
	{name: "mm_v2", sources: []Command{CmdMGList}, derive: mmField("v2")},
	{name: "mm_v3", sources: []Command{CmdMGList}, derive: mmField("v3")},
	{name: "mm_v4", sources: []Command{CmdMGList}, derive: mmField("v4")},
	{name: "mm_v5", sources: []Command{CmdMGList}, derive: mmField("v5")},
	{name: "mm_v6", sources: []Command{CmdMGList}, derive: mmField("v6")},
	{name: "mm_v7", sources: []Command{CmdMGList}, derive: mmField("v7")},
	{name: "mm_v8", sources: []Command{CmdMGList}, derive: mmField("v8")},
	{name: "mm_v10", sources: []Command{CmdMGList}, derive: func(g *Gateway) string {
		return mainboardDisplay(g.mediaModules())
	}},
	{name: "model", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		return search1(reModel, g.store.Get(CmdSystem))
	}},
	{name: "port1", sources: []Command{CmdPort}, selfGuard: true, derive: portField(0, func(r PortRecord) string { return r.Port })},
	{name: "port1_status", sources: []Command{CmdPort}, selfGuard: true, derive: portField(0, func(r PortRecord) string { return r.Status })},
	{name: "port1_neg", sources: []Command{CmdPort}, selfGuard: true, derive: portField(0, func(r PortRecord) string { return r.Neg })},
	{name: "port1_duplex", sources: []Command{CmdPort}, selfGuard: true, derive: portField(0, func(r PortRecord) string { return r.Duplex })},
	{name: "port1_speed", sources: []Command{CmdPort}, selfGuard: true, derive: portField(0, func(r PortRecord) string { return r.Speed })},
	{name: "port2", sources: []Command{CmdPort}, selfGuard: true, derive: portField(1, func(r PortRecord) string { return r.Port })},
	{name: "port2_status", sources: []Command{CmdPort}, selfGuard: true, derive: portField(1, func(r PortRecord) string { return r.Status })},
	{name: "port2_neg", sources: []Command{CmdPort}, selfGuard: true, derive: portField(1, func(r PortRecord) string { return r.Neg })},
	{name: "port2_duplex", sources: []Command{CmdPort}, selfGuard: true, derive: portField(1, func(r PortRecord) string { return r.Duplex })},
	{name: "port2_speed", sources: []Command{CmdPort}, selfGuard: true, derive: portField(1, func(r PortRecord) string { return r.Speed })},
	{name: "port_redu", sources: []Command{CmdRunningConfig}, derive: func(g *Gateway) string {
		m := rePortRedu.FindStringSubmatch(g.store.Get(CmdRunningConfig))
		if m == nil {
			return ""
		}
		return m[1] + "/" + m[2]
	}},
	{name: "psu1", sources: []Command{CmdSystem}, derive: derivePSU1},
	{name: "psu2", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		v := search1(rePSU2, g.store.Get(CmdSystem))
		if !strings.Contains(v, "W") {
			return ""
		}
		return v
	}},
	{name: "ram_util", sources: []Command{CmdUtilization}, derive: func(g *Gateway) string {
		if v := search1(reRAMUtil, g.store.Get(CmdUtilization)); v != "" {
			return v + "%"
		}
		return ""
	}},
	{name: "rtp_stat_service", sources: []Command{CmdRunningConfig}, derive: func(g *Gateway) string {
		if strings.Contains(g.store.Get(CmdRunningConfig), "rtp-stat-service") {
			return "enabled"
		}
		return "disabled"
	}},
	{name: "serial", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		return search1(reSerial, g.store.Get(CmdSystem))
	}},
	{name: "slamon_service", sources: []Command{CmdSLAMonitor}, derive: func(g *Gateway) string {
		return strings.ToLower(search1(reSLAMonitor, g.store.Get(CmdSLAMonitor)))
	}},
	{name: "sla_server", sources: []Command{CmdSLAMonitor}, derive: func(g *Gateway) string {
		return search1(reSLAServer, g.store.Get(CmdSLAMonitor))
	}},
	{name: "snmp", sources: []Command{CmdRunningConfig}, derive: func(g *Gateway) string {
		text := g.store.Get(CmdRunningConfig)
		var versions []string
		if strings.Contains(text, "snmp-server community read-only") {
			versions = append(versions, "2")
		}
		if strings.Contains(text, "encrypted-snmp-server user") {
			versions = append(versions, "3")
		}
		if len(versions) == 0 {
			return ""
		}
		return "v" + strings.Join(versions, "&")
	}},
	{name: "snmp_trap", sources: []Command{CmdRunningConfig}, derive: func(g *Gateway) string {
		if reSNMPTrap.MatchString(g.store.Get(CmdRunningConfig)) {
			return "enabled"
		}
		return "disabled"
	}},
	{name: "temp", sources: []Command{CmdTemp}, derive: func(g *Gateway) string {
		m := reTemp.FindStringSubmatch(g.store.Get(CmdTemp))
		if m == nil {
			return ""
		}
		return m[1] + "/" + m[2]
	}},
	{name: "total_sessions", sources: []Command{CmdRTPStatSummary}, derive: func(g *Gateway) string {
		return search1(reTotalSessions, g.store.Get(CmdRTPStatSummary))
	}},
	{name: "upload_status", sources: []Command{CmdUploadStatus}, selfGuard: true, derive: deriveUploadStatus},
	{name: "uptime", sources: []Command{CmdSystem}, derive: func(g *Gateway) string {
		v := search1(reUptime, g.store.Get(CmdSystem))
		if v == "" {
			return ""
		}
		v = strings.ReplaceAll(v, ",", "d")
		v = strings.Replace(v, ":", "h", 1)
		v = strings.ReplaceAll(v, ":", "m")
		return v + "s"
	}},
}

// fieldIndex is built in init rather than a package-level initializer:
// several derive funcs reach back through (*Gateway).Field, so a static
// initializer would form an initialization cycle with fieldSpecs.
var fieldIndex map[string]*fieldSpec

func init() {
	fieldIndex = make(map[string]*fieldSpec, len(fieldSpecs))
	for i := range fieldSpecs {
		fieldIndex[fieldSpecs[i].name] = &fieldSpecs[i]
	}
}

// FieldNames lists every derived field in definition order.
func FieldNames() []string {
	names := make([]string, len(fieldSpecs))
	for i, s := range fieldSpecs {
		names[i] = s.name
	}
	return names
}

func deriveCaptureService(g *Gateway) string {
	text := g.store.Get(CmdCapture)
	state := search1(reCaptureAdmin, text)
	size := search1(reCaptureBuffer, text)
	return fmt.Sprintf("%s (%5s)", state, size)
}

func deriveCaptureStatus(g *Gateway) string {
	text := g.store.Get(CmdCapture)
	if text == "" || strings.Contains(text, "try again") {
		return valueNA
	}

	if strings.Contains(g.Field("capture_service"), "disabled") {
		return "inactive"
	}

	status := search1(reCaptureRun, text)

	occ := ""
	if v := search1(reCaptureOcc, text); v != "" {
		occ = fmt.Sprintf("(%2s%%)", v)
	}

	if strings.Contains(text, "Actual capture stopped") || strings.Contains(text, "and inactive") {
		if occ != "" {
			return "stopped " + occ
		}
		return "stopped"
	}

	if strings.Contains(text, "enabled and active") {
		if occ != "" {
			return "running " + occ
		}
		return "running"
	}

	return status
}

// deriveMemory is model dependent: the G430 family reports a single raw
// RAM token while other models report per-bank "Memory #n" values that
// are summed in megabytes.
func deriveMemory(g *Gateway) string {
	text := g.store.Get(CmdSystem)

	if strings.HasPrefix(strings.ToLower(g.Field("model")), "g430") {
		return search1(reRAMMemory, text)
	}

	ms := reMemoryBank.FindAllStringSubmatch(text, -1)
	if len(ms) == 0 {
		return ""
	}
	total := 0
	for _, m := range ms {
		total += toMByte(m[1])
	}
	return fmt.Sprintf("%dMB", total)
}

func derivePSU1(g *Gateway) string {
	text := g.store.Get(CmdSystem)

	if strings.HasPrefix(strings.ToLower(g.Field("model")), "g430") {
		return search1(reMainPSU, text)
	}

	v := search1(rePSU1, text)
	if !strings.Contains(v, "W") {
		return ""
	}
	return v
}

func deriveUploadStatus(g *Gateway) string {
	text := g.store.Get(CmdUploadStatus)
	if text == "" {
		return ""
	}

	status := strings.ToLower(search1(reUploadState, text))
	failure := strings.ToLower(search1(reUploadFailure, text))

	if status == uploadExecuting {
		return status
	}
	if failure != "" && failure != "(null)" {
		return "failed"
	}
	return status
}

func mmField(slot string) func(g *Gateway) string {
	return func(g *Gateway) string {
		return slotDisplay(g.mediaModules(), slot)
	}
}

func portField(idx int, pick func(PortRecord) string) func(g *Gateway) string {
	return func(g *Gateway) string {
		rec, ok := g.portRecord(idx)
		if !ok {
			return valueNA
		}
		return pick(rec)
	}
}
