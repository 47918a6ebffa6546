package bgw

import (
	"errors"
	"fmt"
	"strings"
)

// Command identifies one of the gateway CLI commands whose output the
// monitor ingests. The set is closed: output for anything else is rejected
// by Normalize rather than silently stored.
type Command string

const (
	CmdAnnouncementFiles Command = "show announcements files"
	CmdCapture           Command = "show capture"
	CmdFaults            Command = "show faults"
	CmdLLDPConfig        Command = "show lldp config"
	CmdMGList            Command = "show mg list"
	CmdPort              Command = "show port"
	CmdRTPStatSummary    Command = "show rtp-stat summary"
	CmdRTPStatThresholds Command = "show rtp-stat thresholds"
	CmdRunningConfig     Command = "show running-config"
	CmdSLAMonitor        Command = "show sla-monitor"
	CmdSystem            Command = "show system"
	CmdTemp              Command = "show temp"
	CmdUploadStatus      Command = "show upload status 10"
	CmdUtilization       Command = "show utilization"
	CmdVoIPDSP           Command = "show voip-dsp"
)

// Commands lists every known command in a stable order.
var Commands = []Command{
	CmdAnnouncementFiles,
	CmdCapture,
	CmdFaults,
	CmdLLDPConfig,
	CmdMGList,
	CmdPort,
	CmdRTPStatSummary,
	CmdRTPStatThresholds,
	CmdRunningConfig,
	CmdSLAMonitor,
	CmdSystem,
	CmdTemp,
	CmdUploadStatus,
	CmdUtilization,
	CmdVoIPDSP,
}

var ErrUnknownCommand = errors.New("unknown command")

var commandByKey = func() map[string]Command {
	m := make(map[string]Command, len(Commands))
	for _, c := range Commands {
		m[commandKey(string(c))] = c
	}
	return m
}()

// commandKey reduces a command string to its canonical lookup form:
// lower case with spaces and hyphens folded to underscores, so
// "show running-config" and "show running config" resolve identically.
func commandKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), "_")
}

// Normalize resolves a raw command string to its Command identifier.
func Normalize(s string) (Command, error) {
	c, ok := commandByKey[commandKey(s)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
	return c, nil
}
