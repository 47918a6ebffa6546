package bgw

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/sszokoly/bgwmon/internal/log"
)

// TimestampLayout is the fixed lexical form of the last-seen timestamp
// supplied by the polling layer.
const TimestampLayout = "2006-01-02,15:04:05"

// uploadExecuting is the upload-status sentinel that triggers a follow-up
// poll request for the same command on the next cycle.
const uploadExecuting = "executing"

// DefaultQueueSize bounds the per-gateway follow-up request queue.
const DefaultQueueSize = 64

var ErrBadTimestamp = errors.New("malformed last-seen timestamp")

// Gateway is the per-device telemetry aggregate: identity and polling
// statistics, the raw command-output store, the derived-field cache, the
// capture/upload lifecycle state and a bounded queue of follow-up command
// requests for the external poller.
//
// A Gateway is not safe for concurrent use; the polling layer serializes
// updates so that at most one Update per device is in flight at a time.
type Gateway struct {
	LANIP       string
	Proto       string
	PollingSecs int
	Name        string
	Number      string

	Polls         int
	PollCount     int
	AvgPollSecs   float64
	LastSeen      string
	LastSessionID string

	ActiveSessionIDs map[string]struct{}

	lastSeenAt  time.Time
	hasLastSeen bool

	store *RawStore
	cache map[string]cacheEntry

	// Cached intermediate parses, keyed by source-blob version.
	mmTable        map[string]SlotRecord
	mmTableVersion uint64
	portRecs       [2]PortRecord
	portRecsOK     [2]bool
	portVersion    uint64
	portParsed     bool

	packetCapture string
	pcapUpload    string

	requests chan string
	dropped  uint64
}

// New returns a Gateway for the given LAN IP. pollingSecs seeds the
// average poll interval on the first observed timestamp.
func New(lanIP, proto string, pollingSecs int) *Gateway {
	return NewWithQueueSize(lanIP, proto, pollingSecs, DefaultQueueSize)
}

// NewWithQueueSize is New with an explicit follow-up queue bound.
// A queueSize below 1 falls back to DefaultQueueSize.
func NewWithQueueSize(lanIP, proto string, pollingSecs, queueSize int) *Gateway {
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}
	return &Gateway{
		LANIP:            lanIP,
		Proto:            proto,
		PollingSecs:      pollingSecs,
		ActiveSessionIDs: make(map[string]struct{}),
		store:            NewRawStore(),
		cache:            make(map[string]cacheEntry),
		requests:         make(chan string, queueSize),
	}
}

// Batch is one poll cycle's worth of input to Update. Nil identity
// pointers mean "leave unchanged"; an empty LastSeen means no timestamp
// was captured this cycle.
type Batch struct {
	Name          *string
	Number        *string
	LastSessionID *string
	LastSeen      string
	Commands      map[string]string
}

// Update is the sole mutation entrypoint. It applies identity fields,
// updates poll statistics from LastSeen, stores every command output
// (invalidating dependent field caches via the store's version counters)
// and drives the capture and upload lifecycle handling.
//
// A malformed LastSeen fails the whole update before any state changes.
// Failures applying a single command are logged and do not abort the
// remaining commands.
func (g *Gateway) Update(b Batch) error {
	var seenAt time.Time
	if b.LastSeen != "" {
		var err error
		seenAt, err = time.Parse(TimestampLayout, b.LastSeen)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrBadTimestamp, b.LastSeen)
		}
	}

	if b.Name != nil {
		g.Name = *b.Name
	}
	if b.Number != nil {
		g.Number = *b.Number
	}
	if b.LastSessionID != nil {
		g.LastSessionID = *b.LastSessionID
	}

	if b.LastSeen != "" {
		g.LastSeen = b.LastSeen
		if g.hasLastSeen {
			delta := seenAt.Sub(g.lastSeenAt).Seconds()
			g.PollCount++
			g.AvgPollSecs = round1(((g.AvgPollSecs * float64(g.PollCount-1)) + delta) / float64(g.PollCount))
		} else {
			g.PollCount = 1
			g.AvgPollSecs = float64(g.PollingSecs)
		}
		g.lastSeenAt = seenAt
		g.hasLastSeen = true
		g.Polls++
	}

	for cmd, text := range b.Commands {
		command, err := Normalize(cmd)
		if err != nil {
			log.Warn("Dropping output for unknown command", "gateway", g.LANIP, "command", cmd)
			continue
		}

		g.store.Set(command, text)

		switch command {
		case CmdCapture:
			g.SetPacketCapture(g.Field("capture_status"))
		case CmdUploadStatus:
			status := g.Field("upload_status")
			g.pcapUpload = status
			if status == uploadExecuting {
				g.enqueueRequest(string(CmdUploadStatus))
			}
		}
	}

	return nil
}

// Field derives one named telemetry field, reusing the cached value while
// the source blob versions are unchanged. Unknown names yield "".
func (g *Gateway) Field(name string) string {
	spec, ok := fieldIndex[name]
	if !ok {
		return ""
	}

	if !spec.selfGuard {
		observed := false
		for _, src := range spec.sources {
			if g.store.Observed(src) {
				observed = true
				break
			}
		}
		if !observed {
			return valueNA
		}
	}

	versions := g.store.versions(spec.sources)
	if e, ok := g.cache[name]; ok && slices.Equal(e.versions, versions) {
		return e.value
	}

	value := spec.derive(g)
	g.cache[name] = cacheEntry{value: value, versions: versions}
	return value
}

// Snapshot returns every derived field plus the stored attributes by
// name, ready for serialization.
func (g *Gateway) Snapshot() map[string]string {
	snap := make(map[string]string, len(fieldSpecs)+16)
	for _, spec := range fieldSpecs {
		snap[spec.name] = g.Field(spec.name)
	}

	snap["lan_ip"] = g.LANIP
	snap["proto"] = g.Proto
	snap["polling_secs"] = strconv.Itoa(g.PollingSecs)
	snap["gw_name"] = g.Name
	snap["gw_number"] = g.Number
	snap["polls"] = strconv.Itoa(g.Polls)
	snap["poll_count"] = strconv.Itoa(g.PollCount)
	snap["avg_poll_secs"] = strconv.FormatFloat(g.AvgPollSecs, 'f', 1, 64)
	snap["last_seen"] = g.LastSeen
	snap["last_seen_time"] = g.LastSeenTime()
	snap["last_session_id"] = g.LastSessionID
	snap["packet_capture"] = g.PacketCapture()
	snap["pcap_upload"] = g.PcapUpload()
	snap["queue_dropped"] = strconv.FormatUint(g.dropped, 10)
	return snap
}

// LastSeenTime returns the clock portion of the last-seen timestamp in
// 24h form, or "" before the first observation.
func (g *Gateway) LastSeenTime() string {
	if !g.hasLastSeen {
		return ""
	}
	return g.lastSeenAt.Format("15:04:05")
}

// RawOutput returns the stored blob for a command, for diagnostics.
func (g *Gateway) RawOutput(cmd Command) string {
	return g.store.Get(cmd)
}

// enqueueRequest appends a follow-up command request. The queue is
// bounded and never blocks an update; a full queue drops the request and
// bumps the dropped counter.
func (g *Gateway) enqueueRequest(cmd string) {
	select {
	case g.requests <- cmd:
	default:
		g.dropped++
		log.Debug("Follow-up request dropped, queue full", "gateway", g.LANIP, "command", cmd)
	}
}

// DrainRequests removes and returns all pending follow-up command
// requests without blocking.
func (g *Gateway) DrainRequests() []string {
	var out []string
	for {
		select {
		case cmd := <-g.requests:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

// DroppedRequests reports how many follow-up requests have been dropped
// because the queue was full.
func (g *Gateway) DroppedRequests() uint64 {
	return g.dropped
}

// mediaModules returns the parsed media-module table, reparsing only when
// the underlying listing has changed.
func (g *Gateway) mediaModules() map[string]SlotRecord {
	v := g.store.Version(CmdMGList)
	if g.mmTable == nil || g.mmTableVersion != v {
		g.mmTable = parseMediaModules(g.store.Get(CmdMGList))
		g.mmTableVersion = v
	}
	return g.mmTable
}

// portRecord returns the parsed port record at idx (0 primary,
// 1 secondary), reparsing only when the port listing has changed.
func (g *Gateway) portRecord(idx int) (PortRecord, bool) {
	if idx < 0 || idx > 1 {
		return PortRecord{}, false
	}
	v := g.store.Version(CmdPort)
	if !g.portParsed || g.portVersion != v {
		for i := 0; i < 2; i++ {
			g.portRecs[i], g.portRecsOK[i] = parsePort(g.store.Get(CmdPort), i)
		}
		g.portVersion = v
		g.portParsed = true
	}
	return g.portRecs[idx], g.portRecsOK[idx]
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
