package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sszokoly/bgwmon/internal/bgw"
	"github.com/sszokoly/bgwmon/internal/log"
	"github.com/sszokoly/bgwmon/internal/model"
	"github.com/sszokoly/bgwmon/internal/registry"
)

// discoveryCommands is the full command sweep issued on the first poll of
// a gateway, covering the slow-changing inventory outputs.
var discoveryCommands = []string{
	"show running-config",
	"show system",
	"show faults",
	"show capture",
	"show voip-dsp",
	"show temp",
	"show port",
	"show sla-monitor",
	"show announcements files",
	"show lldp config",
	"show mg list",
	"show rtp-stat thresholds",
	"show rtp-stat summary",
	"show utilization",
}

// queryCommands is the lightweight per-cycle set for already discovered
// gateways.
var queryCommands = []string{
	"show voip-dsp",
	"show rtp-stat summary",
	"show utilization",
	"show capture",
	"show faults",
}

// CommandRunner executes CLI commands against one gateway and returns the
// raw output keyed by command string.
type CommandRunner interface {
	Run(ctx context.Context, lanIP string, commands []string) (map[string]string, error)
}

// SnapshotStorage is the subset of storage the scheduler persists to.
type SnapshotStorage interface {
	SaveSnapshot(snap *model.Snapshot) error
}

// Scheduler drives the recurring poll cycle: every interval it fans the
// registered gateways out to the worker pool, runs the appropriate
// command set through the runner, applies the outputs and persists a
// snapshot.
type Scheduler struct {
	mu       sync.Mutex
	registry *registry.Registry
	store    SnapshotStorage
	runner   CommandRunner
	pool     *WorkerPool
	cron     *cron.Cron
	interval int
	running  bool
}

// NewScheduler creates a scheduler polling every intervalSecs seconds
// with maxWorkers concurrent gateway polls.
func NewScheduler(reg *registry.Registry, store SnapshotStorage, runner CommandRunner, intervalSecs, maxWorkers int) *Scheduler {
	return &Scheduler{
		registry: reg,
		store:    store,
		runner:   runner,
		pool:     NewWorkerPool(maxWorkers),
		cron:     cron.New(),
		interval: intervalSecs,
	}
}

// Start begins the poll cycle.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.pool.Start()
	spec := fmt.Sprintf("@every %ds", s.interval)
	if _, err := s.cron.AddFunc(spec, s.pollAll); err != nil {
		s.pool.Stop()
		return fmt.Errorf("scheduling poll cycle: %w", err)
	}
	s.cron.Start()
	s.running = true

	log.Info("Poll scheduler started", "interval_secs", s.interval)
	return nil
}

// Stop halts the cycle and waits for in-flight polls to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Info("Stopping poll scheduler")
	<-s.cron.Stop().Done()
	s.pool.Stop()
}

// pollAll submits one poll job per registered gateway. The pool rejects
// gateways whose previous cycle has not finished.
func (s *Scheduler) pollAll() {
	for _, g := range s.registry.List() {
		gw := g
		err := s.pool.Submit(Job{
			Gateway: gw.LANIP,
			Handler: func(ctx context.Context) error {
				return s.Poll(ctx, gw)
			},
		})
		switch {
		case errors.Is(err, ErrGatewayBusy):
			log.Debug("Skipping gateway, poll still in flight", "gateway", gw.LANIP)
		case err != nil:
			log.Warn("Failed to submit poll job", "gateway", gw.LANIP, "error", err)
		}
	}
}

// Poll runs one cycle for one gateway: command selection, execution,
// update and snapshot persistence.
func (s *Scheduler) Poll(ctx context.Context, g *bgw.Gateway) error {
	commands := s.commandsFor(g)

	outputs, err := s.runner.Run(ctx, g.LANIP, commands)
	if err != nil {
		log.Warn("Poll failed", "gateway", g.LANIP, "error", err)
		return err
	}

	batch := bgw.Batch{
		LastSeen: time.Now().Format(bgw.TimestampLayout),
		Commands: outputs,
	}
	if err := g.Update(batch); err != nil {
		log.Error("Update failed", "gateway", g.LANIP, "error", err)
		return err
	}

	snap := &model.Snapshot{LANIP: g.LANIP, Fields: g.Snapshot()}
	if err := s.store.SaveSnapshot(snap); err != nil {
		log.Error("Failed to persist snapshot", "gateway", g.LANIP, "error", err)
		return err
	}

	log.Debug("Poll completed", "gateway", g.LANIP, "commands", len(commands))
	return nil
}

// commandsFor picks the command set for this cycle: the full discovery
// sweep on the first poll, the lightweight query set afterwards, plus any
// follow-up requests the gateway queued (deduplicated).
func (s *Scheduler) commandsFor(g *bgw.Gateway) []string {
	var commands []string
	if g.Polls == 0 {
		commands = append(commands, discoveryCommands...)
	} else {
		commands = append(commands, queryCommands...)
	}

	seen := make(map[string]bool, len(commands))
	for _, c := range commands {
		seen[c] = true
	}
	for _, c := range g.DrainRequests() {
		if !seen[c] {
			seen[c] = true
			commands = append(commands, c)
		}
	}
	return commands
}
