package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sszokoly/bgwmon/internal/bgw"
	"github.com/sszokoly/bgwmon/internal/model"
	"github.com/sszokoly/bgwmon/internal/registry"
)

func bgwBatchWithTimestamp() bgw.Batch {
	return bgw.Batch{LastSeen: "2025-12-16,13:33:56"}
}

func bgwBatch(commands map[string]string) bgw.Batch {
	return bgw.Batch{Commands: commands}
}

// fakeRunner records the commands it was asked to run and returns canned
// outputs.
type fakeRunner struct {
	mu       sync.Mutex
	commands [][]string
	outputs  map[string]string
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, lanIP string, commands []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, commands)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(commands))
	for _, c := range commands {
		if text, ok := f.outputs[c]; ok {
			out[c] = text
		}
	}
	return out, nil
}

type memStore struct {
	mu    sync.Mutex
	snaps []*model.Snapshot
}

func (m *memStore) SaveSnapshot(snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

func setupScheduler(t *testing.T, runner CommandRunner) (*Scheduler, *registry.Registry, *memStore) {
	t.Helper()

	reg := registry.New(0)
	store := &memStore{}
	return NewScheduler(reg, store, runner, 10, 2), reg, store
}

func TestPollDiscoveryThenQuery(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"show system": "Model : G450",
	}}
	s, reg, store := setupScheduler(t, runner)

	g := reg.GetOrCreate("10.10.48.58", "ssh", 10)

	// First poll runs the full discovery sweep.
	if err := s.Poll(context.Background(), g); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(runner.commands) != 1 || len(runner.commands[0]) != len(discoveryCommands) {
		t.Fatalf("first poll ran %d commands, want %d", len(runner.commands[0]), len(discoveryCommands))
	}
	if got := g.Field("model"); got != "G450" {
		t.Errorf("model = %q, want G450", got)
	}

	// Subsequent polls use the lightweight query set.
	if err := s.Poll(context.Background(), g); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(runner.commands[1]) != len(queryCommands) {
		t.Errorf("second poll ran %d commands, want %d", len(runner.commands[1]), len(queryCommands))
	}

	if len(store.snaps) != 2 {
		t.Fatalf("persisted %d snapshots, want 2", len(store.snaps))
	}
	if store.snaps[0].LANIP != "10.10.48.58" {
		t.Errorf("snapshot LANIP = %q", store.snaps[0].LANIP)
	}
	if store.snaps[0].Fields["model"] != "G450" {
		t.Errorf("snapshot model = %q, want G450", store.snaps[0].Fields["model"])
	}
}

func TestPollIncludesFollowUps(t *testing.T) {
	runner := &fakeRunner{}
	s, reg, _ := setupScheduler(t, runner)

	g := reg.GetOrCreate("10.10.48.58", "ssh", 10)
	// Pretend discovery already happened.
	if err := g.Update(bgwBatchWithTimestamp()); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Queue a follow-up via an executing upload report.
	err := g.Update(bgwBatch(map[string]string{
		"show upload status 10": "Running state : Executing",
	}))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := s.Poll(context.Background(), g); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	got := runner.commands[0]
	found := false
	for _, c := range got {
		if c == "show upload status 10" {
			found = true
		}
	}
	if !found {
		t.Errorf("poll commands %v missing upload status follow-up", got)
	}
	if len(got) != len(queryCommands)+1 {
		t.Errorf("poll ran %d commands, want %d", len(got), len(queryCommands)+1)
	}
}

func TestPollRunnerError(t *testing.T) {
	wantErr := errors.New("connection refused")
	runner := &fakeRunner{err: wantErr}
	s, reg, store := setupScheduler(t, runner)

	g := reg.GetOrCreate("10.10.48.58", "ssh", 10)
	if err := s.Poll(context.Background(), g); !errors.Is(err, wantErr) {
		t.Fatalf("Poll err = %v, want %v", err, wantErr)
	}
	if len(store.snaps) != 0 {
		t.Errorf("snapshot persisted despite runner failure")
	}
	if g.Polls != 0 {
		t.Errorf("Polls = %d, want 0", g.Polls)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	runner := &fakeRunner{}
	s, _, _ := setupScheduler(t, runner)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Idempotent start.
	if err := s.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	s.Stop()
	s.Stop() // and idempotent stop
}
