package api

import (
	"sort"
	"sync"

	"github.com/sszokoly/bgwmon/internal/model"
	"github.com/sszokoly/bgwmon/internal/storage"
)

// mockStorage is an in-memory Storage implementation for handler tests.
type mockStorage struct {
	mu       sync.Mutex
	gateways map[string]*model.GatewayRecord
	snaps    map[string][]model.Snapshot
}

func modelRecord(lanIP string) *model.GatewayRecord {
	return &model.GatewayRecord{LANIP: lanIP, Proto: "ssh", PollingSecs: 10}
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		gateways: make(map[string]*model.GatewayRecord),
		snaps:    make(map[string][]model.Snapshot),
	}
}

func (m *mockStorage) ListGateways() ([]model.GatewayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.GatewayRecord, 0, len(m.gateways))
	for _, gw := range m.gateways {
		out = append(out, *gw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LANIP < out[j].LANIP })
	return out, nil
}

func (m *mockStorage) GetGateway(lanIP string) (*model.GatewayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gw, ok := m.gateways[lanIP]
	if !ok {
		return nil, storage.ErrGatewayNotFound
	}
	clone := *gw
	return &clone, nil
}

func (m *mockStorage) SaveGateway(gw *model.GatewayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *gw
	m.gateways[gw.LANIP] = &clone
	return nil
}

func (m *mockStorage) DeleteGateway(lanIP string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.gateways[lanIP]; !ok {
		return storage.ErrGatewayNotFound
	}
	delete(m.gateways, lanIP)
	delete(m.snaps, lanIP)
	return nil
}

func (m *mockStorage) SaveSnapshot(snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.LANIP] = append(m.snaps[snap.LANIP], *snap)
	return nil
}

func (m *mockStorage) ListSnapshots(lanIP string, limit int) ([]model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.snaps[lanIP]
	// Newest first, matching the SQLite implementation.
	out := make([]model.Snapshot, 0, len(snaps))
	for i := len(snaps) - 1; i >= 0; i-- {
		out = append(out, snaps[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockStorage) Close() error { return nil }
