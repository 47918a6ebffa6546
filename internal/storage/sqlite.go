package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sszokoly/bgwmon/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStorage implements Storage with SQLite backend
type SQLiteStorage struct {
	mu            sync.RWMutex
	db            *sql.DB
	path          string
	historyMaxLen int
}

// NewSQLiteStorage creates a new SQLite-based storage. historyMaxLen
// bounds how many snapshots are retained per gateway.
func NewSQLiteStorage(dataDir string, historyMaxLen int) (*SQLiteStorage, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "bgwmon.db")

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ss := &SQLiteStorage{
		db:            db,
		path:          dbPath,
		historyMaxLen: historyMaxLen,
	}

	if err := ss.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return ss, nil
}

// initSchema creates the database schema
func (ss *SQLiteStorage) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	_, err = ss.db.Exec(string(schema))
	return err
}

// Close closes the database connection
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// ListGateways returns every persisted gateway ordered by LAN IP.
func (ss *SQLiteStorage) ListGateways() ([]model.GatewayRecord, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT lan_ip, proto, name, number, polling_secs, created_at, updated_at
		FROM gateways
		ORDER BY lan_ip
	`)
	if err != nil {
		return nil, fmt.Errorf("querying gateways: %w", err)
	}
	defer rows.Close()

	var gateways []model.GatewayRecord
	for rows.Next() {
		var gw model.GatewayRecord
		if err := rows.Scan(&gw.LANIP, &gw.Proto, &gw.Name, &gw.Number,
			&gw.PollingSecs, &gw.CreatedAt, &gw.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning gateway: %w", err)
		}
		gateways = append(gateways, gw)
	}

	return gateways, rows.Err()
}

// GetGateway retrieves a gateway by LAN IP.
func (ss *SQLiteStorage) GetGateway(lanIP string) (*model.GatewayRecord, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var gw model.GatewayRecord
	err := ss.db.QueryRow(`
		SELECT lan_ip, proto, name, number, polling_secs, created_at, updated_at
		FROM gateways
		WHERE lan_ip = ?
		LIMIT 1
	`, lanIP).Scan(&gw.LANIP, &gw.Proto, &gw.Name, &gw.Number,
		&gw.PollingSecs, &gw.CreatedAt, &gw.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrGatewayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying gateway: %w", err)
	}

	return &gw, nil
}

// SaveGateway inserts or updates a gateway record.
func (ss *SQLiteStorage) SaveGateway(gw *model.GatewayRecord) error {
	if gw.LANIP == "" {
		return ErrInvalidIP
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	if gw.CreatedAt.IsZero() {
		gw.CreatedAt = now
	}
	gw.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO gateways (lan_ip, proto, name, number, polling_secs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lan_ip) DO UPDATE SET
			proto = excluded.proto,
			name = excluded.name,
			number = excluded.number,
			polling_secs = excluded.polling_secs,
			updated_at = excluded.updated_at
	`, gw.LANIP, gw.Proto, gw.Name, gw.Number, gw.PollingSecs, gw.CreatedAt, gw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving gateway: %w", err)
	}

	return nil
}

// DeleteGateway removes a gateway and its snapshots.
func (ss *SQLiteStorage) DeleteGateway(lanIP string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	result, err := ss.db.Exec("DELETE FROM gateways WHERE lan_ip = ?", lanIP)
	if err != nil {
		return fmt.Errorf("deleting gateway: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrGatewayNotFound
	}

	return nil
}

// SaveSnapshot inserts one telemetry snapshot and trims the per-gateway
// history to the retention bound.
func (ss *SQLiteStorage) SaveSnapshot(snap *model.Snapshot) error {
	if snap.LANIP == "" {
		return ErrInvalidIP
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if snap.ID == "" {
		snap.ID = generateID()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}

	fields, err := json.Marshal(snap.Fields)
	if err != nil {
		return fmt.Errorf("encoding snapshot fields: %w", err)
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO snapshots (id, lan_ip, taken_at, fields)
		VALUES (?, ?, ?, ?)
	`, snap.ID, snap.LANIP, snap.TakenAt, string(fields))
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	if ss.historyMaxLen > 0 {
		_, err = tx.Exec(`
			DELETE FROM snapshots
			WHERE lan_ip = ? AND id NOT IN (
				SELECT id FROM snapshots
				WHERE lan_ip = ?
				ORDER BY taken_at DESC
				LIMIT ?
			)
		`, snap.LANIP, snap.LANIP, ss.historyMaxLen)
		if err != nil {
			return fmt.Errorf("trimming snapshot history: %w", err)
		}
	}

	return tx.Commit()
}

// ListSnapshots returns the most recent snapshots for a gateway, newest
// first. A non-positive limit returns everything retained.
func (ss *SQLiteStorage) ListSnapshots(lanIP string, limit int) ([]model.Snapshot, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := ss.db.Query(`
		SELECT id, lan_ip, taken_at, fields
		FROM snapshots
		WHERE lan_ip = ?
		ORDER BY taken_at DESC
		LIMIT ?
	`, lanIP, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var fields string
		if err := rows.Scan(&snap.ID, &snap.LANIP, &snap.TakenAt, &fields); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &snap.Fields); err != nil {
			return nil, fmt.Errorf("decoding snapshot fields: %w", err)
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// generateID returns a time-ordered unique snapshot ID.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
