package storage

import (
	"errors"

	"github.com/sszokoly/bgwmon/internal/model"
)

var (
	ErrGatewayNotFound = errors.New("gateway not found")
	ErrInvalidIP       = errors.New("invalid gateway IP")
)

// Storage defines the persistence interface for gateways and their
// telemetry snapshots.
type Storage interface {
	ListGateways() ([]model.GatewayRecord, error)
	GetGateway(lanIP string) (*model.GatewayRecord, error)
	SaveGateway(gw *model.GatewayRecord) error
	DeleteGateway(lanIP string) error

	SaveSnapshot(snap *model.Snapshot) error
	ListSnapshots(lanIP string, limit int) ([]model.Snapshot, error)

	Close() error
}
