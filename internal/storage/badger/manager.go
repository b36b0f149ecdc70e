// Package badger implements the storage interfaces on BadgerDB via
// badgerhold: report records, scan jobs, per-scan logs, and the key/value
// store all live in one embedded database.
package badger

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	report  interfaces.ReportStorage
	scan    interfaces.ScanStorage
	scanLog interfaces.ScanLogStorage
	kv      interfaces.KeyValueStorage
	logger  arbor.ILogger
}

// NewManager opens the database and wires the typed stores
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:      db,
		report:  NewReportStorage(db, logger),
		scan:    NewScanStorage(db, logger),
		scanLog: NewScanLogStorage(db, logger),
		kv:      NewKVStorage(db, logger),
		logger:  logger,
	}

	manager.seedDefaults(context.Background())

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// ReportStorage returns the report storage interface
func (m *Manager) ReportStorage() interfaces.ReportStorage {
	return m.report
}

// ScanStorage returns the scan-job storage interface
func (m *Manager) ScanStorage() interfaces.ScanStorage {
	return m.scan
}

// ScanLogStorage returns the scan log storage interface
func (m *Manager) ScanLogStorage() interfaces.ScanLogStorage {
	return m.scanLog
}

// KVStorage returns the key/value storage interface
func (m *Manager) KVStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
