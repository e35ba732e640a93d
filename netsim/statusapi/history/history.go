// Package history persists a per-round ledger of the simulation's
// execute windows to a local SQLite database via gorm, so a finished
// run can be inspected after the process exits. Grounded on
// casperlundberg-colony-process-offloader-algorithm's
// internal/database/database.go and models.go, which use the same
// gorm+sqlite combination for a comparable append-only record of
// scheduling rounds.
package history

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shadowsim/controller/netsim"
)

// Round is one row of the ledger: the window the controller committed
// and the minimum next-event time the manager reported back.
type Round struct {
	gorm.Model
	RunID            string `gorm:"index"`
	WindowStart      uint64
	WindowEnd        uint64
	MinNextEventTime uint64
}

// Store wraps a gorm.DB opened against a SQLite file.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the SQLite database at path and migrates the
// Round schema into it.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Round{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// RecordRound appends one row to the ledger.
func (s *Store) RecordRound(runID string, start, end netsim.SimulationTime, minNext netsim.SimulationTime) error {
	round := Round{
		RunID:            runID,
		WindowStart:      uint64(start),
		WindowEnd:        uint64(end),
		MinNextEventTime: uint64(minNext),
	}
	return s.db.Create(&round).Error
}

// RoundsForRun returns every recorded round for runID in insertion order.
func (s *Store) RoundsForRun(runID string) ([]Round, error) {
	var rounds []Round
	err := s.db.Where("run_id = ?", runID).Order("id asc").Find(&rounds).Error
	return rounds, err
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
