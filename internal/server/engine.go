package server

import (
	"fmt"
	"os"
	"time"

	"ferrodb/internal/buffer"
	"ferrodb/internal/file"
	"ferrodb/internal/metadata"
	"ferrodb/internal/plan"
	"ferrodb/internal/tx"
	"ferrodb/internal/walog"

	"github.com/rs/zerolog"
)

// FerroDB is a running database engine: every subsystem wired together
// and ready to start transactions against. It is safe to share a single
// FerroDB across goroutines, each opening its own Transaction.
type FerroDB struct {
	fm  *file.Manager
	lm  *walog.Manager
	bm  *buffer.Manager
	lt  *tx.LockTable
	mdm *metadata.Manager

	Planner *plan.Planner
	log     zerolog.Logger
}

// New opens the database at cfg.DBDirectory, creating it (and its
// catalog) if it does not already exist, or running crash recovery
// first if it does.
func New(cfg Config) (*FerroDB, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("server: invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Str("component", "ferrodb").Logger()

	fm, err := file.NewManager(cfg.DBDirectory, cfg.BlockSize)
	if err != nil {
		return nil, err
	}
	lm, err := walog.NewManager(fm, cfg.LogFileName)
	if err != nil {
		return nil, err
	}
	bm := buffer.NewManager(fm, lm, cfg.BufferCapacity, log)
	lt := tx.NewLockTable()

	db := &FerroDB{fm: fm, lm: lm, bm: bm, lt: lt, log: log}

	bootTx, err := tx.NewTransaction(fm, lm, bm, lt, log)
	if err != nil {
		return nil, err
	}

	isNew := fm.IsNew()
	if !isNew {
		log.Info().Msg("existing database found, running crash recovery")
		if err := bootTx.Recover(); err != nil {
			return nil, fmt.Errorf("server: crash recovery failed: %w", err)
		}
	}

	mdm, err := metadata.NewManager(isNew, bootTx)
	if err != nil {
		return nil, err
	}
	db.mdm = mdm

	if err := bootTx.Commit(); err != nil {
		return nil, fmt.Errorf("server: failed to commit bootstrap transaction: %w", err)
	}

	qp := plan.NewBasicQueryPlanner(mdm)
	up := plan.NewIndexUpdatePlanner(mdm)
	db.Planner = plan.NewPlanner(qp, up)

	log.Info().Str("dir", cfg.DBDirectory).Bool("new", isNew).Msg("database opened")
	return db, nil
}

// NewTx begins a new transaction against the database.
func (db *FerroDB) NewTx() (*tx.Transaction, error) {
	return tx.NewTransaction(db.fm, db.lm, db.bm, db.lt, db.log)
}

// Metadata returns the database's catalog manager.
func (db *FerroDB) Metadata() *metadata.Manager {
	return db.mdm
}

// Log returns the engine's base logger, for callers (such as the REPL)
// that want to derive their own child logger with extra fields.
func (db *FerroDB) Log() zerolog.Logger {
	return db.log
}

// Close releases the database's file handles, including its advisory
// directory lock.
func (db *FerroDB) Close() error {
	return db.fm.Close()
}
