package main

import (
	"fmt"

	"ferrodb/internal/server"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve DB_DIRECTORY",
	Short: "Open (or create) a database directory and start a SQL REPL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blockSize, _ := cmd.Flags().GetInt("block-size")
		bufferCapacity, _ := cmd.Flags().GetInt("buffer-capacity")
		logLevel, _ := cmd.Flags().GetString("log-level")

		cfg := server.DefaultConfig(args[0])
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
		if bufferCapacity > 0 {
			cfg.BufferCapacity = bufferCapacity
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		db, err := server.New(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		sessionID := uuid.New().String()
		log := db.Log().With().Str("session", sessionID).Logger()

		repl := newREPL(db, sessionID, log)
		return repl.run()
	},
}

func init() {
	serveCmd.Flags().Int("block-size", 0, "block size in bytes (default 400)")
	serveCmd.Flags().Int("buffer-capacity", 0, "buffer pool frames (default 8)")
	serveCmd.Flags().String("log-level", "", "log level: debug, info, warn, error (default info)")
}
