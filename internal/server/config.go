// Package server wires every subsystem (file, walog, buffer, tx,
// metadata, plan) into one running engine, and is the only package that
// constructs them all.
package server

// Config holds the knobs needed to open or create a database.
type Config struct {
	// DBDirectory is the directory the database's files live in. It is
	// created if it does not already exist.
	DBDirectory string

	// BlockSize is the size, in bytes, of every block read or written.
	BlockSize int

	// BufferCapacity is the number of buffer pool frames to allocate.
	BufferCapacity int

	// LogFileName names the write-ahead log file within DBDirectory.
	LogFileName string

	// LogLevel controls the verbosity of the engine's structured logging
	// ("debug", "info", "warn", "error").
	LogLevel string
}

// DefaultConfig returns a Config suitable for a single-user, on-disk
// database at dbDirectory.
func DefaultConfig(dbDirectory string) Config {
	return Config{
		DBDirectory:    dbDirectory,
		BlockSize:      400,
		BufferCapacity: 8,
		LogFileName:    "ferrodb.log",
		LogLevel:       "info",
	}
}
