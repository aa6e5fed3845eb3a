package server

import (
	"errors"

	"ferrodb/internal/buffer"
	"ferrodb/internal/tx"
)

// ErrBufferAbort is re-exported from internal/buffer so callers of this
// package can match on it without importing buffer directly.
var ErrBufferAbort = buffer.ErrBufferAbort

// ErrLockAbort is re-exported from internal/tx so callers of this
// package can match on it without importing tx directly.
var ErrLockAbort = tx.ErrLockAbort

// ErrBufferNotFound names the error of reading or writing a block the
// transaction has not pinned. No code path returns or wraps it: tx reports
// that condition with an error of its own that does not match this value.
var ErrBufferNotFound = errors.New("server: block is not pinned by this transaction")

// ErrFieldNotFound names the error of asking a scan for a field its schema
// does not contain. No code path returns or wraps it.
var ErrFieldNotFound = errors.New("server: field not found")

// ErrSerialization names the error of a statement whose parsed shape cannot
// be executed as given (e.g. a mismatched field/value count on INSERT). No
// code path returns or wraps it.
var ErrSerialization = errors.New("server: statement cannot be executed")
