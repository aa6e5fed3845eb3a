package tx

import "ferrodb/internal/file"

// recordType identifies the kind of a log record; it is always the first
// 4 bytes of a record's encoding.
type recordType int32

const (
	checkpointRec recordType = iota
	startRec
	commitRec
	rollbackRec
	setIntRec
	setStringRec
)

// logRecord is one entry in the write-ahead log. Every record knows its own
// transaction (or -1 for a record with no owning transaction, such as a
// checkpoint) and how to undo the change it describes.
type logRecord interface {
	op() recordType
	txNumber() int
	undo(tx *Transaction) error
}

// parseLogRecord decodes the record type prefix of rec and dispatches to
// the matching record's decoder.
func parseLogRecord(rec []byte) logRecord {
	p := file.NewPageFromBytes(rec)
	switch recordType(p.GetInt(0)) {
	case checkpointRec:
		return newCheckpointRecord()
	case startRec:
		return newStartRecord(p)
	case commitRec:
		return newCommitRecord(p)
	case rollbackRec:
		return newRollbackRecord(p)
	case setIntRec:
		return newSetIntRecord(p)
	case setStringRec:
		return newSetStringRecord(p)
	default:
		return nil
	}
}
