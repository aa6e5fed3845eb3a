package tx

import (
	"ferrodb/internal/file"
	"ferrodb/internal/walog"
)

// startRecord marks the beginning of a transaction. It carries no undo
// information: rollback stops as soon as it sees one.
type startRecord struct {
	txnum int
}

func newStartRecord(p *file.Page) *startRecord {
	return &startRecord{txnum: int(p.GetInt(4))}
}

func (r *startRecord) op() recordType       { return startRec }
func (r *startRecord) txNumber() int        { return r.txnum }
func (r *startRecord) undo(*Transaction) error { return nil }

func writeStartRecord(lm *walog.Manager, txnum int) (int, error) {
	rec := make([]byte, 8)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(startRec))
	p.SetInt(4, int32(txnum))
	return lm.Append(rec)
}

// commitRecord marks a transaction's durable completion.
type commitRecord struct {
	txnum int
}

func newCommitRecord(p *file.Page) *commitRecord {
	return &commitRecord{txnum: int(p.GetInt(4))}
}

func (r *commitRecord) op() recordType       { return commitRec }
func (r *commitRecord) txNumber() int        { return r.txnum }
func (r *commitRecord) undo(*Transaction) error { return nil }

func writeCommitRecord(lm *walog.Manager, txnum int) (int, error) {
	rec := make([]byte, 8)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(commitRec))
	p.SetInt(4, int32(txnum))
	return lm.Append(rec)
}

// rollbackRecord marks a transaction's completed rollback.
type rollbackRecord struct {
	txnum int
}

func newRollbackRecord(p *file.Page) *rollbackRecord {
	return &rollbackRecord{txnum: int(p.GetInt(4))}
}

func (r *rollbackRecord) op() recordType       { return rollbackRec }
func (r *rollbackRecord) txNumber() int        { return r.txnum }
func (r *rollbackRecord) undo(*Transaction) error { return nil }

func writeRollbackRecord(lm *walog.Manager, txnum int) (int, error) {
	rec := make([]byte, 8)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(rollbackRec))
	p.SetInt(4, int32(txnum))
	return lm.Append(rec)
}

// checkpointRecord marks a point before which every transaction had
// already committed or rolled back; recovery need not scan past it.
type checkpointRecord struct{}

func newCheckpointRecord() *checkpointRecord { return &checkpointRecord{} }

func (r *checkpointRecord) op() recordType       { return checkpointRec }
func (r *checkpointRecord) txNumber() int        { return -1 }
func (r *checkpointRecord) undo(*Transaction) error { return nil }

func writeCheckpointRecord(lm *walog.Manager) (int, error) {
	rec := make([]byte, 4)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(checkpointRec))
	return lm.Append(rec)
}

// setIntRecord records the value an int field held before it was
// overwritten, so rollback/recovery can restore it.
type setIntRecord struct {
	txnum  int
	block  file.BlockID
	offset int
	oldval int32
}

func newSetIntRecord(p *file.Page) *setIntRecord {
	txnum := p.GetInt(4)
	fpos := 8
	filename := p.GetString(fpos)
	bpos := fpos + file.MaxLength(len(filename))
	blocknum := p.GetInt(bpos)
	opos := bpos + 4
	offset := p.GetInt(opos)
	vpos := opos + 4
	val := p.GetInt(vpos)

	return &setIntRecord{
		txnum:  int(txnum),
		block:  file.NewBlockID(filename, int(blocknum)),
		offset: int(offset),
		oldval: val,
	}
}

func (r *setIntRecord) op() recordType { return setIntRec }
func (r *setIntRecord) txNumber() int  { return r.txnum }

func (r *setIntRecord) undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.SetInt(r.block, r.offset, int(r.oldval), false)
}

func writeSetIntRecord(lm *walog.Manager, txnum int, blk file.BlockID, offset int, oldval int32) (int, error) {
	fpos := 8
	bpos := fpos + file.MaxLength(len(blk.Filename))
	opos := bpos + 4
	vpos := opos + 4

	rec := make([]byte, vpos+4)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(setIntRec))
	p.SetInt(4, int32(txnum))
	p.SetString(fpos, blk.Filename)
	p.SetInt(bpos, int32(blk.Number))
	p.SetInt(opos, int32(offset))
	p.SetInt(vpos, oldval)

	return lm.Append(rec)
}

// setStringRecord records the value a string field held before it was
// overwritten.
type setStringRecord struct {
	txnum  int
	block  file.BlockID
	offset int
	oldval string
}

func newSetStringRecord(p *file.Page) *setStringRecord {
	txnum := p.GetInt(4)
	fpos := 8
	filename := p.GetString(fpos)
	bpos := fpos + file.MaxLength(len(filename))
	blocknum := p.GetInt(bpos)
	opos := bpos + 4
	offset := p.GetInt(opos)
	vpos := opos + 4
	val := p.GetString(vpos)

	return &setStringRecord{
		txnum:  int(txnum),
		block:  file.NewBlockID(filename, int(blocknum)),
		offset: int(offset),
		oldval: val,
	}
}

func (r *setStringRecord) op() recordType { return setStringRec }
func (r *setStringRecord) txNumber() int  { return r.txnum }

func (r *setStringRecord) undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.SetString(r.block, r.offset, r.oldval, false)
}

func writeSetStringRecord(lm *walog.Manager, txnum int, blk file.BlockID, offset int, oldval string) (int, error) {
	fpos := 8
	bpos := fpos + file.MaxLength(len(blk.Filename))
	opos := bpos + 4
	vpos := opos + 4

	rec := make([]byte, vpos+file.MaxLength(len(oldval)))
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(setStringRec))
	p.SetInt(4, int32(txnum))
	p.SetString(fpos, blk.Filename)
	p.SetInt(bpos, int32(blk.Number))
	p.SetInt(opos, int32(offset))
	p.SetString(vpos, oldval)

	return lm.Append(rec)
}
