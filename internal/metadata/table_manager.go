// Package metadata implements the system catalog: the tables (tblcat,
// fldcat, viewcat, idxcat) that describe every other table's schema,
// views, and indexes, plus the statistics the query planner costs plans
// against.
package metadata

import (
	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// MaxName is the maximum number of characters allowed in a table, field,
// view, or index name.
const MaxName = 16

// TableMgr creates tables and looks up their Layout, backed by the two
// catalog tables every other table (including the catalog itself) is
// described in: tblcat (one row per table) and fldcat (one row per
// field).
type TableMgr struct {
	tblCatLayout *record.Layout
	fldCatLayout *record.Layout
}

// NewTableMgr returns a TableMgr, creating the catalog tables themselves
// when isNew is true.
func NewTableMgr(isNew bool, t *tx.Transaction) (*TableMgr, error) {
	tblCatSchema := record.NewSchema()
	tblCatSchema.AddStringField("tblname", MaxName)
	tblCatSchema.AddIntField("slotsize")
	tm := &TableMgr{tblCatLayout: record.NewLayout(tblCatSchema)}

	fldCatSchema := record.NewSchema()
	fldCatSchema.AddStringField("tblname", MaxName)
	fldCatSchema.AddStringField("fldname", MaxName)
	fldCatSchema.AddIntField("type")
	fldCatSchema.AddIntField("length")
	fldCatSchema.AddIntField("offset")
	tm.fldCatLayout = record.NewLayout(fldCatSchema)

	if isNew {
		if err := tm.CreateTable("tblcat", tblCatSchema, t); err != nil {
			return nil, err
		}
		if err := tm.CreateTable("fldcat", fldCatSchema, t); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// CreateTable records tblName's schema in the catalog and, via the
// TableScan that opens it, creates the table's own (still-empty) file.
func (tm *TableMgr) CreateTable(tblName string, schema *record.Schema, t *tx.Transaction) error {
	layout := record.NewLayout(schema)

	tcat, err := record.NewTableScan(t, "tblcat", tm.tblCatLayout)
	if err != nil {
		return err
	}
	if err := tcat.Insert(); err != nil {
		tcat.Close()
		return err
	}
	if err := tcat.SetString("tblname", tblName); err != nil {
		tcat.Close()
		return err
	}
	if err := tcat.SetInt("slotsize", int32(layout.SlotSize())); err != nil {
		tcat.Close()
		return err
	}
	tcat.Close()

	fcat, err := record.NewTableScan(t, "fldcat", tm.fldCatLayout)
	if err != nil {
		return err
	}
	defer fcat.Close()
	for _, fieldName := range schema.Fields() {
		if err := fcat.Insert(); err != nil {
			return err
		}
		if err := fcat.SetString("tblname", tblName); err != nil {
			return err
		}
		if err := fcat.SetString("fldname", fieldName); err != nil {
			return err
		}
		if err := fcat.SetInt("type", int32(schema.Type(fieldName))); err != nil {
			return err
		}
		if err := fcat.SetInt("length", int32(schema.Length(fieldName))); err != nil {
			return err
		}
		if err := fcat.SetInt("offset", int32(layout.Offset(fieldName))); err != nil {
			return err
		}
	}
	return nil
}

// GetLayout reconstructs tblName's Layout from the catalog.
func (tm *TableMgr) GetLayout(tblName string, t *tx.Transaction) (*record.Layout, error) {
	size := -1

	tcat, err := record.NewTableScan(t, "tblcat", tm.tblCatLayout)
	if err != nil {
		return nil, err
	}
	for {
		ok, err := tcat.Next()
		if err != nil {
			tcat.Close()
			return nil, err
		}
		if !ok {
			break
		}
		name, err := tcat.GetString("tblname")
		if err != nil {
			tcat.Close()
			return nil, err
		}
		if name == tblName {
			slotSize, err := tcat.GetInt("slotsize")
			if err != nil {
				tcat.Close()
				return nil, err
			}
			size = int(slotSize)
			break
		}
	}
	tcat.Close()

	schema := record.NewSchema()
	offsets := make(map[string]int)

	fcat, err := record.NewTableScan(t, "fldcat", tm.fldCatLayout)
	if err != nil {
		return nil, err
	}
	defer fcat.Close()
	for {
		ok, err := fcat.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		name, err := fcat.GetString("tblname")
		if err != nil {
			return nil, err
		}
		if name != tblName {
			continue
		}
		fieldName, err := fcat.GetString("fldname")
		if err != nil {
			return nil, err
		}
		fieldType, err := fcat.GetInt("type")
		if err != nil {
			return nil, err
		}
		length, err := fcat.GetInt("length")
		if err != nil {
			return nil, err
		}
		offset, err := fcat.GetInt("offset")
		if err != nil {
			return nil, err
		}
		offsets[fieldName] = int(offset)
		schema.AddField(fieldName, record.FieldType(fieldType), int(length))
	}
	return record.NewLayoutWithOffsets(schema, offsets, size), nil
}
