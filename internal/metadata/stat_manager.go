package metadata

import (
	"sync"

	"ferrodb/internal/record"
	"ferrodb/internal/tx"
)

// refreshInterval is the number of getStatInfo calls after which
// StatMgr recomputes every table's statistics from scratch.
const refreshInterval = 100

// StatMgr tracks per-table StatInfo, recomputed periodically rather than
// after every update so that routine planning stays cheap.
type StatMgr struct {
	tblMgr *TableMgr

	mu         sync.Mutex
	tableStats map[string]StatInfo
	numCalls   int
}

// NewStatMgr returns a StatMgr with statistics computed for every
// existing table.
func NewStatMgr(tblMgr *TableMgr, t *tx.Transaction) (*StatMgr, error) {
	sm := &StatMgr{tblMgr: tblMgr}
	if err := sm.refreshStatistics(t); err != nil {
		return nil, err
	}
	return sm, nil
}

// GetStatInfo returns tblName's statistics, computing them on first use
// and periodically refreshing every table's statistics as calls
// accumulate.
func (sm *StatMgr) GetStatInfo(tblName string, layout *record.Layout, t *tx.Transaction) (StatInfo, error) {
	sm.mu.Lock()
	sm.numCalls++
	refresh := sm.numCalls > refreshInterval
	sm.mu.Unlock()

	if refresh {
		if err := sm.refreshStatistics(t); err != nil {
			return StatInfo{}, err
		}
	}

	sm.mu.Lock()
	si, ok := sm.tableStats[tblName]
	sm.mu.Unlock()
	if ok {
		return si, nil
	}

	si, err := calcTableStats(tblName, layout, t)
	if err != nil {
		return StatInfo{}, err
	}
	sm.mu.Lock()
	sm.tableStats[tblName] = si
	sm.mu.Unlock()
	return si, nil
}

func (sm *StatMgr) refreshStatistics(t *tx.Transaction) error {
	stats := make(map[string]StatInfo)

	tcatLayout, err := sm.tblMgr.GetLayout("tblcat", t)
	if err != nil {
		return err
	}
	tcat, err := record.NewTableScan(t, "tblcat", tcatLayout)
	if err != nil {
		return err
	}
	defer tcat.Close()
	for {
		ok, err := tcat.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		tblName, err := tcat.GetString("tblname")
		if err != nil {
			return err
		}
		layout, err := sm.tblMgr.GetLayout(tblName, t)
		if err != nil {
			return err
		}
		si, err := calcTableStats(tblName, layout, t)
		if err != nil {
			return err
		}
		stats[tblName] = si
	}

	sm.mu.Lock()
	sm.tableStats = stats
	sm.numCalls = 0
	sm.mu.Unlock()
	return nil
}

func calcTableStats(tblName string, layout *record.Layout, t *tx.Transaction) (StatInfo, error) {
	numRecs := 0
	numBlocks := 0

	ts, err := record.NewTableScan(t, tblName, layout)
	if err != nil {
		return StatInfo{}, err
	}
	defer ts.Close()
	for {
		ok, err := ts.Next()
		if err != nil {
			return StatInfo{}, err
		}
		if !ok {
			break
		}
		numRecs++
		numBlocks = ts.RID().BlockNumber + 1
	}
	return newStatInfo(numBlocks, numRecs), nil
}
