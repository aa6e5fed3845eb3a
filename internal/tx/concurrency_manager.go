package tx

import "ferrodb/internal/file"

const (
	lockShared    = "S"
	lockExclusive = "X"
)

// ConcurrencyManager tracks the locks one transaction holds and mediates
// its requests through the process-wide LockTable. Each Transaction owns
// its own ConcurrencyManager; the LockTable pointer is shared.
type ConcurrencyManager struct {
	locktable *LockTable
	held      map[file.BlockID]string
}

// NewConcurrencyManager returns a manager that requests locks from lt.
func NewConcurrencyManager(lt *LockTable) *ConcurrencyManager {
	return &ConcurrencyManager{
		locktable: lt,
		held:      make(map[file.BlockID]string),
	}
}

// SLock obtains a shared lock on blk for this transaction, a no-op if the
// transaction already holds a lock (shared or exclusive) on it.
func (cm *ConcurrencyManager) SLock(blk file.BlockID) error {
	if _, ok := cm.held[blk]; ok {
		return nil
	}
	if err := cm.locktable.SLock(blk); err != nil {
		return err
	}
	cm.held[blk] = lockShared
	return nil
}

// XLock obtains an exclusive lock on blk for this transaction. If the
// transaction does not yet hold any lock on blk, it first takes a shared
// lock so the lock table's self-upgrade path can apply.
func (cm *ConcurrencyManager) XLock(blk file.BlockID) error {
	if cm.held[blk] == lockExclusive {
		return nil
	}
	if err := cm.SLock(blk); err != nil {
		return err
	}
	if err := cm.locktable.XLock(blk); err != nil {
		return err
	}
	cm.held[blk] = lockExclusive
	return nil
}

// Release gives up every lock this transaction holds. Called once, at
// commit or rollback.
func (cm *ConcurrencyManager) Release() {
	for blk := range cm.held {
		cm.locktable.Unlock(blk)
	}
	cm.held = make(map[file.BlockID]string)
}
