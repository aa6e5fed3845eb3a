package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TempFilePrefix names files deleted on startup; scratch tables created by
// future bulk-load or materialization tools should use it.
const TempFilePrefix = "temp"

// Manager maps (file, block number) to byte offsets on persistent storage
// and performs whole-block reads and writes. It caches open file handles and
// serializes access to each cached handle internally, so it is safe to share
// across every Transaction in the process.
type Manager struct {
	dbDirectory string
	blockSize   int
	isNew       bool

	mu        sync.Mutex
	openFiles map[string]*os.File
	lockFile  *os.File
}

// NewManager opens (creating if necessary) the database directory, purges
// any leftover temp-prefixed files, and takes an advisory lock on the
// directory so a second process cannot open it concurrently.
func NewManager(dbDirectory string, blockSize int) (*Manager, error) {
	fm := &Manager{
		dbDirectory: dbDirectory,
		blockSize:   blockSize,
		openFiles:   make(map[string]*os.File),
	}

	info, err := os.Stat(dbDirectory)
	switch {
	case os.IsNotExist(err):
		fm.isNew = true
		if err := os.MkdirAll(dbDirectory, 0o755); err != nil {
			return nil, fmt.Errorf("file: cannot create directory %s: %w", dbDirectory, err)
		}
	case err != nil:
		return nil, fmt.Errorf("file: cannot access directory %s: %w", dbDirectory, err)
	case !info.IsDir():
		return nil, fmt.Errorf("file: %s is not a directory", dbDirectory)
	}

	lockFile, err := os.OpenFile(filepath.Join(dbDirectory, ".lock"), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file: cannot open lock file: %w", err)
	}
	if err := flockExclusive(lockFile); err != nil {
		lockFile.Close()
		return nil, err
	}
	fm.lockFile = lockFile

	if !fm.isNew {
		if err := fm.removeTempFiles(); err != nil {
			return nil, err
		}
	}

	return fm, nil
}

func (fm *Manager) removeTempFiles() error {
	entries, err := os.ReadDir(fm.dbDirectory)
	if err != nil {
		return fmt.Errorf("file: cannot read directory %s: %w", fm.dbDirectory, err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), TempFilePrefix) {
			path := filepath.Join(fm.dbDirectory, entry.Name())
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("file: cannot remove temp file %s: %w", path, err)
			}
		}
	}
	return nil
}

// Read transfers exactly BlockSize bytes from blk into p. Reading a block
// beyond end-of-file is an error; callers must check BlockCount first.
func (fm *Manager) Read(blk BlockID, p *Page) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	f, err := fm.getFile(blk.Filename)
	if err != nil {
		return err
	}

	offset := int64(blk.Number) * int64(fm.blockSize)
	n, err := f.ReadAt(p.contents, offset)
	if err != nil {
		return fmt.Errorf("file: cannot read block %s: %w", blk, err)
	}
	if n != fm.blockSize {
		return fmt.Errorf("file: partial read for block %s: got %d bytes, want %d", blk, n, fm.blockSize)
	}
	return nil
}

// Write transfers exactly BlockSize bytes of p to blk and forces them to
// persistent storage before returning.
func (fm *Manager) Write(blk BlockID, p *Page) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.writeLocked(blk, p)
}

func (fm *Manager) writeLocked(blk BlockID, p *Page) error {
	f, err := fm.getFile(blk.Filename)
	if err != nil {
		return err
	}

	offset := int64(blk.Number) * int64(fm.blockSize)
	n, err := f.WriteAt(p.contents, offset)
	if err != nil {
		return fmt.Errorf("file: cannot write block %s: %w", blk, err)
	}
	if n != fm.blockSize {
		return fmt.Errorf("file: partial write for block %s: wrote %d bytes, want %d", blk, n, fm.blockSize)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("file: cannot sync %s: %w", blk.Filename, err)
	}
	return nil
}

// Append allocates a new zero-filled block at the end of name and returns
// its BlockID.
func (fm *Manager) Append(name string) (BlockID, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	newBlkNum, err := fm.blockCountLocked(name)
	if err != nil {
		return BlockID{}, err
	}
	blk := NewBlockID(name, newBlkNum)
	empty := NewPage(fm.blockSize)
	if err := fm.writeLocked(blk, empty); err != nil {
		return BlockID{}, err
	}
	return blk, nil
}

// BlockCount returns the current number of whole blocks in name.
func (fm *Manager) BlockCount(name string) (int, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.blockCountLocked(name)
}

func (fm *Manager) blockCountLocked(name string) (int, error) {
	f, err := fm.getFile(name)
	if err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("file: cannot stat %s: %w", name, err)
	}
	return int(info.Size()) / fm.blockSize, nil
}

func (fm *Manager) getFile(name string) (*os.File, error) {
	if f, ok := fm.openFiles[name]; ok {
		return f, nil
	}
	path := filepath.Join(fm.dbDirectory, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file: cannot open %s: %w", path, err)
	}
	fm.openFiles[name] = f
	return f, nil
}

// IsNew reports whether the database directory did not exist at open.
func (fm *Manager) IsNew() bool { return fm.isNew }

// BlockSize returns the engine-wide block size.
func (fm *Manager) BlockSize() int { return fm.blockSize }

// Close releases all cached file handles and the directory lock. Intended
// for tests and graceful shutdown; a live transaction set should not call
// this.
func (fm *Manager) Close() error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	var firstErr error
	for name, f := range fm.openFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("file: cannot close %s: %w", name, err)
		}
	}
	fm.openFiles = make(map[string]*os.File)
	if fm.lockFile != nil {
		fm.lockFile.Close()
		fm.lockFile = nil
	}
	return firstErr
}
