//go:build unix

package file

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// flockExclusive takes a non-blocking advisory exclusive lock on f, so a
// second process opening the same db_directory fails fast instead of
// silently corrupting pages out from under the first.
func flockExclusive(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return fmt.Errorf("database directory is already locked by another process: %w", err)
	}
	return nil
}
