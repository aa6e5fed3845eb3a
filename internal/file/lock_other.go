//go:build !unix

package file

import "os"

// flockExclusive is a no-op on platforms without flock(2); the directory
// lock becomes advisory-only there.
func flockExclusive(f *os.File) error {
	return nil
}
