package sectordoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const lockSuffix = ".lock"

// lockPath returns the advisory lock file guarding a sector's document.
func (s *Store) lockPath(sectorID uint) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d%s", filePrefix, sectorID, lockSuffix))
}

// lockFile takes an exclusive flock on the sector's lock file, blocking until
// other processes sharing the directory release it.
func (s *Store) lockFile(sectorID uint) (func(), error) {
	f, err := os.OpenFile(s.lockPath(sectorID), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	fd := int(f.Fd())
	for {
		err = unix.Flock(fd, unix.LOCK_EX)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("flock %s: %w", f.Name(), err)
	}
	return func() {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
