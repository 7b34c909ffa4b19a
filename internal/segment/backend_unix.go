//go:build unix

package segment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"
)

// openNamedFile implements BackendPOSIX and BackendFile: both are plain
// open+ftruncate+mmap against a path, differing only in how the path is
// resolved (see posixPath/filePath in segment.go). Grounded on the
// teacher's internal/shm/platform_linux.go and plugin/queue.go
// (createQueueManager), and on the retrieval pack's
// OcupointInc-QC_Software__shm_ring.go.
func openNamedFile(opts Options, path string) (*Region, error) {
	flags := unix.O_RDWR
	if opts.Create {
		flags |= unix.O_CREAT
	}

	fd, err := unix.Open(path, flags, 0600)
	if err != nil {
		if err == unix.EACCES || err == unix.EPERM {
			return nil, newErr("PERMISSION_DENIED", err)
		}
		return nil, newErr("CREATION_FAILED", fmt.Errorf("open %s: %w", path, err))
	}

	size := opts.Size
	if opts.Create {
		if !canFitOnVolume(uint64(size), path) {
			_ = unix.Close(fd)
			_ = unix.Unlink(path)
			return nil, newErr("CREATION_FAILED", fmt.Errorf("insufficient free space for %s (%d bytes) on %s", path, size, filepath.Dir(path)))
		}
		if err := unix.Ftruncate(fd, int64(size)); err != nil {
			_ = unix.Close(fd)
			_ = unix.Unlink(path)
			return nil, newErr("CREATION_FAILED", fmt.Errorf("ftruncate: %w", err))
		}
	} else {
		var st unix.Stat_t
		if err := unix.Fstat(fd, &st); err != nil {
			_ = unix.Close(fd)
			return nil, newErr("CREATION_FAILED", fmt.Errorf("fstat: %w", err))
		}
		size = int(st.Size)
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		if opts.Create {
			_ = unix.Unlink(path)
		}
		return nil, newErr("CREATION_FAILED", fmt.Errorf("mmap: %w", err))
	}

	r := &Region{
		backend: opts.Backend,
		name:    opts.Name,
		creator: opts.Create,
		bytes:   data,
	}
	r.closer = func() error {
		var firstErr error
		if err := unix.Munmap(data); err != nil {
			firstErr = fmt.Errorf("munmap: %w", err)
		}
		if err := unix.Close(fd); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close: %w", err)
		}
		if r.creator {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
				firstErr = fmt.Errorf("unlink: %w", err)
			}
		}
		return firstErr
	}
	return r, nil
}

// canFitOnVolume reports whether the filesystem backing path has at least
// size bytes free. tmpfs-backed paths (/dev/shm and friends) report usage
// against RAM, so this also catches an oversized segment request before it
// silently evicts unrelated pages.
func canFitOnVolume(size uint64, path string) bool {
	usage, err := disk.Usage(filepath.Dir(path))
	if err != nil {
		return true
	}
	return usage.Free >= size
}

func mlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

func munlock(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}
