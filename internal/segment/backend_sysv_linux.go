//go:build linux

package segment

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/sys/unix"
)

// keyFor derives a SysV IPC key from the segment name. Classic ftok(3)
// derives a key from an existing path's device/inode plus a project id;
// since our segment names are caller-chosen strings rather than paths that
// necessarily exist ahead of creation, we deterministically hash the name
// instead. Both producer and attacher compute the same key from the same
// name, which is all spec §4.1 ("kind B... identified by a token derived
// from a filesystem path") requires for interoperability within this
// module.
func keyFor(name string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	k := int(h.Sum32())
	if k <= 0 {
		k = -k + 1
	}
	return k
}

// openSysV implements BackendSysV using golang.org/x/sys/unix's SysV shared
// memory wrappers (shmget/shmat/shmctl), grounded on the pack's general
// pattern of wrapping golang.org/x/sys/unix for IPC primitives (see
// teacher's internal/shm/platform_linux.go for the sibling POSIX path).
func openSysV(opts Options) (*Region, error) {
	key := keyFor(opts.Name)

	flags := 0o600
	if opts.Create {
		flags |= unix.IPC_CREAT | unix.IPC_EXCL
	}

	id, err := unix.SysvShmGet(key, opts.Size, flags)
	if err != nil && opts.Create && err == unix.EEXIST {
		return nil, newErr("ALREADY_EXISTS", fmt.Errorf("sysv segment %q already exists: %w", opts.Name, err))
	}
	if err != nil {
		return nil, newErr("CREATION_FAILED", fmt.Errorf("shmget: %w", err))
	}

	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, newErr("CREATION_FAILED", fmt.Errorf("shmat: %w", err))
	}

	r := &Region{
		backend: opts.Backend,
		name:    opts.Name,
		creator: opts.Create,
		bytes:   data,
	}
	r.closer = func() error {
		var firstErr error
		if err := unix.SysvShmDetach(data); err != nil {
			firstErr = fmt.Errorf("shmdt: %w", err)
		}
		if r.creator {
			if _, err := unix.SysvShmCtl(id, unix.IPC_RMID, nil); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("shmctl IPC_RMID: %w", err)
			}
		}
		return firstErr
	}
	return r, nil
}
