// Package segment implements C1, the segment backend (spec §4.1): obtaining
// a named, sized, shared byte range from one of four interchangeable
// backends, mapping it read/write, and optionally pinning it in RAM.
//
// Per spec §9 Design Notes ("Polymorphism over backends"), the four backends
// are a tagged variant dispatched from CreateOrOpen rather than an interface
// hierarchy; callers only ever see *Region.
package segment

import (
	"fmt"

	"github.com/ultraframe/shmring/internal/diag"
)

// Backend selects which of the four interchangeable segment backends to use.
type Backend int

const (
	// BackendPOSIX is a process-wide named segment (spec §4.1 "kind A"),
	// namespaced under a platform-specific marker.
	BackendPOSIX Backend = iota
	// BackendSysV is a kernel-keyed segment (spec §4.1 "kind B"), identified
	// by a token derived from a filesystem path.
	BackendSysV
	// BackendFile is a memory-mapped file (spec §4.1 "kind C"), backed by a
	// file on a RAM-backed filesystem by default.
	BackendFile
	// BackendHugePage is BackendPOSIX with a request for large pages (spec
	// §4.1 "kind D"); falls back to BackendPOSIX if unavailable.
	BackendHugePage
)

func (b Backend) String() string {
	switch b {
	case BackendPOSIX:
		return "posix"
	case BackendSysV:
		return "sysv"
	case BackendFile:
		return "file"
	case BackendHugePage:
		return "hugepage"
	default:
		return "unknown"
	}
}

// Options configures CreateOrOpen (spec §4.1 "createOrOpen").
type Options struct {
	Name         string
	Size         int
	Backend      Backend
	Create       bool
	FilePath     string // only consulted for BackendFile
	LockInMemory bool
}

// Error classifies a segment-backend failure by the spec §6 Status taxonomy
// that applies to this layer.
type Error struct {
	Status string // one of ALREADY_EXISTS, CREATION_FAILED, PERMISSION_DENIED, NOT_SUPPORTED, INVALID_SIZE, INTERNAL_ERROR
	Err    error
}

func (e *Error) Error() string { return fmt.Sprintf("segment: %s: %v", e.Status, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

func newErr(status string, err error) *Error { return &Error{Status: status, Err: err} }

// MinSize is not enforced by this package: CreateOrOpen only rejects a
// non-positive size. The real floor (control block, metadata region, and
// one minimally-sized slot) depends on the metadata size and is checked by
// ring.Compute.
const MinSize = 0

// Region is a mapped, shared byte range with backend-specific teardown.
type Region struct {
	backend Backend
	name    string
	creator bool
	bytes   []byte
	closer  func() error
}

// Bytes returns the mapped region. Valid until Close.
func (r *Region) Bytes() []byte { return r.bytes }

// Backend reports which backend produced this region.
func (r *Region) Backend() Backend { return r.backend }

// CreateOrOpen obtains and maps a named segment per spec §4.1.
func CreateOrOpen(opts Options) (*Region, error) {
	if opts.Size <= 0 {
		return nil, newErr("INVALID_SIZE", fmt.Errorf("size must be positive, got %d", opts.Size))
	}
	switch opts.Backend {
	case BackendPOSIX:
		return openNamedFile(opts, posixPath(opts.Name))
	case BackendFile:
		return openNamedFile(opts, filePath(opts))
	case BackendSysV:
		return openSysV(opts)
	case BackendHugePage:
		r, err := openHugePage(opts)
		if err == nil {
			return r, nil
		}
		diag.Record(diag.Event{
			Kind:    diag.KindSoftCapability,
			Segment: opts.Name,
			Detail:  fmt.Sprintf("huge-page mapping failed, falling back to posix: %v", err),
		})
		return openNamedFile(opts, posixPath(opts.Name))
	default:
		return nil, newErr("NOT_SUPPORTED", fmt.Errorf("unknown backend %v", opts.Backend))
	}
}

func posixPath(name string) string {
	return "/dev/shm/shmring." + name
}

func filePath(opts Options) string {
	if opts.FilePath != "" {
		return opts.FilePath
	}
	return "/dev/shm/" + opts.Name
}

// Close unmaps the region and, for the creator, removes the backend
// identifier from the host namespace (spec §4.1 "Destructor").
func (r *Region) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// Lock requests the kernel pin the mapping to physical memory. Failure is
// soft: it is logged via the diagnostic sink and not returned as an error,
// per spec §4.1 ("soft failure allowed") and §5 ("soft capability; failures
// are logged and non-fatal").
func (r *Region) Lock() {
	if err := mlock(r.bytes); err != nil {
		diag.Record(diag.Event{
			Kind:    diag.KindSoftCapability,
			Segment: r.name,
			Detail:  fmt.Sprintf("mlock failed: %v", err),
		})
	}
}

// Unlock releases a prior Lock. Also soft-fail.
func (r *Region) Unlock() {
	if err := munlock(r.bytes); err != nil {
		diag.Record(diag.Event{
			Kind:    diag.KindSoftCapability,
			Segment: r.name,
			Detail:  fmt.Sprintf("munlock failed: %v", err),
		})
	}
}
