//go:build windows

package segment

import "fmt"

// Windows support is not implemented. The original system (original_source/)
// and every retrieval-pack teacher target POSIX shared memory; spec §1 scope
// is a "local trust boundary" transport and names no Windows requirement.
// These stubs exist only so the package compiles on all GOOS, mirroring the
// teacher's internal/shm/platform_windows.go posture of an honest
// NOT_SUPPORTED rather than a silent no-op.
func openNamedFile(opts Options, path string) (*Region, error) {
	return nil, newErr("NOT_SUPPORTED", fmt.Errorf("windows backend not implemented"))
}

func mlock(b []byte) error {
	return fmt.Errorf("mlock not implemented on windows")
}

func munlock(b []byte) error {
	return fmt.Errorf("munlock not implemented on windows")
}
