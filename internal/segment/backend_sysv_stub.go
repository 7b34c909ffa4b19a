//go:build !linux

package segment

import "fmt"

// openSysV is only implemented on Linux; other platforms report
// NOT_SUPPORTED per spec §6.
func openSysV(opts Options) (*Region, error) {
	return nil, newErr("NOT_SUPPORTED", fmt.Errorf("sysv backend not supported on this platform"))
}
