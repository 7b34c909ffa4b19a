//go:build !linux

package segment

import "fmt"

// openHugePage is only implemented on Linux, where hugetlbfs is ubiquitous.
// Elsewhere, CreateOrOpen falls back to BackendPOSIX.
func openHugePage(opts Options) (*Region, error) {
	return nil, newErr("NOT_SUPPORTED", fmt.Errorf("hugepage backend not supported on this platform"))
}
