//go:build linux

package segment

// defaultHugePageSize assumes the common x86_64/arm64 Linux default of 2MiB
// huge pages. A host configured for 1GiB pages would need a larger rounding
// unit; spec §4.1 only requires rounding "up to a large-page multiple" and
// a correct fallback, not host-specific page-size discovery, so this
// constant is the documented simplification.
const defaultHugePageSize = 2 << 20

func roundUpHugePage(size int) int {
	if size <= 0 {
		return defaultHugePageSize
	}
	rem := size % defaultHugePageSize
	if rem == 0 {
		return size
	}
	return size + (defaultHugePageSize - rem)
}

// openHugePage implements BackendHugePage (spec §4.1 "kind D"): a named
// segment under hugetlbfs's mount point. hugetlbfs files behave like
// ordinary files for open/ftruncate/mmap, so this reuses openNamedFile
// rather than needing MAP_HUGETLB. If /dev/hugepages is not mounted, the
// open fails and the caller (segment.CreateOrOpen) falls back to
// BackendPOSIX.
func openHugePage(opts Options) (*Region, error) {
	o := opts
	o.Size = roundUpHugePage(opts.Size)
	return openNamedFile(o, "/dev/hugepages/shmring."+opts.Name)
}
