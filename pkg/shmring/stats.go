package shmring

import "github.com/ultraframe/shmring/internal/stats"

// Statistics is a consistent, point-in-time snapshot of a Segment's
// accumulated statistics (spec §4.5).
type Statistics = stats.Snapshot
