// Package diag is the diagnostic sink for protocol invariant violations
// (spec §7: "Logged via a diagnostic sink (no formatted I/O on the hot path)").
//
// It is intentionally narrow: unlike a general audit/governance log, it only
// ever records conditions that should not occur under a correct producer and
// a correct reader — slot-address overflow, malformed metadata JSON, a stale
// sequence number that did not resolve after a retry.
package diag

import "github.com/ultraframe/shmring/internal/logx"

// Kind classifies an invariant violation for metrics/filtering.
type Kind string

const (
	KindSlotOverflow    Kind = "slot_overflow"
	KindMalformedJSON   Kind = "malformed_metadata_json"
	KindStaleSequence   Kind = "stale_sequence_number"
	KindSegmentStale    Kind = "segment_stale"
	KindSoftCapability  Kind = "soft_capability_failure"
)

// Event describes one invariant violation.
type Event struct {
	Kind    Kind
	Segment string
	Detail  string
}

// Sink receives diagnostic events. Implementations must not block or panic;
// the default Sink logs and returns.
type Sink interface {
	Record(Event)
}

type logSink struct {
	log *logx.Logger
}

// NewLogSink returns a Sink that logs every event at Warn level.
func NewLogSink() Sink {
	return &logSink{log: logx.New("diag", nil)}
}

func (s *logSink) Record(e Event) {
	s.log.Warnf("%s segment=%s detail=%s", e.Kind, e.Segment, e.Detail)
}

// Default is the package-level sink used when callers don't supply their own.
var Default Sink = NewLogSink()

// Record reports an event to Default. Never called from the hot path.
func Record(e Event) {
	if Default != nil {
		Default.Record(e)
	}
}
