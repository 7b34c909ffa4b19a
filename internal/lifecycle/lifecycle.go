// Package lifecycle derives a segment's state-machine position (spec
// §4.4 "State machine (segment)": Uninitialized -> Active -> TornDown)
// from its control block, rather than storing it as separate state: the
// control block's active flag and a handle's own closed bit are already
// the authoritative source, so a second stored enum could desync from
// them. Grounded on this package's original StateManager helper, whose
// save/load-state contract is replaced here by a pure derivation.
package lifecycle

// State is a segment's position in the Uninitialized -> Active ->
// TornDown state machine.
type State string

const (
	// Uninitialized means the control block has not yet observed
	// active=true; an attacher waiting past its bound should treat this
	// as terminal (spec §4.4 "return INTERNAL_ERROR").
	Uninitialized State = "UNINITIALIZED"
	// Active means the producer has published active=true and has not
	// torn the segment down.
	Active State = "ACTIVE"
	// TornDown means the creator has dropped the segment (active was
	// explicitly retracted on close, spec §3 "unlinks the backend on
	// orderly shutdown").
	TornDown State = "TORN_DOWN"
)

// ControlBlock is the minimal view lifecycle needs; control.Block
// satisfies it without this package importing control, so Derive can be
// exercised with any fake that implements these two methods.
type ControlBlock interface {
	Active() bool
	TotalFramesWritten() uint64
}

// Derive computes the current State from block. closed is true once the
// local handle has called Close; it disambiguates "active flag was never
// set" (Uninitialized) from "active flag was retracted on shutdown"
// (TornDown) for the same Active()==false observation.
func Derive(block ControlBlock, everObservedActive, closed bool) State {
	switch {
	case closed:
		return TornDown
	case block.Active():
		return Active
	case everObservedActive:
		return TornDown
	default:
		return Uninitialized
	}
}
