// Package health exposes liveness and readiness checks for a segment
// handle, wired through heptiolabs/healthcheck so a host process can mount
// them next to its other HTTP health endpoints. Grounded on the teacher's
// api/health.go and this package's original HealthCheckHelper, whose
// Heartbeat/LivenessCheck contracts are realized here against the real
// control block instead of TODO stubs.
package health

import (
	"fmt"
	"time"

	"github.com/heptiolabs/healthcheck"

	"github.com/ultraframe/shmring/internal/control"
)

// StaleAfter is how long a segment may go without a producer write before
// readiness reports unhealthy; a live producer writes far more often than
// this even at the lowest realistic frame rate.
const StaleAfter = 5 * time.Second

// Checker exposes the liveness/readiness checks for one segment handle.
type Checker struct {
	name    string
	block   *control.Block
	handler healthcheck.Handler
}

// New builds a Checker and registers its checks with a fresh
// healthcheck.Handler, returned for the caller to mount (e.g.
// http.Handle("/live", checker.Handler())).
func New(name string, block *control.Block) *Checker {
	c := &Checker{name: name, block: block, handler: healthcheck.NewHandler()}
	c.handler.AddLivenessCheck(name+"-active", c.livenessCheck)
	c.handler.AddReadinessCheck(name+"-fresh", c.readinessCheck)
	return c
}

// Handler returns the underlying healthcheck.Handler, which implements
// http.Handler for LiveEndpoint ("/live") and ReadyEndpoint ("/ready").
func (c *Checker) Handler() healthcheck.Handler {
	return c.handler
}

// livenessCheck fails whenever the control block's active flag is false,
// whether the segment was never activated or has been torn down (spec §4.2
// "active flag"); it does not consider staleness.
func (c *Checker) livenessCheck() error {
	if !c.block.Active() {
		return fmt.Errorf("segment %s: not active", c.name)
	}
	return nil
}

// readinessCheck additionally fails when no producer write has landed
// within StaleAfter, signalling to orchestration that this reader
// shouldn't be sent traffic even though the segment itself is still
// mapped and active.
func (c *Checker) readinessCheck() error {
	if !c.block.Active() {
		return fmt.Errorf("segment %s: not active", c.name)
	}
	last := c.block.LastWriteTime()
	if last == 0 {
		return fmt.Errorf("segment %s: no frame written yet", c.name)
	}
	age := time.Since(time.Unix(0, last))
	if age > StaleAfter {
		return fmt.Errorf("segment %s: last write %s ago exceeds %s", c.name, age, StaleAfter)
	}
	return nil
}

// Heartbeat and LivenessCheck retain the teacher's api.Health method
// names, so callers migrating off api.Health need only swap the type.
func (c *Checker) Heartbeat() error {
	return c.livenessCheck()
}

func (c *Checker) LivenessCheck() (bool, error) {
	err := c.livenessCheck()
	return err == nil, err
}
