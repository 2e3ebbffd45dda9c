package alerts

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator mints alert identifiers. Injected into the Evaluator so
// production gets collision-free random IDs while tests get a fixed
// sequence and deterministic output.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the production generator. Safe for concurrent use.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator mints "alert-1", "alert-2", ... using an atomic
// counter. Used in tests and anywhere reproducible IDs matter.
type SequenceGenerator struct {
	counter atomic.Uint64
}

func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("alert-%d", g.counter.Add(1))
}
