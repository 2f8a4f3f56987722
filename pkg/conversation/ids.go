package conversation

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// IDGenerator hands out message identifiers that are unique for the lifetime of a session.
type IDGenerator interface {
	NextID() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}

// CounterGenerator yields msg-1, msg-2, ... It never produces the bare numeric IDs of the seed.
type CounterGenerator struct {
	n atomic.Uint64
}

func NewCounterGenerator() *CounterGenerator {
	return &CounterGenerator{}
}

func (c *CounterGenerator) NextID() string {
	return fmt.Sprintf("msg-%d", c.n.Add(1))
}

const (
	IDStrategyUUID    = "uuid"
	IDStrategyCounter = "counter"
)

// NewIDGenerator maps an id strategy name to a generator.
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strategy {
	case "", IDStrategyUUID:
		return UUIDGenerator{}, nil
	case IDStrategyCounter:
		return NewCounterGenerator(), nil
	default:
		return nil, errors.Errorf("unknown id strategy %q", strategy)
	}
}
