package service

import (
	"fmt"
	"sync/atomic"
)

// EnrollmentIDGenerator mints unique enrollment identifiers. Injected into
// EnrollmentService so tests can use deterministic sequences.
type EnrollmentIDGenerator interface {
	Next() string
}

// sequentialIDGenerator produces zero-padded ids under a stable prefix,
// e.g. ENR0001, ENR0002. The counter is process-wide monotonic and ids are
// never reused, even after withdrawal.
type sequentialIDGenerator struct {
	prefix  string
	width   int
	counter uint64
}

// NewSequentialIDGenerator builds the default generator with a 4-digit
// sequence under the given prefix.
func NewSequentialIDGenerator(prefix string) EnrollmentIDGenerator {
	if prefix == "" {
		prefix = "ENR"
	}
	return &sequentialIDGenerator{prefix: prefix, width: 4}
}

func (g *sequentialIDGenerator) Next() string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s%0*d", g.prefix, g.width, n)
}
