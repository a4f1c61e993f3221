// Package idgen generates record ids for battles, mail and chat messages
package idgen

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Generator generates unique identifiers
type Generator interface {
	Generate() string
}

// UUIDGenerator issues version 7 UUIDs, so ids of one kind sort by creation
// time. The prefix names the record kind, e.g. "battle_0190b6...".
type UUIDGenerator struct {
	prefix string
}

// NewUUID creates a generator; prefix may be empty
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Generate returns a new id
func (g *UUIDGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// the random source failed
		id = uuid.New()
	}
	return withPrefix(g.prefix, id.String())
}

// SequentialGenerator issues prefix_1, prefix_2, ... for tests
type SequentialGenerator struct {
	prefix string
	n      atomic.Uint64
}

// NewSequential creates a sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate returns the next id
func (g *SequentialGenerator) Generate() string {
	return withPrefix(g.prefix, strconv.FormatUint(g.n.Inc(), 10))
}

func withPrefix(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
