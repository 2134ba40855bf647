package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// Rand is the source of randomness for win draws and prize picks.
// *rand.Rand from math/rand/v2 satisfies it. Implementations need not be safe
// for concurrent use; each entity owns its own.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewSeed reads a seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// NewRand returns a PCG source seeded from crypto/rand.
func NewRand() (*rand.Rand, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1)), nil
}

// NewSeededRand returns a deterministic source for a game id, so that a fixed
// process seed still gives every game its own stream.
func NewSeededRand(seed int64, gameID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(gameID))
	return rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
}
