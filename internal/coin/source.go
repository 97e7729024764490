package coin

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Source produces uniform values in [0, 1). Simulation quality is enough;
// nothing here is meant for cryptographic use.
type Source interface {
	Float64() float64
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func() float64

// Float64 calls f.
func (f SourceFunc) Float64() float64 { return f() }

// GlobalSource draws from the math/rand/v2 top-level generator, which is
// safe for concurrent use.
var GlobalSource Source = SourceFunc(rand.Float64)

// NewSeededSource returns a PCG-backed source. The same seed always yields
// the same sequence of draws.
func NewSeededSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomSource returns a PCG-backed source seeded from crypto/rand.
func NewRandomSource() (Source, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeededSource(seed), nil
}

// NewSeed reads a high-entropy seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
