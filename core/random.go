package core

import "golang.org/x/exp/rand"

// RandomSource supplies uniform integers in [0, n).
type RandomSource interface {
	Intn(n int) int
}

// NewRandomSource returns a PCG-backed source. Equal seeds yield equal sequences.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewSource(seed))
}
