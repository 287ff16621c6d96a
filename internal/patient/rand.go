package patient

import "math/rand"

// Rand is the randomness the registry draws ids and advice from.
type Rand interface {
	Intn(n int) int
}

// SharedRand draws from the math/rand top-level source, which is safe for
// concurrent use. It is the default wherever request handlers draw.
type SharedRand struct{}

func (SharedRand) Intn(n int) int    { return rand.Intn(n) }
func (SharedRand) Float64() float64 { return rand.Float64() }
