package signal

import "math/rand"

// Noise is a seeded uniform white-noise source. Identical seeds produce
// identical sequences.
type Noise struct {
	seed int64
	rng  *rand.Rand
}

// NewNoise creates a noise source with the given seed.
func NewNoise(seed int64) *Noise {
	return &Noise{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Seed returns the seed the source was created or last reset with.
func (n *Noise) Seed() int64 { return n.seed }

// SetSeed restarts the sequence from a new seed.
func (n *Noise) SetSeed(seed int64) {
	n.seed = seed
	n.rng.Seed(seed)
}

// Next returns a sample in [-amplitude, amplitude).
func (n *Noise) Next(amplitude float64) float64 {
	return (n.rng.Float64()*2 - 1) * amplitude
}
