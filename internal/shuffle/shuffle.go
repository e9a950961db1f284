// Package shuffle provides a reproducible Fisher-Yates shuffle.
//
// The generator is mulberry32: 32 bits of state, advanced by the constant
// 0x6D2B79F5 on every draw. Index selection multiplies the 32-bit output by
// the bound and keeps the high word, which equals floor(u/2^32 * n) and needs
// no floating point, so any reimplementation reproduces the same
// permutations bit for bit.
package shuffle

// DefaultSeed is the launch calendar's shuffle seed.
const DefaultSeed uint32 = 42069

// Source is a deterministic 32-bit generator. It is not safe for concurrent
// use.
type Source struct {
	state uint32
	draws uint64
}

// NewSource returns a generator starting at seed.
func NewSource(seed uint32) *Source {
	return &Source{state: seed}
}

// Uint32 advances the state and returns the next value.
func (s *Source) Uint32() uint32 {
	s.state += 0x6D2B79F5
	s.draws++
	z := s.state
	z = (z ^ z>>15) * (z | 1)
	z ^= z + (z^z>>7)*(z|61)
	return z ^ z>>14
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("shuffle: Intn bound must be positive")
	}
	return int((uint64(s.Uint32()) * uint64(n)) >> 32)
}

// Draws reports how many values have been drawn.
func (s *Source) Draws() uint64 { return s.draws }

// Shuffle permutes list in place. Every position from the end down to 1 draws
// exactly once, so a list of length n advances src by n-1 draws.
func Shuffle[T any](src *Source, list []T) {
	for i := len(list) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		list[i], list[j] = list[j], list[i]
	}
}
