// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

// pcg is the 64-bit permuted congruential generator PCG RXS M XS 64
// from http://www.pcg-random.org/. Simulations must replay exactly for a
// given seed, on every Go release, so the generator lives here.
type pcg struct {
	state uint64
}

const (
	pcgMultiplier = 6364136223846793005
	pcgIncrement  = 1442695040888963407
	pcgPermuter   = 12605985483714917081
)

func (p *pcg) Uint64() uint64 {
	old := p.state
	p.state = p.state*pcgMultiplier + pcgIncrement
	word := ((old >> ((old >> 59) + 5)) ^ old) * pcgPermuter
	return (word >> 43) ^ word
}

// Intn returns a value in [0, n). n must be positive.
func (p *pcg) Intn(n int) int {
	return int(p.Uint64() % uint64(n))
}

// chance reports true with probability 1/n.
func (p *pcg) chance(n int) bool {
	return p.Intn(n) == 0
}
