package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// pcgStream is the fixed second word of the PCG state.
const pcgStream = 0x9e3779b97f4a7c15

// Source is the entropy source consumed by the generator. It wraps a
// gofakeit Faker over a locked PCG stream, so one Source may be shared by
// concurrent callers. Two Sources built from the same non-zero seed produce
// the same sequence.
type Source struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewSource creates a Source. A zero seed is replaced by one derived from
// the clock.
func NewSource(seed uint64) *Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Source{
		faker: gofakeit.NewFaker(rand.NewPCG(seed, pcgStream), true),
		seed:  seed,
	}
}

// Seed returns the seed the Source was built from.
func (s *Source) Seed() uint64 {
	return s.seed
}

// Fork derives an independent Source from this one, for callers that want
// one source per goroutine.
func (s *Source) Fork() *Source {
	return NewSource(s.faker.Uint64() | 1)
}

// Faker exposes the underlying gofakeit Faker.
func (s *Source) Faker() *gofakeit.Faker {
	return s.faker
}

// IntRange returns a uniform integer in [min, max]. Bounds are swapped when
// given in the wrong order.
func (s *Source) IntRange(min, max int) int {
	if min > max {
		min, max = max, min
	}
	if min == max {
		return min
	}
	span := uint64(max) - uint64(min)
	if span < math.MaxInt {
		return s.faker.IntRange(min, max)
	}
	// max-min+1 does not fit in an int; sample the width as uint64.
	if span == math.MaxUint64 {
		return int(s.faker.Uint64())
	}
	n := span + 1
	threshold := -n % n
	for {
		if v := s.faker.Uint64(); v >= threshold {
			return int(uint64(min) + v%n)
		}
	}
}

// Bool returns a uniform boolean.
func (s *Source) Bool() bool {
	return s.faker.Bool()
}

// Read fills p with pseudo-random bytes so the Source can back
// uuid.NewRandomFromReader.
func (s *Source) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := s.faker.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}
