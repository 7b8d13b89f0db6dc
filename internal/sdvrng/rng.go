// Package sdvrng reproduces the random number generation Stardew Valley
// derives from a game seed. The game runs on .NET, so matching its outcomes
// byte for byte requires the exact System.Random sequence and, for 1.6
// "hashed" seeding, the exact XXHash32 digest. Both are implemented here by
// hand; a stdlib or third-party source would produce a different stream and
// every prediction would be wrong.
package sdvrng

import (
	"fmt"
	"math"
)

const (
	mseed = 161803398
	mbig  = math.MaxInt32
)

// Random is a .NET Framework System.Random clone (Knuth subtractive
// generator, 56-slot lattice).
type Random struct {
	seedArray [56]int32
	inext     int
	inextp    int
}

// NewRandom seeds a generator exactly as the .NET constructor does.
func NewRandom(seed int32) *Random {
	r := &Random{}

	subtraction := int32(math.MaxInt32)
	if seed != math.MinInt32 {
		if seed < 0 {
			subtraction = -seed
		} else {
			subtraction = seed
		}
	}
	mj := int32(mseed) - subtraction
	r.seedArray[55] = mj
	mk := int32(1)
	for i := 1; i < 55; i++ {
		ii := (21 * i) % 55
		r.seedArray[ii] = mk
		mk = mj - mk
		if mk < 0 {
			mk += mbig
		}
		mj = r.seedArray[ii]
	}
	for k := 1; k < 5; k++ {
		for i := 1; i < 56; i++ {
			r.seedArray[i] -= r.seedArray[1+(i+30)%55]
			if r.seedArray[i] < 0 {
				r.seedArray[i] += mbig
			}
		}
	}
	r.inext = 0
	r.inextp = 21
	return r
}

func (r *Random) internalSample() int32 {
	inext := r.inext + 1
	if inext >= 56 {
		inext = 1
	}
	inextp := r.inextp + 1
	if inextp >= 56 {
		inextp = 1
	}

	ret := r.seedArray[inext] - r.seedArray[inextp]
	if ret == mbig {
		ret--
	}
	if ret < 0 {
		ret += mbig
	}
	r.seedArray[inext] = ret
	r.inext = inext
	r.inextp = inextp
	return ret
}

// NextDouble returns the next value in [0, 1).
func (r *Random) NextDouble() float64 {
	return float64(r.internalSample()) * (1.0 / mbig)
}

// Next returns a value in [0, maxValue).
func (r *Random) Next(maxValue int32) int32 {
	if maxValue <= 0 {
		return 0
	}
	return int32(r.NextDouble() * float64(maxValue))
}

// NextRange returns a value in [minValue, maxValue).
func (r *Random) NextRange(minValue, maxValue int32) int32 {
	if maxValue <= minValue {
		return minValue
	}
	span := int64(maxValue) - int64(minValue)
	return minValue + int32(r.NextDouble()*float64(span))
}

// Variant names a seed-to-generator-state scheme.
type Variant string

const (
	// VariantHashed is the 1.6 default: seed components are hashed with
	// XXHash32 before seeding the generator.
	VariantHashed Variant = "hashed"

	// VariantLegacy is the pre-1.6 scheme kept behind the "legacy random
	// seeds" option: components are summed modulo int32 max.
	VariantLegacy Variant = "legacy"
)

// Generator maps a list of seed components to a deterministic Random.
// Implementations are stateless and safe for concurrent use.
type Generator interface {
	New(values ...int64) *Random
	Variant() Variant
}

// ForVariant resolves a named variant.
func ForVariant(v Variant) (Generator, error) {
	switch v {
	case VariantHashed, "":
		return HashedGenerator{}, nil
	case VariantLegacy:
		return LegacyGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown rng variant %q", v)
	}
}

// HashedGenerator implements the 1.6 hashed seeding.
type HashedGenerator struct{}

// New hashes the components as little-endian int32s.
func (HashedGenerator) New(values ...int64) *Random {
	buf := make([]byte, 0, len(values)*4)
	for _, v := range values {
		u := uint32(int32(v % mbig))
		buf = append(buf, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
	}
	return NewRandom(int32(XXHash32(buf, 0)))
}

// Variant implements Generator.
func (HashedGenerator) Variant() Variant { return VariantHashed }

// LegacyGenerator implements the pre-1.6 additive seeding.
type LegacyGenerator struct{}

// New sums the components modulo int32 max.
func (LegacyGenerator) New(values ...int64) *Random {
	var sum int64
	for _, v := range values {
		sum += v % mbig
	}
	return NewRandom(int32(sum % mbig))
}

// Variant implements Generator.
func (LegacyGenerator) Variant() Variant { return VariantLegacy }
