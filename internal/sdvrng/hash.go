package sdvrng

import "math/bits"

// XXHash32 primes.
const (
	prime1 uint32 = 2654435761
	prime2 uint32 = 2246822519
	prime3 uint32 = 3266489917
	prime4 uint32 = 668265263
	prime5 uint32 = 374761393
)

// XXHash32 computes the 32-bit xxHash digest of data. Matches the
// XxHash32 implementation the game uses for hashed seeding.
func XXHash32(data []byte, seed uint32) uint32 {
	n := len(data)
	var h uint32

	if n >= 16 {
		v1 := seed + prime1 + prime2
		v2 := seed + prime2
		v3 := seed
		v4 := seed - prime1
		for len(data) >= 16 {
			v1 = round(v1, le32(data[0:4]))
			v2 = round(v2, le32(data[4:8]))
			v3 = round(v3, le32(data[8:12]))
			v4 = round(v4, le32(data[12:16]))
			data = data[16:]
		}
		h = bits.RotateLeft32(v1, 1) + bits.RotateLeft32(v2, 7) +
			bits.RotateLeft32(v3, 12) + bits.RotateLeft32(v4, 18)
	} else {
		h = seed + prime5
	}

	h += uint32(n)

	for len(data) >= 4 {
		h += le32(data[0:4]) * prime3
		h = bits.RotateLeft32(h, 17) * prime4
		data = data[4:]
	}
	for _, b := range data {
		h += uint32(b) * prime5
		h = bits.RotateLeft32(h, 11) * prime1
	}

	h ^= h >> 15
	h *= prime2
	h ^= h >> 13
	h *= prime3
	h ^= h >> 16
	return h
}

func round(acc, input uint32) uint32 {
	acc += input * prime2
	acc = bits.RotateLeft32(acc, 13)
	return acc * prime1
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
