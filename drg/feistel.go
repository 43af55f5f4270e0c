package drg

import (
	"encoding/binary"

	"github.com/minio/blake2b-simd"
)

const feistelRounds = 3

type feistelPrecomputed struct {
	leftMask  uint64
	rightMask uint64
	halfBits  uint64
}

// precomputeFeistel sizes the two halves for the smallest power of four
// covering numElements.
func precomputeFeistel(numElements uint64) feistelPrecomputed {
	nextPow4 := uint64(4)
	log4 := uint64(1)
	for nextPow4 < numElements {
		nextPow4 *= 4
		log4++
	}
	return feistelPrecomputed{
		leftMask:  ((1 << log4) - 1) << log4,
		rightMask: (1 << log4) - 1,
		halfBits:  log4,
	}
}

// permute maps index onto [0, numElements) by cycle walking the Feistel
// network until the output falls in range.
func permute(numElements, index uint64, keys *[4]uint64, p feistelPrecomputed) uint64 {
	u := encode(index, keys, p)
	for u >= numElements {
		u = encode(u, keys, p)
	}
	return u
}

func encode(index uint64, keys *[4]uint64, p feistelPrecomputed) uint64 {
	left := (index & p.leftMask) >> p.halfBits
	right := index & p.rightMask
	for _, key := range keys[:feistelRounds] {
		left, right = right, left^feistel(right, key, p.rightMask)
	}
	return (left << p.halfBits) | right
}

var feistelHashConfig = &blake2b.Config{Size: 8}

func feistel(right, key, rightMask uint64) uint64 {
	var data [16]byte
	binary.BigEndian.PutUint64(data[:8], right)
	binary.BigEndian.PutUint64(data[8:], key)

	hasher, err := blake2b.New(feistelHashConfig)
	if err != nil {
		panic("invalid feistel hash configuration: " + err.Error())
	}
	hasher.Write(data[:])
	return binary.BigEndian.Uint64(hasher.Sum(nil)) & rightMask
}
