package drg

import (
	"encoding/binary"
	"math/bits"
)

// chachaRng is the ChaCha block stream in the layout of the rand_chacha
// generators the sealing side seeds its DRG sampling with: 256 bit key taken
// from the seed, 64 bit block counter in words 12 and 13, stream id 0 in words
// 14 and 15, output words consumed in order.
type chachaRng struct {
	state  [16]uint32
	block  [16]uint32
	rounds int
	idx    int
}

func newChaCha8(seed [32]byte) *chachaRng {
	return newChaCha(seed, 8)
}

func newChaCha(seed [32]byte, rounds int) *chachaRng {
	r := &chachaRng{rounds: rounds, idx: 16}
	r.state[0] = 0x61707865
	r.state[1] = 0x3320646e
	r.state[2] = 0x79622d32
	r.state[3] = 0x6b206574
	for i := 0; i < 8; i++ {
		r.state[4+i] = binary.LittleEndian.Uint32(seed[4*i:])
	}
	return r
}

func quarterRound(x *[16]uint32, a, b, c, d int) {
	x[a] += x[b]
	x[d] = bits.RotateLeft32(x[d]^x[a], 16)
	x[c] += x[d]
	x[b] = bits.RotateLeft32(x[b]^x[c], 12)
	x[a] += x[b]
	x[d] = bits.RotateLeft32(x[d]^x[a], 8)
	x[c] += x[d]
	x[b] = bits.RotateLeft32(x[b]^x[c], 7)
}

func (r *chachaRng) refill() {
	x := r.state
	for i := 0; i < r.rounds; i += 2 {
		quarterRound(&x, 0, 4, 8, 12)
		quarterRound(&x, 1, 5, 9, 13)
		quarterRound(&x, 2, 6, 10, 14)
		quarterRound(&x, 3, 7, 11, 15)
		quarterRound(&x, 0, 5, 10, 15)
		quarterRound(&x, 1, 6, 11, 12)
		quarterRound(&x, 2, 7, 8, 13)
		quarterRound(&x, 3, 4, 9, 14)
	}
	for i := range x {
		r.block[i] = x[i] + r.state[i]
	}
	r.state[12]++
	if r.state[12] == 0 {
		r.state[13]++
	}
	r.idx = 0
}

func (r *chachaRng) Uint32() uint32 {
	if r.idx >= 16 {
		r.refill()
	}
	v := r.block[r.idx]
	r.idx++
	return v
}

// Uint64 joins two consecutive words, low word first.
func (r *chachaRng) Uint64() uint64 {
	lo := uint64(r.Uint32())
	hi := uint64(r.Uint32())
	return hi<<32 | lo
}
