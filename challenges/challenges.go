package challenges

import (
	"encoding/binary"
	"math/big"
	"math/bits"

	"github.com/minio/sha256-simd"
	"github.com/stacked-drg/porep-verifier/domain"
	"golang.org/x/xerrors"
)

// LayerChallenges is the challenge policy of a stacked graph: every partition
// draws MaxCount challenges for each of Layers layers.
type LayerChallenges struct {
	Layers   uint64 `json:"layers"`
	MaxCount uint64 `json:"max_count"`
}

// MaxChallenges bounds the challenges of one partition. Slot indices
// count*k+i are 32 bit for every partition k < 256.
const MaxChallenges = 1 << 24

func New(layers, maxCount uint64) LayerChallenges {
	return LayerChallenges{Layers: layers, MaxCount: maxCount}
}

func (lc LayerChallenges) Validate() error {
	if lc.Layers < 1 {
		return xerrors.Errorf("layers must be at least 1, got %d", lc.Layers)
	}
	if lc.MaxCount < 1 {
		return xerrors.Errorf("max_count must be at least 1, got %d", lc.MaxCount)
	}
	hi, count := bits.Mul64(lc.Layers, lc.MaxCount)
	if hi != 0 || count > MaxChallenges {
		return xerrors.Errorf("%d layers of %d challenges exceed %d challenges per partition", lc.Layers, lc.MaxCount, MaxChallenges)
	}
	return nil
}

// ChallengesCount is the number of challenges in one partition. It is only
// meaningful for a policy that passes Validate.
func (lc LayerChallenges) ChallengesCount() uint64 {
	return lc.Layers * lc.MaxCount
}

// Derive returns the challenged node indices of partition k in slot order.
// Every index lies in [1, leaves).
func (lc LayerChallenges) Derive(leaves uint64, replicaID domain.Element, seed [32]byte, k uint8) ([]uint64, error) {
	s, err := lc.Sampler(leaves, replicaID, seed, k)
	if err != nil {
		return nil, err
	}
	return s.GetNChallenges(s.Remaining()), nil
}

// Sampler walks the challenges of one partition. It holds no state besides
// its position, Reset restarts the identical sequence.
type Sampler struct {
	prefix  []byte
	modulus *big.Int
	base    uint64
	count   uint64
	pos     uint64
}

func (lc LayerChallenges) Sampler(leaves uint64, replicaID domain.Element, seed [32]byte, k uint8) (*Sampler, error) {
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	if leaves < 2 {
		return nil, xerrors.Errorf("cannot derive challenges over %d leaves", leaves)
	}
	count := lc.ChallengesCount()
	prefix := make([]byte, 0, domain.Size+len(seed))
	prefix = append(prefix, replicaID[:]...)
	prefix = append(prefix, seed[:]...)
	return &Sampler{
		prefix:  prefix,
		modulus: new(big.Int).SetUint64(leaves - 1),
		base:    count * uint64(k),
		count:   count,
	}, nil
}

func (s *Sampler) Remaining() uint64 {
	return s.count - s.pos
}

func (s *Sampler) Reset() {
	s.pos = 0
}

// Next returns the challenge in the current slot and advances.
func (s *Sampler) Next() (uint64, bool) {
	if s.pos >= s.count {
		return 0, false
	}
	c := s.challenge(uint32(s.base + s.pos))
	s.pos++
	return c, true
}

func (s *Sampler) GetNChallenges(n uint64) []uint64 {
	out := make([]uint64, 0, n)
	for i := uint64(0); i < n; i++ {
		c, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

func (s *Sampler) challenge(j uint32) uint64 {
	h := sha256.New()
	h.Write(s.prefix)
	var jb [4]byte
	binary.LittleEndian.PutUint32(jb[:], j)
	h.Write(jb[:])
	digest := h.Sum(nil)

	// digest is a little-endian integer
	for i, l := 0, len(digest)-1; i < l; i, l = i+1, l-1 {
		digest[i], digest[l] = digest[l], digest[i]
	}
	v := new(big.Int).SetBytes(digest)
	v.Mod(v, s.modulus)
	return v.Uint64() + 1
}

// Requirements is the minimum total challenge count a parameter set must
// reach before its proofs are trusted.
type Requirements struct {
	MinimumChallenges uint64 `json:"minimum_challenges"`
}

// Satisfied reports whether partitions partitions of lc reach the minimum.
// An invalid policy never does.
func (r Requirements) Satisfied(lc LayerChallenges, partitions uint64) bool {
	if lc.Validate() != nil {
		return false
	}
	hi, total := bits.Mul64(partitions, lc.ChallengesCount())
	return hi != 0 || total >= r.MinimumChallenges
}

// Select grows MaxCount from 1 until partitions partitions of the given
// number of layers reach minimum challenges in total.
func Select(partitions, minimum, layers uint64) LayerChallenges {
	guess := New(layers, 1)
	if partitions == 0 || layers == 0 {
		return guess
	}
	for partitions*guess.ChallengesCount() < minimum {
		guess = New(layers, guess.MaxCount+1)
	}
	return guess
}
