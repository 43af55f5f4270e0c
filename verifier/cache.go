package verifier

import (
	"github.com/consensys/gnark/backend/groth16"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minio/sha256-simd"
	"golang.org/x/xerrors"
)

type cachedKey struct {
	digest [32]byte
	vk     groth16.VerifyingKey
}

// KeyCache memoizes parsed verifying keys by porep key. An entry is reused
// only while the raw key bytes registered under that porep key are unchanged.
type KeyCache struct {
	keys *lru.Cache[[32]byte, cachedKey]
}

func NewKeyCache(size int) (*KeyCache, error) {
	keys, err := lru.New[[32]byte, cachedKey](size)
	if err != nil {
		return nil, xerrors.Errorf("failed to create verifying key cache: %w", err)
	}
	return &KeyCache{keys: keys}, nil
}

// Get returns the parsed key, parsing and storing it on a miss.
func (c *KeyCache) Get(vk VerifyingKey) (groth16.VerifyingKey, error) {
	digest := sha256.Sum256(vk.Raw)
	if e, ok := c.keys.Get(vk.Key); ok && e.digest == digest {
		return e.vk, nil
	}
	parsed, err := ParseVerifyingKey(vk.Raw)
	if err != nil {
		return nil, err
	}
	c.keys.Add(vk.Key, cachedKey{digest: digest, vk: parsed})
	return parsed, nil
}

func (c *KeyCache) Contains(key [32]byte) bool {
	return c.keys.Contains(key)
}

func (c *KeyCache) Len() int {
	return c.keys.Len()
}
