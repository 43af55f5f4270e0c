package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"github.com/ipfs/go-datastore/query"
	"github.com/stacked-drg/porep-verifier/stacked"
	"github.com/stacked-drg/porep-verifier/types"
	"golang.org/x/xerrors"
)

// Params maps porep keys to verifier parameter bundles.
type Params struct {
	ds datastore.Datastore
}

func NewParams(ds datastore.Datastore) *Params {
	return &Params{ds: namespace.Wrap(ds, datastore.NewKey("/params"))}
}

func paramsKey(key [32]byte) datastore.Key {
	return datastore.NewKey(hex.EncodeToString(key[:]))
}

func (p *Params) Put(ctx context.Context, key [32]byte, vp stacked.VerifierParams) error {
	b, err := json.Marshal(types.SerializeVerifierParameters(vp))
	if err != nil {
		return xerrors.Errorf("failed to encode verifier params: %w", err)
	}
	return p.ds.Put(ctx, paramsKey(key), b)
}

func (p *Params) Get(ctx context.Context, key [32]byte) (stacked.VerifierParams, error) {
	b, err := p.ds.Get(ctx, paramsKey(key))
	if err != nil {
		return stacked.VerifierParams{}, xerrors.Errorf("verifier params %x: %w", key, err)
	}
	raw, err := types.ReadVerifierParametersFromRequest(b)
	if err != nil {
		return stacked.VerifierParams{}, xerrors.Errorf("failed to decode verifier params %x: %w", key, err)
	}
	return types.DeserializeVerifierParameters(raw)
}

func (p *Params) Delete(ctx context.Context, key [32]byte) error {
	return p.ds.Delete(ctx, paramsKey(key))
}

// Keys lists every registered porep key.
func (p *Params) Keys(ctx context.Context) ([][32]byte, error) {
	res, err := p.ds.Query(ctx, query.Query{KeysOnly: true})
	if err != nil {
		return nil, err
	}
	entries, err := res.Rest()
	if err != nil {
		return nil, err
	}
	keys := make([][32]byte, 0, len(entries))
	for _, e := range entries {
		b, err := hex.DecodeString(strings.TrimPrefix(e.Key, "/"))
		if err != nil || len(b) != 32 {
			return nil, xerrors.Errorf("malformed params key %q", e.Key)
		}
		var k [32]byte
		copy(k[:], b)
		keys = append(keys, k)
	}
	return keys, nil
}
