package cmd

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-datastore"
	"github.com/stacked-drg/porep-verifier/stacked"
	"github.com/stacked-drg/porep-verifier/store"
	"github.com/stacked-drg/porep-verifier/types"
	"github.com/stacked-drg/porep-verifier/verifier"
	"golang.org/x/xerrors"
)

type node struct {
	ds      datastore.Batching
	params  *store.Params
	service *verifier.Service
}

func (n *node) Close() error {
	return n.ds.Close()
}

// openNode wires the datastore, key cache and service from the loaded config.
func openNode() (*node, error) {
	ds, err := store.Open(cfg.DatastorePath())
	if err != nil {
		return nil, err
	}
	cache, err := verifier.NewKeyCache(cfg.Cache.VerifyingKeys)
	if err != nil {
		ds.Close()
		return nil, err
	}
	params := store.NewParams(ds)
	orch := verifier.NewOrchestrator(verifier.NewGroth16(cache))
	return &node{
		ds:      ds,
		params:  params,
		service: verifier.NewService(params, store.NewLedger(ds), orch),
	}, nil
}

func parseHex32(name, s string) ([32]byte, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return [32]byte{}, xerrors.Errorf("%s: %w", name, err)
	}
	return types.Bytes32(name, b)
}

// resolvePoRepID takes an explicit hex porep id, falling back to the id of
// the registered seal proof.
func resolvePoRepID(hexID string, proof int64) ([32]byte, error) {
	if hexID != "" {
		return parseHex32("porep-id", hexID)
	}
	return stacked.PoRepIDFor(abi.RegisteredSealProof(proof)), nil
}
