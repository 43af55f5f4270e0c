// Package store persists verifier parameter bundles and the submission
// ledger on a go-datastore backend.
package store

import (
	"os"

	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	levelds "github.com/ipfs/go-ds-leveldb"
	ldbopts "github.com/syndtr/goleveldb/leveldb/opt"
	"golang.org/x/xerrors"
)

var ErrNotFound = datastore.ErrNotFound

// Open returns a leveldb datastore rooted at path, or a thread safe
// in-memory one when path is empty.
func Open(path string) (datastore.Batching, error) {
	if path == "" {
		return dssync.MutexWrap(datastore.NewMapDatastore()), nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, xerrors.Errorf("failed to create directory %s for datastore: %w", path, err)
	}
	ds, err := levelds.NewDatastore(path, &levelds.Options{
		Compression: ldbopts.NoCompression,
		NoSync:      false,
		Strict:      ldbopts.StrictAll,
		ReadOnly:    false,
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to open datastore: %w", err)
	}
	return ds, nil
}
