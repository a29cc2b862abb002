// Package badger provides a single, concrete Snapshot/WriteSnapshot
// implementation over BadgerDB (it has no TypeManager), so the storage interfaces in
// the parent package can be exercised end to end. This is a reference
// collaborator, not a modeled part of the compiler: the concrete on-disk
// encoding of concepts is a storage-layer concern, and Snapshot/
// TypeManager are read-only services the core only calls into.
package badger

import (
	"fmt"

	bdg "github.com/dgraph-io/badger/v4"

	"github.com/wbrown/graphtype/storage"
)

// Store opens and owns a BadgerDB instance backing one or more Snapshots.
type Store struct {
	db *bdg.DB
}

// Open creates or opens a BadgerDB database at path, tuned for the
// read-heavy ordered-scan workload an Intersection step drives.
func Open(path string) (*Store, error) {
	opts := bdg.DefaultOptions(path)
	opts.Logger = nil
	opts.MemTableSize = 128 << 20
	opts.BlockCacheSize = 256 << 20
	opts.IndexCacheSize = 100 << 20
	opts.DetectConflicts = false
	opts.NumCompactors = 4
	opts.ValueThreshold = 1 << 10

	db, err := bdg.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot returns a read-only view as of the current commit.
func (s *Store) Snapshot() storage.Snapshot {
	return &readSnapshot{txn: s.db.NewTransaction(false)}
}

// BeginWrite opens a write-exclusive transaction-local snapshot. The
// caller becomes the unique owner of this snapshot until Commit/Rollback.
func (s *Store) BeginWrite() storage.WriteSnapshot {
	txn := s.db.NewTransaction(true)
	return &writeSnapshot{readSnapshot: readSnapshot{txn: txn}, txn: txn}
}

type readSnapshot struct {
	txn *bdg.Txn
}

func (r *readSnapshot) Scan(rng storage.KeyRange) (storage.KeyIterator, error) {
	opts := bdg.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.PrefetchSize = 256
	it := r.txn.NewIterator(opts)
	it.Seek(rng.Start)
	return &keyIterator{it: it, end: rng.End}, nil
}

func (r *readSnapshot) Get(key storage.Key) ([]byte, bool, error) {
	item, err := r.txn.Get(key)
	if err == bdg.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger: get: %w", err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, fmt.Errorf("badger: read value: %w", err)
	}
	return val, true, nil
}

type keyIterator struct {
	it      *bdg.Iterator
	end     storage.Key
	started bool
}

func (k *keyIterator) Next() bool {
	if k.started {
		k.it.Next()
	}
	k.started = true
	if !k.it.Valid() {
		return false
	}
	key := k.it.Item().KeyCopy(nil)
	if k.end != nil && compareBytesLex(key, k.end) >= 0 {
		return false
	}
	return true
}

func (k *keyIterator) Key() storage.Key {
	return k.it.Item().KeyCopy(nil)
}

func (k *keyIterator) Value() []byte {
	val, err := k.it.Item().ValueCopy(nil)
	if err != nil {
		return nil
	}
	return val
}

func (k *keyIterator) Close() error {
	k.it.Close()
	return nil
}

type writeSnapshot struct {
	readSnapshot
	txn *bdg.Txn
}

func (w *writeSnapshot) Put(key storage.Key, value []byte) error {
	if err := w.txn.Set(key, value); err != nil {
		return fmt.Errorf("badger: put: %w", err)
	}
	return nil
}

func (w *writeSnapshot) Delete(key storage.Key) error {
	if err := w.txn.Delete(key); err != nil && err != bdg.ErrKeyNotFound {
		return fmt.Errorf("badger: delete: %w", err)
	}
	return nil
}

func (w *writeSnapshot) Commit() error {
	if err := w.txn.Commit(); err != nil {
		return fmt.Errorf("badger: commit: %w", err)
	}
	return nil
}

func (w *writeSnapshot) Rollback() error {
	w.txn.Discard()
	return nil
}

func compareBytesLex(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
