package core

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBBackend is the production Backend: an embedded ordered-key engine
// opened at a caller-supplied directory with create-if-missing semantics.
// Grounded on the goleveldb dependency carried by this retrieval pack's
// tos-network-gtos and avalanchego/coreth repositories.
type LevelDBBackend struct {
	db *leveldb.DB
}

// OpenLevelDBBackend opens (or creates) a LevelDB store at dir.
func OpenLevelDBBackend(dir string) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, errStorage("open leveldb at %s: %w", dir, err)
	}
	return &LevelDBBackend{db: db}, nil
}

func (l *LevelDBBackend) GetRaw(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, errStorage("get %x: %w", key, err)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (l *LevelDBBackend) PutRaw(key, value []byte) error {
	if err := l.db.Put(key, value, nil); err != nil {
		return errStorage("put %x: %w", key, err)
	}
	return nil
}

// Close releases the underlying file handles.
func (l *LevelDBBackend) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	if err := l.db.Close(); err != nil {
		return errStorage("close leveldb: %w", err)
	}
	return nil
}
