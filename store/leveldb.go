package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBStore is a Store backed by an embedded goleveldb database, the
// idiomatic Go analogue of an embedded, ordered, single-process LSM store.
type LevelDBStore struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a LevelDB database at dir.
func Open(dir string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *LevelDBStore) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *LevelDBStore) NewIterator(prefix []byte) Iterator {
	var rng *util.Range
	if len(prefix) > 0 {
		rng = util.BytesPrefix(prefix)
	}
	return &levelDBIterator{it: s.db.NewIterator(rng, nil)}
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

type levelDBIterator struct {
	it iterator.Iterator
}

func (i *levelDBIterator) Next() bool    { return i.it.Next() }
func (i *levelDBIterator) Key() []byte   { return i.it.Key() }
func (i *levelDBIterator) Value() []byte { return i.it.Value() }
func (i *levelDBIterator) Release()      { i.it.Release() }
func (i *levelDBIterator) Error() error  { return i.it.Error() }
