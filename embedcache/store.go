package embedcache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/ganarajpr/rgfe-sub000/core"
)

const recordKeyPrefix = "embvec"

// Store is a BadgerDB-backed persistent store for embedding cache records.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenStore opens a cache store at the specified directory.
// Creates the directory if it doesn't exist.
func OpenStore(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "embedcache-store"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// makeRecordKey generates a key for a cache record by content ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", recordKeyPrefix, id))
}

// Get returns the cached record for a content ID, or ok=false on a miss.
func (s *Store) Get(id core.ID) (cacheRecord, bool, error) {
	var record cacheRecord
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeRecordKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = unmarshalCacheRecord(val)
			if err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return cacheRecord{}, false, err
	}
	return record, found, nil
}

// Put stores a record under the given content ID, overwriting any previous
// value.
func (s *Store) Put(id core.ID, record cacheRecord) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeRecordKey(id), marshalCacheRecord(record))
	})
}

// Len returns the number of cached records. Intended for diagnostics.
func (s *Store) Len() (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(recordKeyPrefix + ":")})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
