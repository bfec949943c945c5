package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	keyPrefixRecord      = "record:"
	keySchemaVersion     = "metadata:schema_version"
	keyActiveGeneration  = "metadata:active_generation"
	currentSchemaVersion = "v2"

	gcInterval = 5 * time.Minute
)

// BadgerRecordStore keeps the ordered record list on disk.
// Each save writes a new generation under record:<generation><position>, both
// 8-byte big-endian, so a prefix scan returns records in saved order. The
// metadata:active_generation key holds the generation and its record count and
// is switched in a single transaction once every record is flushed.
type BadgerRecordStore struct {
	db       *badgerdb.DB
	logger   *zap.Logger
	gcCancel context.CancelFunc
	gcWg     sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
}

var _ records.IRecordStore = (*BadgerRecordStore)(nil)

// NewBadgerRecordStore opens (or creates) a badger database at dataPath and
// starts a background value log GC loop.
func NewBadgerRecordStore(dataPath string, logger *zap.Logger) (*BadgerRecordStore, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve absolute path")
	}

	opts := badgerdb.DefaultOptions(absPath)
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.NumVersionsToKeep = 1

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger database at %s", absPath)
	}

	bs := &BadgerRecordStore{
		db:     db,
		logger: logger,
	}

	if err := bs.initSchema(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	ctx, cancel := context.WithCancel(context.Background())
	bs.gcCancel = cancel
	bs.gcWg.Add(1)
	go bs.runGC(ctx)

	logger.Sugar().Infow("Badger record store initialized", "path", absPath)
	return bs, nil
}

func (b *BadgerRecordStore) initSchema() error {
	return b.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return txn.Set([]byte(keySchemaVersion), []byte(currentSchemaVersion))
		}
		if err != nil {
			return errors.Wrap(err, "failed to read schema version")
		}

		var existingVersion string
		err = item.Value(func(val []byte) error {
			existingVersion = string(val)
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "failed to read schema version value")
		}

		if existingVersion != currentSchemaVersion {
			return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
		}
		return nil
	})
}

func (b *BadgerRecordStore) runGC(ctx context.Context) {
	defer b.gcWg.Done()

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := b.db.RunValueLogGC(0.5)
			if err != nil && err != badgerdb.ErrNoRewrite {
				b.logger.Sugar().Warnw("Badger GC error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func generationPrefix(generation uint64) []byte {
	prefix := make([]byte, len(keyPrefixRecord)+8)
	copy(prefix, keyPrefixRecord)
	binary.BigEndian.PutUint64(prefix[len(keyPrefixRecord):], generation)
	return prefix
}

func recordKey(generation, position uint64) []byte {
	key := make([]byte, len(keyPrefixRecord)+16)
	copy(key, generationPrefix(generation))
	binary.BigEndian.PutUint64(key[len(keyPrefixRecord)+8:], position)
	return key
}

// activeGeneration is the committed record set
type activeGeneration struct {
	generation uint64
	count      uint64
}

func (a activeGeneration) encode() []byte {
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[:8], a.generation)
	binary.BigEndian.PutUint64(out[8:], a.count)
	return out
}

// readActiveGeneration returns false when nothing has been saved yet
func readActiveGeneration(txn *badgerdb.Txn) (activeGeneration, bool, error) {
	item, err := txn.Get([]byte(keyActiveGeneration))
	if err == badgerdb.ErrKeyNotFound {
		return activeGeneration{}, false, nil
	}
	if err != nil {
		return activeGeneration{}, false, errors.Wrap(err, "failed to read active generation")
	}

	var active activeGeneration
	err = item.Value(func(val []byte) error {
		if len(val) != 16 {
			return fmt.Errorf("invalid active generation value of %d bytes", len(val))
		}
		active.generation = binary.BigEndian.Uint64(val[:8])
		active.count = binary.BigEndian.Uint64(val[8:])
		return nil
	})
	if err != nil {
		return activeGeneration{}, false, err
	}
	return active, true, nil
}

// SaveRecords replaces the stored record list with recs. Records are written
// under a fresh generation and only become visible when the active generation
// key is switched, so a failed or interrupted save leaves the previous list
// in place.
func (b *BadgerRecordStore) SaveRecords(ctx context.Context, recs []reserves.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return records.ErrClosed
	}

	var previous activeGeneration
	var hasPrevious bool
	err := b.db.View(func(txn *badgerdb.Txn) error {
		var err error
		previous, hasPrevious, err = readActiveGeneration(txn)
		return err
	})
	if err != nil {
		return err
	}
	next := activeGeneration{generation: previous.generation + 1, count: uint64(len(recs))}

	// leftovers from an interrupted save of the same generation
	if err := b.db.DropPrefix(generationPrefix(next.generation)); err != nil {
		return errors.Wrap(err, "failed to clear stale generation")
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := records.MarshalRecord(&recs[i])
		if err != nil {
			return err
		}
		if err := wb.Set(recordKey(next.generation, uint64(i)), data); err != nil {
			return errors.Wrapf(err, "failed to stage record %d", i)
		}
	}
	if err := wb.Flush(); err != nil {
		return errors.Wrap(err, "failed to write records")
	}

	err = b.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keyActiveGeneration), next.encode())
	})
	if err != nil {
		return errors.Wrap(err, "failed to activate record generation")
	}

	if hasPrevious {
		if err := b.db.DropPrefix(generationPrefix(previous.generation)); err != nil {
			b.logger.Sugar().Warnw("Failed to drop previous record generation",
				"generation", previous.generation,
				"error", err,
			)
		}
	}

	b.logger.Sugar().Infow("Saved records to badger", "count", len(recs), "generation", next.generation)
	return nil
}

// LoadRecords returns every record of the active generation in position
// order. A generation holding fewer or more records than its manifest is an
// error.
func (b *BadgerRecordStore) LoadRecords(ctx context.Context) ([]reserves.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, records.ErrClosed
	}

	recs := []reserves.Record{}
	err := b.db.View(func(txn *badgerdb.Txn) error {
		active, ok, err := readActiveGeneration(txn)
		if err != nil || !ok {
			return err
		}

		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = generationPrefix(active.generation)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()

			var data []byte
			err := item.Value(func(val []byte) error {
				data = append([]byte{}, val...)
				return nil
			})
			if err != nil {
				return errors.Wrap(err, "failed to read value")
			}

			// a skipped record would silently change the committed root
			r, err := records.UnmarshalRecord(data)
			if err != nil {
				return errors.Wrapf(err, "corrupt record at key %x", item.Key())
			}
			recs = append(recs, *r)
		}

		if uint64(len(recs)) != active.count {
			return fmt.Errorf("incomplete record set in generation %d: found %d records, expected %d",
				active.generation, len(recs), active.count)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load records")
	}

	return recs, nil
}

// Close stops the GC loop and closes the database. Idempotent.
func (b *BadgerRecordStore) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.gcCancel != nil {
		b.gcCancel()
	}
	b.gcWg.Wait()

	if err := b.db.Close(); err != nil {
		return errors.Wrap(err, "failed to close badger database")
	}

	b.logger.Sugar().Info("Badger record store closed")
	return nil
}

// HealthCheck verifies the database is open and initialized
func (b *BadgerRecordStore) HealthCheck() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return records.ErrClosed
	}

	return b.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get([]byte(keySchemaVersion))
		if err == badgerdb.ErrKeyNotFound {
			return fmt.Errorf("schema version not found - database may be corrupted")
		}
		return err
	})
}
