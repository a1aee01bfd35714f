package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble"
	"github.com/utxoscope/utxo_grapher/common"
)

const (
	defaultShardCount = 4

	// Database directory names
	DBDirUTXO = "utxo"
	DBDirMeta = "meta"

	datasetVersionKey = "dataset_version"
)

var (
	// ErrNotFound is returned when a key is not found in the database
	ErrNotFound = errors.New("not found")
	// Create custom log disabler
	noopLogger = &customLogger{}
)

// Custom logger - outputs nothing
type customLogger struct{}

func (l *customLogger) Infof(format string, args ...interface{})  {}
func (l *customLogger) Fatalf(format string, args ...interface{}) {}
func (l *customLogger) Errorf(format string, args ...interface{}) {}

// UTXOStore persists the wallet's UTXO set across restarts. Keys are
// outpoints ("txid:vout"), values sonic-encoded common.UTXO records,
// spread across shards by key hash.
type UTXOStore struct {
	shards []*pebble.DB
	mu     sync.RWMutex
}

// MetaStore holds bookkeeping for the UTXO set, most importantly the
// dataset version the graph cache keys on.
type MetaStore struct {
	db *pebble.DB
	mu sync.Mutex
}

func NewUTXOStore(dataDir string, shardCount int) (*UTXOStore, error) {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	dbOptions := &pebble.Options{
		Logger: noopLogger,
		Levels: []pebble.LevelOptions{
			{Compression: pebble.NoCompression},
		},
	}
	store := &UTXOStore{
		shards: make([]*pebble.DB, shardCount),
	}
	for i := 0; i < shardCount; i++ {
		dbPath := filepath.Join(dataDir, DBDirUTXO, fmt.Sprintf("shard_%d", i))
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
		db, err := pebble.Open(dbPath, dbOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to open shard %d: %w", i, err)
		}
		store.shards[i] = db
	}
	return store, nil
}

func (s *UTXOStore) getShard(key string) *pebble.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := xxhash.Sum64String(key)
	return s.shards[h%uint64(len(s.shards))]
}

// Put stores a single UTXO keyed by its outpoint.
func (s *UTXOStore) Put(u *common.UTXO) error {
	value, err := sonic.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode utxo %s: %w", u.OutPoint(), err)
	}
	key := u.OutPoint()
	return s.getShard(key).Set([]byte(key), value, pebble.Sync)
}

// PutBatch writes a batch of UTXOs, grouped per shard.
func (s *UTXOStore) PutBatch(utxos []*common.UTXO) error {
	batches := make(map[*pebble.DB]*pebble.Batch)
	for _, u := range utxos {
		value, err := sonic.Marshal(u)
		if err != nil {
			return fmt.Errorf("failed to encode utxo %s: %w", u.OutPoint(), err)
		}
		db := s.getShard(u.OutPoint())
		b, ok := batches[db]
		if !ok {
			b = db.NewBatch()
			batches[db] = b
		}
		if err := b.Set([]byte(u.OutPoint()), value, nil); err != nil {
			return fmt.Errorf("failed to batch utxo %s: %w", u.OutPoint(), err)
		}
	}
	for db, b := range batches {
		if err := db.Apply(b, pebble.Sync); err != nil {
			b.Close()
			return fmt.Errorf("failed to apply batch: %w", err)
		}
		b.Close()
	}
	return nil
}

// Get reads one UTXO by outpoint.
func (s *UTXOStore) Get(outpoint string) (*common.UTXO, error) {
	value, closer, err := s.getShard(outpoint).Get([]byte(outpoint))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	var u common.UTXO
	if err := sonic.Unmarshal(value, &u); err != nil {
		return nil, fmt.Errorf("failed to decode utxo %s: %w", outpoint, err)
	}
	return &u, nil
}

// Delete removes one UTXO. Deleting a missing key is not an error.
func (s *UTXOStore) Delete(outpoint string) error {
	return s.getShard(outpoint).Delete([]byte(outpoint), pebble.Sync)
}

// Count returns the number of stored UTXOs.
func (s *UTXOStore) Count() (int, error) {
	var total int
	for i, db := range s.shards {
		iter, err := db.NewIter(nil)
		if err != nil {
			return 0, fmt.Errorf("failed to open iterator on shard %d: %w", i, err)
		}
		for iter.First(); iter.Valid(); iter.Next() {
			total++
		}
		if err := iter.Error(); err != nil {
			iter.Close()
			return 0, fmt.Errorf("iteration error on shard %d: %w", i, err)
		}
		iter.Close()
	}
	return total, nil
}

func (s *UTXOStore) Close() error {
	var firstErr error
	for _, db := range s.shards {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewMetaStore(dataDir string) (*MetaStore, error) {
	dbPath := filepath.Join(dataDir, DBDirMeta)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create meta directory: %w", err)
	}
	db, err := pebble.Open(dbPath, &pebble.Options{Logger: noopLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open meta store: %w", err)
	}
	return &MetaStore{db: db}, nil
}

func (m *MetaStore) Get(key []byte) ([]byte, error) {
	value, closer, err := m.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), value...), nil
}

func (m *MetaStore) Set(key, value []byte) error {
	return m.db.Set(key, value, pebble.Sync)
}

// DatasetVersion returns the monotonic counter bumped on every UTXO-set
// mutation. A fresh store starts at 0.
func (m *MetaStore) DatasetVersion() (uint64, error) {
	value, err := m.Get([]byte(datasetVersionKey))
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	version, err := strconv.ParseUint(string(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt dataset version %q: %w", value, err)
	}
	return version, nil
}

// BumpDatasetVersion increments the counter and returns the new value.
func (m *MetaStore) BumpDatasetVersion() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	version, err := m.DatasetVersion()
	if err != nil {
		return 0, err
	}
	version++
	if err := m.Set([]byte(datasetVersionKey), []byte(strconv.FormatUint(version, 10))); err != nil {
		return 0, err
	}
	return version, nil
}

func (m *MetaStore) Sync() error {
	return m.db.LogData(nil, pebble.Sync)
}

func (m *MetaStore) Close() error {
	if err := m.db.LogData(nil, pebble.Sync); err != nil {
		return err
	}
	return m.db.Close()
}
