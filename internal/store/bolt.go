package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"go.klb.dev/clipflow/internal/history"
)

// BoltFile is the bbolt database file name under the data directory.
const BoltFile = "history.bolt"

var historyBucket = []byte("history")

// Bolt keeps one JSON-encoded record per key, keyed by big-endian position.
type Bolt struct {
	db       *bolt.DB
	path     string
	maxItems int
}

// OpenBolt opens (creating if needed) dataDir/history.bolt.
func OpenBolt(dataDir string, maxItems int) (*Bolt, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, BoltFile)
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Bolt{db: db, path: path, maxItems: maxItems}, nil
}

func (s *Bolt) Kind() string { return KindBolt }

func (s *Bolt) Load(_ context.Context) *history.History {
	var recs []record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var r record
			if err := json.Unmarshal(v, &r); err != nil {
				slog.Warn("skipping invalid history item", "store", KindBolt, "key", k, "err", err)
				return nil
			}
			recs = append(recs, r)
			return nil
		})
	})
	if err != nil {
		slog.Error("error loading history from bolt", "err", err)
		return empty(s.maxItems)
	}
	return build(KindBolt, s.maxItems, recs)
}

func (s *Bolt) Save(_ context.Context, snap history.Snapshot) error {
	recs := toRecords(snap)
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(historyBucket); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(historyBucket)
		if err != nil {
			return err
		}
		for i, r := range recs {
			v, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := b.Put(positionKey(i), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	slog.Debug("saved history", "store", KindBolt, "items", len(recs))
	return nil
}

func (s *Bolt) Clear(_ context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(historyBucket); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(historyBucket)
		return err
	})
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	slog.Info("bolt history cleared", "path", s.path)
	return nil
}

func (s *Bolt) Close() error { return s.db.Close() }

func positionKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}
