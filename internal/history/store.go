// Package history keeps past benchmark runs in a local bbolt database so
// results can be listed and compared across sessions.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/wesleyorama2/inferbench/internal/benchmark"
)

const (
	BucketRuns = "runs"

	// keyTimeFormat sorts lexically in time order.
	keyTimeFormat = "20060102T150405.000000000Z"
)

var (
	// ErrNotFound is returned by Get when no run matches.
	ErrNotFound = errors.New("run not found")

	// ErrAmbiguousID is returned by Get when an ID prefix matches several runs.
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")
)

// Record is one stored run.
type Record struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Model     string           `json:"model"`
	Config    benchmark.Config `json:"config"`
	Result    benchmark.Result `json:"result"`
}

type Store struct {
	db   *bbolt.DB
	path string
}

// DefaultPath returns ~/.inferbench/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".inferbench", "history.db"), nil
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append stores a run and returns its record. Resource samples are not
// persisted.
func (s *Store) Append(model string, cfg benchmark.Config, result *benchmark.Result) (Record, error) {
	if result == nil {
		return Record{}, errors.New("result cannot be nil")
	}

	rec := Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Model:     model,
		Config:    cfg,
		Result:    *result,
	}
	rec.Result.Samples = nil

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode run: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(BucketRuns)).Put(recordKey(rec), data)
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to store run: %w", err)
	}
	return rec, nil
}

// List returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BucketRuns)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %q: %w", k, err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Get finds a run by its ID or a unique ID prefix.
func (s *Store) Get(id string) (*Record, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	var found *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(BucketRuns)).ForEach(func(k, v []byte) error {
			sep := bytes.IndexByte(k, '-')
			if sep < 0 || !strings.HasPrefix(string(k[sep+1:]), id) {
				return nil
			}
			if found != nil {
				return ErrAmbiguousID
			}
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %q: %w", k, err)
			}
			found = &rec
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func recordKey(rec Record) []byte {
	return []byte(rec.Timestamp.Format(keyTimeFormat) + "-" + rec.ID)
}
