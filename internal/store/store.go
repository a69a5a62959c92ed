// Package store keeps the history of finished tracking sessions in a bbolt
// database under the config directory.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	FileName = "history.db"

	SessionsBucket = "sessions"
	IndexBucket    = "session_index"
	MetaBucket     = "meta"

	SchemaVersionKey     = "schema_version"
	CurrentSchemaVersion = 1
)

var ErrNotFound = errors.New("session not found")

// AppUsage is focused and unfocused time for one application.
type AppUsage struct {
	FocusedSeconds   float64 `json:"focused_seconds"`
	UnfocusedSeconds float64 `json:"unfocused_seconds"`
}

// Record is one finished session.
type Record struct {
	ID               string              `json:"id"`
	Start            time.Time           `json:"start"`
	End              time.Time           `json:"end"`
	FocusedSeconds   float64             `json:"focused_seconds"`
	UnfocusedSeconds float64             `json:"unfocused_seconds"`
	Apps             map[string]AppUsage `json:"apps,omitempty"`
	PomodorosDone    int                 `json:"pomodoros_done,omitempty"`
	// Mode is the activity source that produced the session.
	Mode string `json:"mode,omitempty"`
}

func (r Record) Focused() time.Duration {
	return time.Duration(r.FocusedSeconds * float64(time.Second))
}

func (r Record) Total() time.Duration {
	return time.Duration((r.FocusedSeconds + r.UnfocusedSeconds) * float64(time.Second))
}

type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the history database in dir.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, FileName)
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history database %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{SessionsBucket, IndexBucket, MetaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		version := make([]byte, 8)
		binary.BigEndian.PutUint64(version, CurrentSchemaVersion)
		return tx.Bucket([]byte(MetaBucket)).Put([]byte(SchemaVersionKey), version)
	})
}

// Save stores r, assigning an ID when it has none, and returns the stored
// record.
func (s *Store) Save(r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.End.IsZero() {
		r.End = time.Now()
	}
	if r.Start.IsZero() {
		r.Start = r.End
	}

	data, err := json.Marshal(r)
	if err != nil {
		return Record{}, fmt.Errorf("encode session: %w", err)
	}
	key := recordKey(r)

	err = s.db.Update(func(tx *bbolt.Tx) error {
		index := tx.Bucket([]byte(IndexBucket))
		sessions := tx.Bucket([]byte(SessionsBucket))
		// Re-saving an ID replaces its previous entry.
		if old := index.Get([]byte(r.ID)); old != nil {
			if err := sessions.Delete(old); err != nil {
				return err
			}
		}
		if err := sessions.Put(key, data); err != nil {
			return err
		}
		return index.Put([]byte(r.ID), key)
	})
	if err != nil {
		return Record{}, fmt.Errorf("save session %s: %w", r.ID, err)
	}
	return r, nil
}

func (s *Store) Get(id string) (Record, error) {
	var r Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(IndexBucket)).Get([]byte(id))
		if key == nil {
			return ErrNotFound
		}
		data := tx.Bucket([]byte(SessionsBucket)).Get(key)
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &r)
	})
	if err != nil {
		return Record{}, err
	}
	return r, nil
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(SessionsBucket)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode session %x: %w", k, err)
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		index := tx.Bucket([]byte(IndexBucket))
		key := index.Get([]byte(id))
		if key == nil {
			return ErrNotFound
		}
		if err := tx.Bucket([]byte(SessionsBucket)).Delete(key); err != nil {
			return err
		}
		return index.Delete([]byte(id))
	})
}

func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(SessionsBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// recordKey orders sessions by start time; the ID suffix keeps keys unique.
func recordKey(r Record) []byte {
	key := make([]byte, 8, 8+len(r.ID))
	binary.BigEndian.PutUint64(key, uint64(r.Start.UnixNano()))
	return append(key, r.ID...)
}
