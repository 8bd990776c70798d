package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// JSONStore persists the ledger as one JSON snapshot file, written atomically
// via a temp file and rename. Version checking gives commits compare-and-swap
// semantics against concurrent writers of the same file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a store backed by the given file path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Init writes an empty snapshot, failing if the file already exists.
func (s *JSONStore) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("snapshot %s already exists", s.path)
	}
	return s.write(&Snapshot{Version: 0})
}

// ReadSnapshot loads the current snapshot. A missing file is an empty ledger.
func (s *JSONStore) ReadSnapshot() (*Snapshot, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Snapshot{Version: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", s.path, err)
	}
	return &snap, nil
}

// CommitAtomic applies the writes against the stored state, provided it still
// matches base's version, and replaces the file in one rename. On any error
// the file is untouched.
func (s *JSONStore) CommitAtomic(base *Snapshot, writes []Write) error {
	current, err := s.ReadSnapshot()
	if err != nil {
		return err
	}
	if current.Version != base.Version {
		return fmt.Errorf("snapshot moved from v%d to v%d: %w", base.Version, current.Version, ErrConflict)
	}

	if err := apply(current, writes); err != nil {
		return err
	}
	current.Version++
	return s.write(current)
}

func (s *JSONStore) write(snap *Snapshot) error {
	snap.Meta = Meta{Storage: "json-snapshot", Timestamp: time.Now()}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing snapshot temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
