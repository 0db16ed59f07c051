package synonym

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/turtacn/chemidr/pkg/errors"
)

// Store persists individual tables. Implementations must round-trip a table
// exactly: Load(Save(t)) equals t.
type Store interface {
	Save(ctx context.Context, name string, t Table) error
	Load(ctx context.Context, name string) (Table, error)
}

// Encode serializes a table as a JSON object. encoding/json writes map keys
// in sorted order, so equal tables encode to identical bytes.
func Encode(t Table) ([]byte, error) {
	if t == nil {
		t = Table{}
	}
	data, err := json.Marshal(map[string]int64(t))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode synonym table")
	}
	return data, nil
}

// Decode is the inverse of Encode.
func Decode(data []byte) (Table, error) {
	var m map[string]int64
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSynonymCacheCorrupt, "decode synonym table")
	}
	if m == nil {
		m = map[string]int64{}
	}
	return Table(m), nil
}

// FileStore keeps one JSON file per table under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// Save writes the table atomically through a temp file and rename.
func (s *FileStore) Save(_ context.Context, name string, t Table) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "create cache dir").WithDetail(s.Dir)
	}
	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeStorageError, "write synonym table")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "close synonym table")
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "rename synonym table")
	}
	return nil
}

// Load reads a table written by Save.
func (s *FileStore) Load(_ context.Context, name string) (Table, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeSynonymCacheMissing, "synonym table not cached").WithDetail(s.path(name))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "read synonym table")
	}
	return Decode(data)
}

// Persist saves every table of ix.
func Persist(ctx context.Context, store Store, ix *Index) error {
	for _, l := range ix.layers {
		if err := store.Save(ctx, l.name, l.table); err != nil {
			return err
		}
	}
	return nil
}

// Restore loads the named tables, in order, into a new Index.
func Restore(ctx context.Context, store Store, names []string) (*Index, error) {
	ix := NewIndex()
	for _, name := range names {
		t, err := store.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		ix.Add(name, t)
	}
	return ix, nil
}

//Personal.AI order the ending
