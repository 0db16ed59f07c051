package synonym

import (
	"context"
	"io/fs"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
)

// Hit is a successful lookup together with the table that answered it.
type Hit struct {
	ID     int64
	Source string
}

type layer struct {
	name  string
	table Table
}

// Index is an ordered stack of tables. Lookup consults them in order and the
// first table holding the key wins, so later tables only fill gaps left by
// earlier ones. An Index is read-only after construction and safe for
// concurrent lookups.
type Index struct {
	layers []layer
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add appends a table with lower priority than every table already added.
func (ix *Index) Add(name string, t Table) *Index {
	if t == nil {
		t = Table{}
	}
	ix.layers = append(ix.layers, layer{name: name, table: t})
	return ix
}

// Lookup normalizes raw with chemical.LookupKey and returns the FooDB id.
func (ix *Index) Lookup(raw string) chemical.Optional[int64] {
	if hit, ok := ix.Find(raw); ok {
		return chemical.Some(hit.ID)
	}
	return chemical.None[int64]()
}

// Find is Lookup that also reports the answering table.
func (ix *Index) Find(raw string) (Hit, bool) {
	key := chemical.LookupKey(raw)
	if key == "" {
		return Hit{}, false
	}
	for _, l := range ix.layers {
		if id, ok := l.table[key]; ok {
			return Hit{ID: id, Source: l.name}, true
		}
	}
	return Hit{}, false
}

// Names lists the tables in priority order.
func (ix *Index) Names() []string {
	out := make([]string, len(ix.layers))
	for i, l := range ix.layers {
		out[i] = l.name
	}
	return out
}

// Table returns the named table, or nil.
func (ix *Index) Table(name string) Table {
	for _, l := range ix.layers {
		if l.name == name {
			return l.table
		}
	}
	return nil
}

// Len counts distinct keys across all tables.
func (ix *Index) Len() int {
	seen := make(map[string]struct{})
	for _, l := range ix.layers {
		for k := range l.table {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// Equal reports whether both indexes hold the same tables in the same order.
func (ix *Index) Equal(other *Index) bool {
	if other == nil || len(ix.layers) != len(other.layers) {
		return false
	}
	for i, l := range ix.layers {
		o := other.layers[i]
		if l.name != o.name || !l.table.Equal(o.table) {
			return false
		}
	}
	return true
}

// Build reads every source from fsys in order.
func Build(ctx context.Context, fsys fs.FS, sources []Source, logger logging.Logger) (*Index, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ix := NewIndex()
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, stats, err := readSource(fsys, src)
		if err != nil {
			return nil, err
		}
		logger.Info("synonym table built",
			logging.String("table", src.Name),
			logging.String("file", src.File),
			logging.Int("rows", stats.Rows),
			logging.Int("skipped", stats.Skipped),
			logging.Int("bad_keys", stats.BadKeys),
			logging.Int("entries", len(table)))
		ix.Add(src.Name, table)
	}
	return ix, nil
}

//Personal.AI order the ending
