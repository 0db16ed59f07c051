package synonym

import (
	"context"
	"io/fs"
	"time"

	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
)

// Metrics receives table sizes after an index is opened.
type Metrics interface {
	SetSynonymEntries(table string, n int)
}

// OpenOptions configures Open.
type OpenOptions struct {
	// Data holds the bulk CSV files. Unused when LoadCache is set.
	Data    fs.FS
	Sources []Source
	// Store persists built tables and serves them when LoadCache is set.
	// A nil Store disables persistence.
	Store     Store
	LoadCache bool
	Logger    logging.Logger
	Metrics   Metrics
}

// Open returns a ready Index. With LoadCache the persisted tables are read
// from Store and the bulk files are not touched; staleness is not detected.
// Otherwise the tables are built from Data and, when a Store is configured,
// written back for the next run.
func Open(ctx context.Context, opts OpenOptions) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("synonym")
	start := time.Now()

	var (
		ix  *Index
		err error
	)
	if opts.LoadCache && opts.Store != nil {
		names := make([]string, len(opts.Sources))
		for i, s := range opts.Sources {
			names[i] = s.Name
		}
		ix, err = Restore(ctx, opts.Store, names)
		if err != nil {
			return nil, err
		}
		logger.Info("synonym index loaded from cache", logging.Int("tables", len(names)))
	} else {
		ix, err = Build(ctx, opts.Data, opts.Sources, logger)
		if err != nil {
			return nil, err
		}
		if opts.Store != nil {
			if err := Persist(ctx, opts.Store, ix); err != nil {
				return nil, err
			}
		}
	}

	for _, name := range ix.Names() {
		if opts.Metrics != nil {
			opts.Metrics.SetSynonymEntries(name, len(ix.Table(name)))
		}
	}
	logger.Info("synonym index ready",
		logging.Int("entries", ix.Len()),
		logging.Duration("elapsed", time.Since(start)))
	return ix, nil
}

//Personal.AI order the ending
