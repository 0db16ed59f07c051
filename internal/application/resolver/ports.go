package resolver

import (
	"context"
	"time"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/pubchem"
)

// RemoteLookup is the subset of the PubChem client the resolver drives.
// *pubchem.Client satisfies it.
type RemoteLookup interface {
	LookupName(ctx context.Context, term string) (chemical.Optional[chemical.RemoteRecord], error)
	InChIKeyMap(ctx context.Context, cids []int64, opts pubchem.InChIKeyOptions) (map[int64]string, error)
	InChIKeyList(ctx context.Context, cids []int64, opts pubchem.InChIKeyOptions) ([]chemical.Optional[string], error)
	LookupMeSH(ctx context.Context, mesh string) (chemical.MeSHRecord, error)
}

// LocalLookup answers exact-match name lookups. *synonym.Index satisfies it.
type LocalLookup interface {
	Lookup(raw string) chemical.Optional[int64]
}

// ResultCache memoizes resolved identifiers. A miss is (zero, false, nil).
type ResultCache interface {
	Get(ctx context.Context, key string) (chemical.ResolvedIdentifier, bool, error)
	Set(ctx context.Context, key string, r chemical.ResolvedIdentifier) error
}

// Metrics receives resolution observations. *prometheus.AppMetrics
// satisfies it.
type Metrics interface {
	IncRemoteFallback(outcome string)
	ObserveResolution(outcome string, elapsed time.Duration)
	SetBatchCoverage(source string, ratio float64)
}

type nopMetrics struct{}

func (nopMetrics) IncRemoteFallback(string)                 {}
func (nopMetrics) ObserveResolution(string, time.Duration) {}
func (nopMetrics) SetBatchCoverage(string, float64)        {}

//Personal.AI order the ending
