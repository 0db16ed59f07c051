// Package resolver provides the application service that turns chemical names
// into PubChem, FooDB and composite identifiers. It is the single resolution
// path shared by the CLI, the HTTP API and the queue worker.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/internal/infrastructure/pubchem"
	"github.com/turtacn/chemidr/pkg/errors"
)

// Service defines the resolution operations.
type Service interface {
	Resolve(ctx context.Context, input *ResolveInput) (chemical.ResolvedIdentifier, error)
	ResolveBatch(ctx context.Context, input *BatchInput) (*BatchResult, error)
	InChIKeys(ctx context.Context, input *InChIKeyInput) (*InChIKeyResult, error)
	CrossReferenceMeSH(ctx context.Context, mesh string) (chemical.MeSHRecord, error)
	FindStored(ctx context.Context, name string) (chemical.ResolvedIdentifier, error)
	ListRun(ctx context.Context, runID string) ([]chemical.ResolvedIdentifier, error)
}

// ResolveInput contains input for resolving one name.
type ResolveInput struct {
	Name         string
	UseRemote    bool
	UseLocal     bool
	WithInChIKey bool
}

// BatchInput contains input for resolving many names.
type BatchInput struct {
	Names        []string
	UseRemote    bool
	UseLocal     bool
	WithInChIKey bool
	// Source labels the run: an input file, "http", a job key.
	Source string
}

// BatchResult holds one result per input name, in input order.
type BatchResult struct {
	Run       chemical.Run                  `json:"run"`
	Results   []chemical.ResolvedIdentifier `json:"results"`
	Persisted bool                          `json:"persisted"`
}

// InChIKey result shapes.
const (
	ModeDict = "dict"
	ModeList = "list"
)

// InChIKeyInput contains input for a batch InChIKey lookup.
type InChIKeyInput struct {
	CIDs       []int64
	PrefixOnly bool
	Mode       string
}

// InChIKeyResult carries ByCID in dict mode and Ordered in list mode.
type InChIKeyResult struct {
	Mode    string                      `json:"mode"`
	ByCID   map[int64]string            `json:"by_cid,omitempty"`
	Ordered []chemical.Optional[string] `json:"ordered,omitempty"`
}

// Config tunes the service.
type Config struct {
	// Concurrency bounds in-flight resolutions during a batch.
	Concurrency int
	// InChIKeyPrefix keeps only the skeleton block of enriched InChIKeys.
	InChIKeyPrefix bool
}

// Option customises the service.
type Option func(*service)

func WithRemote(r RemoteLookup) Option            { return func(s *service) { s.remote = r } }
func WithLocal(l LocalLookup) Option              { return func(s *service) { s.local = l } }
func WithCache(c ResultCache) Option              { return func(s *service) { s.cache = c } }
func WithRepository(r chemical.Repository) Option { return func(s *service) { s.repo = r } }
func WithClock(now func() time.Time) Option       { return func(s *service) { s.now = now } }

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *service) {
		if m != nil {
			s.metrics = m
		}
	}
}

type service struct {
	cfg      Config
	assigner *chemical.CompositeKeyAssigner
	remote   RemoteLookup
	local    LocalLookup
	cache    ResultCache
	repo     chemical.Repository
	metrics  Metrics
	logger   logging.Logger
	now      func() time.Time
}

// NewService creates a resolver. Remote and local sources are optional; a
// query asking for a source that is not configured simply skips it.
func NewService(cfg Config, assigner *chemical.CompositeKeyAssigner, logger logging.Logger, opts ...Option) (Service, error) {
	if assigner == nil {
		return nil, errors.New(errors.ErrCodeValidation, "composite key assigner is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	s := &service{
		cfg:      cfg,
		assigner: assigner,
		metrics:  nopMetrics{},
		logger:   logger.Named("resolver"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Single and batch resolution
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) Resolve(ctx context.Context, input *ResolveInput) (chemical.ResolvedIdentifier, error) {
	if input == nil {
		return chemical.ResolvedIdentifier{}, errors.InvalidParam("input is required")
	}
	q, err := chemical.NewQuery(input.Name, input.UseRemote, input.UseLocal)
	if err != nil {
		return chemical.ResolvedIdentifier{}, err
	}

	results := []chemical.ResolvedIdentifier{s.resolve(ctx, q)}
	if input.WithInChIKey {
		s.enrich(ctx, results)
	}
	if err := ctx.Err(); err != nil {
		return results[0], errors.Wrap(err, errors.ErrCodeTimeout, "resolution interrupted")
	}
	return results[0], nil
}

func (s *service) ResolveBatch(ctx context.Context, input *BatchInput) (*BatchResult, error) {
	if input == nil || len(input.Names) == 0 {
		return nil, errors.InvalidParam("at least one name is required")
	}

	run := chemical.Run{ID: uuid.NewString(), Source: input.Source, StartedAt: s.now().UTC()}
	results := make([]chemical.ResolvedIdentifier, len(input.Names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, name := range input.Names {
		g.Go(func() error {
			q, err := chemical.NewQuery(name, input.UseRemote, input.UseLocal)
			if err != nil {
				// Blank rows still occupy a slot in the output.
				results[i] = chemical.ResolvedIdentifier{Query: name}
				return nil
			}
			results[i] = s.resolve(gctx, q)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "batch resolution interrupted")
	}

	if input.WithInChIKey {
		s.enrich(ctx, results)
	}

	run.FinishedAt = s.now().UTC()
	run.Summary = chemical.Summarize(results)
	s.reportCoverage(run)

	out := &BatchResult{Run: run, Results: results}
	if s.repo != nil {
		if err := s.persist(ctx, &run, results); err != nil {
			s.logger.Error("failed to persist run", logging.String("run_id", run.ID), logging.Err(err))
		} else {
			out.Persisted = true
		}
	}
	return out, nil
}

// resolve runs remote, local and composite steps for one query. Lookup
// failures leave fields absent; they never fail the call.
func (s *service) resolve(ctx context.Context, q chemical.Query) chemical.ResolvedIdentifier {
	start := s.now()
	key := cacheKey(q)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("result cache read failed", logging.Term(q.Raw()), logging.Err(err))
		} else if ok {
			// Keys are case and space folded; echo this caller's spelling.
			cached.Query = q.Raw()
			return cached
		}
	}

	out := chemical.ResolvedIdentifier{Query: q.Raw()}
	remoteFailed := false

	if q.UseRemote() && s.remote != nil {
		var rec chemical.Optional[chemical.RemoteRecord]
		rec, remoteFailed = s.lookupRemote(ctx, q.Raw())
		if r, ok := rec.Get(); ok {
			out.PubChemID = chemical.Some(r.ExternalID)
			if r.CanonicalName != "" {
				out.PubChemName = chemical.Some(r.CanonicalName)
			}
			if err := s.assigner.CheckPubChemID(r.ExternalID); err != nil {
				s.logger.Error("pubchem id inside foodb composite range", logging.Term(q.Raw()), logging.Err(err))
			}
		}
	}

	if q.UseLocal() && s.local != nil {
		out.FooDBID = s.local.Lookup(q.Raw())
	}

	out = s.assigner.Assign(out)
	s.metrics.ObserveResolution(outcome(out, remoteFailed), s.now().Sub(start))

	if s.cache != nil && !remoteFailed && ctx.Err() == nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.logger.Warn("result cache write failed", logging.Term(q.Raw()), logging.Err(err))
		}
	}
	return out
}

// lookupRemote tries each normalization variant in turn. The space-stripped
// variant is attempted when the first lookup errors or finds nothing. failed
// reports that the last attempt ended in an error rather than a clean miss.
func (s *service) lookupRemote(ctx context.Context, raw string) (rec chemical.Optional[chemical.RemoteRecord], failed bool) {
	var lastErr error
	for i, term := range chemical.Variants(raw) {
		if ctx.Err() != nil {
			break
		}
		rec, lastErr = s.remote.LookupName(ctx, term)
		found := lastErr == nil && rec.Present()
		if i > 0 {
			result := "miss"
			if found {
				result = "hit"
			}
			s.metrics.IncRemoteFallback(result)
		}
		if found {
			return rec, false
		}
		if lastErr != nil {
			s.logger.Debug("remote lookup attempt failed",
				logging.Term(term), logging.Int("attempt", i+1), logging.Err(lastErr))
		}
	}
	if lastErr != nil {
		s.logger.Warn("remote lookup failed, leaving pubchem fields unresolved",
			logging.Term(raw),
			logging.String("code", string(errors.GetCode(lastErr))),
			logging.Err(lastErr))
		return chemical.None[chemical.RemoteRecord](), true
	}
	return chemical.None[chemical.RemoteRecord](), false
}

// enrich fills InChIKey for every result holding a CID, in one chunked
// dict-mode request so upstream omissions cannot shift keys.
func (s *service) enrich(ctx context.Context, results []chemical.ResolvedIdentifier) {
	if s.remote == nil {
		return
	}
	seen := make(map[int64]struct{})
	var cids []int64
	for _, r := range results {
		cid, ok := r.PubChemID.Get()
		if !ok || r.InChIKey.Present() {
			continue
		}
		if _, dup := seen[cid]; !dup {
			seen[cid] = struct{}{}
			cids = append(cids, cid)
		}
	}
	if len(cids) == 0 {
		return
	}

	keys, err := s.remote.InChIKeyMap(ctx, cids, pubchem.InChIKeyOptions{PrefixOnly: s.cfg.InChIKeyPrefix})
	if err != nil {
		s.logger.Warn("inchikey enrichment incomplete",
			logging.Int("requested", len(cids)), logging.Int("received", len(keys)), logging.Err(err))
	}
	for i := range results {
		if cid, ok := results[i].PubChemID.Get(); ok {
			if key, hit := keys[cid]; hit {
				results[i].InChIKey = chemical.Some(key)
			}
		}
	}
}

func (s *service) reportCoverage(run chemical.Run) {
	sum := run.Summary
	ratio := func(n int) float64 {
		if sum.UniqueInputs == 0 {
			return 0
		}
		return float64(n) / float64(sum.UniqueInputs)
	}
	s.metrics.SetBatchCoverage("pubchem", ratio(sum.PubChemResolved))
	s.metrics.SetBatchCoverage("foodb", ratio(sum.FooDBResolved))
	s.metrics.SetBatchCoverage("composite", sum.Coverage())

	s.logger.Info("batch resolved",
		logging.String("run_id", run.ID),
		logging.String("source", run.Source),
		logging.Int("total", sum.Total),
		logging.Int("unique_inputs", sum.UniqueInputs),
		logging.Int("pubchem", sum.PubChemResolved),
		logging.Int("foodb", sum.FooDBResolved),
		logging.Int("composite", sum.UniqueComposite),
		logging.Float64("coverage", sum.Coverage()),
		logging.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))
}

func (s *service) persist(ctx context.Context, run *chemical.Run, results []chemical.ResolvedIdentifier) error {
	if err := s.repo.SaveRun(ctx, run); err != nil {
		return err
	}
	return s.repo.SaveResults(ctx, run.ID, results)
}

// ─────────────────────────────────────────────────────────────────────────────
// Direct lookups
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) InChIKeys(ctx context.Context, input *InChIKeyInput) (*InChIKeyResult, error) {
	if s.remote == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "remote lookups are disabled")
	}
	if input == nil || len(input.CIDs) == 0 {
		return nil, errors.InvalidParam("at least one CID is required")
	}
	opts := pubchem.InChIKeyOptions{PrefixOnly: input.PrefixOnly}

	switch input.Mode {
	case ModeList:
		ordered, err := s.remote.InChIKeyList(ctx, input.CIDs, opts)
		if err != nil {
			return nil, err
		}
		return &InChIKeyResult{Mode: ModeList, Ordered: ordered}, nil
	case ModeDict, "":
		byCID, err := s.remote.InChIKeyMap(ctx, input.CIDs, opts)
		if err != nil {
			return nil, err
		}
		return &InChIKeyResult{Mode: ModeDict, ByCID: byCID}, nil
	default:
		return nil, errors.InvalidParam(fmt.Sprintf("unknown inchikey mode %q", input.Mode))
	}
}

func (s *service) CrossReferenceMeSH(ctx context.Context, mesh string) (chemical.MeSHRecord, error) {
	if s.remote == nil {
		return chemical.MeSHRecord{}, errors.New(errors.ErrCodeServiceUnavailable, "remote lookups are disabled")
	}
	return s.remote.LookupMeSH(ctx, mesh)
}

func (s *service) FindStored(ctx context.Context, name string) (chemical.ResolvedIdentifier, error) {
	if s.repo == nil {
		return chemical.ResolvedIdentifier{}, errors.New(errors.ErrCodeServiceUnavailable, "result store is disabled")
	}
	key := chemical.LookupKey(name)
	if key == "" {
		return chemical.ResolvedIdentifier{}, errors.New(errors.ErrCodeInvalidQuery, "chemical name must not be blank")
	}
	return s.repo.FindByQuery(ctx, key)
}

func (s *service) ListRun(ctx context.Context, runID string) ([]chemical.ResolvedIdentifier, error) {
	if s.repo == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "result store is disabled")
	}
	if _, err := uuid.Parse(runID); err != nil {
		return nil, errors.InvalidParam("run id must be a UUID")
	}
	return s.repo.ListByRun(ctx, runID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func cacheKey(q chemical.Query) string {
	return fmt.Sprintf("resolve:%t:%t:%s", q.UseRemote(), q.UseLocal(), chemical.LookupKey(q.Raw()))
}

// Resolution outcomes used as metric labels.
const (
	OutcomePubChem    = "pubchem"
	OutcomeFooDB      = "foodb"
	OutcomeUnresolved = "unresolved"
	OutcomeFailed     = "remote_failed"
)

func outcome(r chemical.ResolvedIdentifier, remoteFailed bool) string {
	switch {
	case r.PubChemID.Present():
		return OutcomePubChem
	case r.FooDBID.Present():
		return OutcomeFooDB
	case remoteFailed:
		return OutcomeFailed
	default:
		return OutcomeUnresolved
	}
}

//Personal.AI order the ending
