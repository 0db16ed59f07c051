// Package repositories holds the PostgreSQL implementations of domain
// repositories.
package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

// DBTX is satisfied by *pgxpool.Pool and by pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ResolutionRepository implements chemical.Repository.
type ResolutionRepository struct {
	db     DBTX
	logger logging.Logger
}

var _ chemical.Repository = (*ResolutionRepository)(nil)

// NewResolutionRepository returns a repository over db.
func NewResolutionRepository(db DBTX, log logging.Logger) *ResolutionRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ResolutionRepository{db: db, logger: log}
}

const upsertRunSQL = `
INSERT INTO resolution_runs
    (id, source, started_at, finished_at, total, unique_inputs, pubchem_resolved, foodb_resolved, unique_composite)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    source = EXCLUDED.source,
    finished_at = EXCLUDED.finished_at,
    total = EXCLUDED.total,
    unique_inputs = EXCLUDED.unique_inputs,
    pubchem_resolved = EXCLUDED.pubchem_resolved,
    foodb_resolved = EXCLUDED.foodb_resolved,
    unique_composite = EXCLUDED.unique_composite`

// SaveRun upserts the run header.
func (r *ResolutionRepository) SaveRun(ctx context.Context, run *chemical.Run) error {
	if run == nil || run.ID == "" {
		return errors.InvalidParam("run id is required")
	}
	s := run.Summary
	_, err := r.db.Exec(ctx, upsertRunSQL,
		run.ID, run.Source, run.StartedAt, run.FinishedAt,
		s.Total, s.UniqueInputs, s.PubChemResolved, s.FooDBResolved, s.UniqueComposite)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save run").WithDetail(run.ID)
	}
	return nil
}

const insertResultSQL = `
INSERT INTO resolved_identifiers
    (run_id, position, query, query_key, pubchem_id, pubchem_name, foodb_id, inchikey, composite_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (run_id, position) DO UPDATE SET
    query = EXCLUDED.query,
    query_key = EXCLUDED.query_key,
    pubchem_id = EXCLUDED.pubchem_id,
    pubchem_name = EXCLUDED.pubchem_name,
    foodb_id = EXCLUDED.foodb_id,
    inchikey = EXCLUDED.inchikey,
    composite_id = EXCLUDED.composite_id`

// SaveResults writes results in one transaction, keyed by input position.
func (r *ResolutionRepository) SaveResults(ctx context.Context, runID string, results []chemical.ResolvedIdentifier) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !stderrors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error("rollback failed", logging.String("run_id", runID), logging.Err(rbErr))
			}
		}
	}()

	for i, res := range results {
		if _, err = tx.Exec(ctx, insertResultSQL,
			runID, i, res.Query, chemical.LookupKey(res.Query),
			res.PubChemID.Ptr(), res.PubChemName.Ptr(), res.FooDBID.Ptr(), res.InChIKey.Ptr(), res.CompositeID.Ptr(),
		); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save result").WithDetail(res.Query)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit results")
	}
	r.logger.Debug("results saved", logging.String("run_id", runID), logging.Int("count", len(results)))
	return nil
}

const selectResultColumns = `query, pubchem_id, pubchem_name, foodb_id, inchikey, composite_id`

// FindByQuery returns the most recent result whose normalized query matches.
func (r *ResolutionRepository) FindByQuery(ctx context.Context, query string) (chemical.ResolvedIdentifier, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+selectResultColumns+` FROM resolved_identifiers
		 WHERE query_key = $1 ORDER BY created_at DESC LIMIT 1`,
		chemical.LookupKey(query))
	res, err := scanResult(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return chemical.ResolvedIdentifier{}, errors.NotFound("no stored result").WithDetail(query)
	}
	if err != nil {
		return chemical.ResolvedIdentifier{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to find result")
	}
	return res, nil
}

// ListByRun returns a run's results in input order.
func (r *ResolutionRepository) ListByRun(ctx context.Context, runID string) ([]chemical.ResolvedIdentifier, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+selectResultColumns+` FROM resolved_identifiers
		 WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list results")
	}
	defer rows.Close()

	var out []chemical.ResolvedIdentifier
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan result")
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate results")
	}
	if len(out) == 0 {
		return nil, errors.NotFound("run has no results").WithDetail(runID)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(s scanner) (chemical.ResolvedIdentifier, error) {
	var (
		res                        chemical.ResolvedIdentifier
		pubchemID, foodbID, compID *int64
		pubchemName, inchikey      *string
	)
	if err := s.Scan(&res.Query, &pubchemID, &pubchemName, &foodbID, &inchikey, &compID); err != nil {
		return res, err
	}
	res.PubChemID = chemical.OptionalFromPtr(pubchemID)
	res.PubChemName = chemical.OptionalFromPtr(pubchemName)
	res.FooDBID = chemical.OptionalFromPtr(foodbID)
	res.InChIKey = chemical.OptionalFromPtr(inchikey)
	res.CompositeID = chemical.OptionalFromPtr(compID)
	return res, nil
}

//Personal.AI order the ending
