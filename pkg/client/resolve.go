package client

import (
	"context"
	"net/url"
	"time"
)

// Identifier is one resolved chemical name. Nil fields were not resolved.
type Identifier struct {
	Query       string  `json:"query"`
	PubChemID   *int64  `json:"pubchem_id"`
	PubChemName *string `json:"pubchem_name"`
	FooDBID     *int64  `json:"foodb_id"`
	InChIKey    *string `json:"inchikey"`
	CompositeID *int64  `json:"composite_id"`
}

// Resolved reports whether any identifier was found.
func (i *Identifier) Resolved() bool {
	return i.CompositeID != nil
}

// Run describes one batch resolution.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    Summary   `json:"summary"`
}

// Summary holds the coverage counts of a run.
type Summary struct {
	Total           int `json:"total"`
	UniqueInputs    int `json:"unique_inputs"`
	PubChemResolved int `json:"pubchem_resolved"`
	FooDBResolved   int `json:"foodb_resolved"`
	UniqueComposite int `json:"unique_composite"`
}

// BatchResult is returned by ResolveBatch. Results follow input order.
type BatchResult struct {
	Run       Run          `json:"run"`
	Results   []Identifier `json:"results"`
	Persisted bool         `json:"persisted"`
}

// ResolveOptions selects sources. Nil switches use the server defaults.
type ResolveOptions struct {
	UseRemote    *bool
	UseLocal     *bool
	WithInChIKey bool
}

type resolveRequest struct {
	Name         string   `json:"name,omitempty"`
	Names        []string `json:"names,omitempty"`
	UseRemote    *bool    `json:"use_remote,omitempty"`
	UseLocal     *bool    `json:"use_local,omitempty"`
	WithInChIKey bool     `json:"with_inchikey,omitempty"`
}

func newResolveRequest(opts *ResolveOptions) resolveRequest {
	if opts == nil {
		return resolveRequest{}
	}
	return resolveRequest{UseRemote: opts.UseRemote, UseLocal: opts.UseLocal, WithInChIKey: opts.WithInChIKey}
}

// Resolve resolves a single name.
func (c *Client) Resolve(ctx context.Context, name string, opts *ResolveOptions) (*Identifier, error) {
	req := newResolveRequest(opts)
	req.Name = name
	var out Identifier
	if err := c.post(ctx, "/api/v1/resolve", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveBatch resolves names synchronously. The server caps the batch size;
// use SubmitJob for larger inputs.
func (c *Client) ResolveBatch(ctx context.Context, names []string, opts *ResolveOptions) (*BatchResult, error) {
	req := newResolveRequest(opts)
	req.Names = names
	var out BatchResult
	if err := c.post(ctx, "/api/v1/resolve", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitJob enqueues names for the worker and returns the job's request id.
func (c *Client) SubmitJob(ctx context.Context, names []string, opts *ResolveOptions) (string, error) {
	req := newResolveRequest(opts)
	req.Names = names
	var out struct {
		RequestID string `json:"request_id"`
	}
	if err := c.post(ctx, "/api/v1/jobs", req, &out); err != nil {
		return "", err
	}
	return out.RequestID, nil
}

// Result modes accepted by InChIKeys.
const (
	ModeDict = "dict"
	ModeList = "list"
)

// InChIKeyResult holds keys by CID (dict mode) or in input order (list mode).
type InChIKeyResult struct {
	Mode    string           `json:"mode"`
	ByCID   map[int64]string `json:"by_cid,omitempty"`
	Ordered []*string        `json:"ordered,omitempty"`
}

// InChIKeys fetches InChIKeys for PubChem CIDs.
func (c *Client) InChIKeys(ctx context.Context, cids []int64, prefixOnly bool, mode string) (*InChIKeyResult, error) {
	req := struct {
		CIDs       []int64 `json:"cids"`
		PrefixOnly bool    `json:"prefix_only,omitempty"`
		Mode       string  `json:"mode,omitempty"`
	}{cids, prefixOnly, mode}
	var out InChIKeyResult
	if err := c.post(ctx, "/api/v1/inchikeys", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MeSHRecord links a MeSH descriptor to PubChem.
type MeSHRecord struct {
	MeSH string `json:"mesh"`
	SID  *int64 `json:"sid"`
	CID  *int64 `json:"cid"`
}

// MeSH cross-references a MeSH descriptor id.
func (c *Client) MeSH(ctx context.Context, meshID string) (*MeSHRecord, error) {
	var out MeSHRecord
	if err := c.get(ctx, "/api/v1/mesh/"+url.PathEscape(meshID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindStored returns the latest stored resolution of query.
func (c *Client) FindStored(ctx context.Context, query string) (*Identifier, error) {
	var out Identifier
	if err := c.get(ctx, "/api/v1/results?query="+url.QueryEscape(query), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRun returns the stored results of one run.
func (c *Client) ListRun(ctx context.Context, runID string) ([]Identifier, error) {
	var out struct {
		RunID   string       `json:"run_id"`
		Results []Identifier `json:"results"`
	}
	if err := c.get(ctx, "/api/v1/runs/"+url.PathEscape(runID), &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Health is the liveness probe body.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Health calls /healthz.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.get(ctx, "/healthz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
