// Package chemical holds the domain model for chemical identifier
// resolution: queries, normalized terms, remote records, resolved
// identifiers and the composite key that reconciles PubChem and FooDB ids.
package chemical

import (
	"strings"

	"github.com/turtacn/chemidr/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Source tags
// ─────────────────────────────────────────────────────────────────────────────

// SourceTag names the id namespace a RemoteRecord came from.
type SourceTag string

const (
	SourcePubChemCID SourceTag = "pubchem_cid"
	SourcePubChemSID SourceTag = "pubchem_sid"
	SourceMeSH       SourceTag = "mesh"
	SourceFooDB      SourceTag = "foodb"
)

// ─────────────────────────────────────────────────────────────────────────────
// ChemicalQuery
// ─────────────────────────────────────────────────────────────────────────────

// Query is a raw chemical name or SMILES plus which sources to consult.
// It is immutable once constructed.
type Query struct {
	raw       string
	useRemote bool
	useLocal  bool
}

// NewQuery constructs a Query. Blank input is rejected.
func NewQuery(raw string, useRemote, useLocal bool) (Query, error) {
	if strings.TrimSpace(raw) == "" {
		return Query{}, errors.New(errors.ErrCodeInvalidQuery, "chemical name must not be blank")
	}
	return Query{raw: raw, useRemote: useRemote, useLocal: useLocal}, nil
}

func (q Query) Raw() string     { return q.raw }
func (q Query) UseRemote() bool { return q.useRemote }
func (q Query) UseLocal() bool  { return q.useLocal }

// ─────────────────────────────────────────────────────────────────────────────
// RemoteRecord
// ─────────────────────────────────────────────────────────────────────────────

// RemoteRecord is the result of a successful external lookup.
type RemoteRecord struct {
	ExternalID    int64     `json:"external_id"`
	CanonicalName string    `json:"canonical_name,omitempty"`
	Source        SourceTag `json:"source"`
}

// MeSHRecord is the outcome of a MeSH → SID → CID cross-reference. Either id
// may be absent when the chain stops early.
type MeSHRecord struct {
	MeSH string          `json:"mesh"`
	SID  Optional[int64] `json:"sid"`
	CID  Optional[int64] `json:"cid"`
}

// Records flattens the chain into tagged RemoteRecords.
func (m MeSHRecord) Records() []RemoteRecord {
	var out []RemoteRecord
	if sid, ok := m.SID.Get(); ok {
		out = append(out, RemoteRecord{ExternalID: sid, CanonicalName: m.MeSH, Source: SourcePubChemSID})
	}
	if cid, ok := m.CID.Get(); ok {
		out = append(out, RemoteRecord{ExternalID: cid, CanonicalName: m.MeSH, Source: SourcePubChemCID})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// ResolvedIdentifier
// ─────────────────────────────────────────────────────────────────────────────

// ResolvedIdentifier is the per-input output of a resolution run. Every id is
// optional; an entry with nothing present is a valid, unresolved result.
type ResolvedIdentifier struct {
	Query       string           `json:"query"`
	PubChemID   Optional[int64]  `json:"pubchem_id"`
	PubChemName Optional[string] `json:"pubchem_name"`
	FooDBID     Optional[int64]  `json:"foodb_id"`
	InChIKey    Optional[string] `json:"inchikey"`
	CompositeID Optional[int64]  `json:"composite_id"`
}

// Resolved reports whether any identifier was found.
func (r ResolvedIdentifier) Resolved() bool {
	return r.PubChemID.Present() || r.FooDBID.Present()
}

//Personal.AI order the ending
