package chemical

import (
	"github.com/turtacn/chemidr/pkg/errors"
)

// CompositeKeyAssigner folds PubChem CIDs and FooDB ids into one id space.
// PubChem ids are used verbatim; FooDB ids are shifted by maxPubChemIndex,
// which must exceed every real CID for the two ranges to stay disjoint.
type CompositeKeyAssigner struct {
	maxPubChemIndex int64
}

// NewCompositeKeyAssigner validates the offset and returns an assigner.
func NewCompositeKeyAssigner(maxPubChemIndex int64) (*CompositeKeyAssigner, error) {
	if maxPubChemIndex <= 0 {
		return nil, errors.Newf(errors.ErrCodeCompositeOffsetLow,
			"max pubchem index must be positive, got %d", maxPubChemIndex)
	}
	return &CompositeKeyAssigner{maxPubChemIndex: maxPubChemIndex}, nil
}

// Offset returns the configured MAX_PUBCHEM_INDEX.
func (a *CompositeKeyAssigner) Offset() int64 { return a.maxPubChemIndex }

// Assign returns r with CompositeID set:
//
//	pubchem present          → pubchemId
//	pubchem absent, foodb    → foodbId + offset
//	both absent              → absent
func (a *CompositeKeyAssigner) Assign(r ResolvedIdentifier) ResolvedIdentifier {
	switch {
	case r.PubChemID.Present():
		r.CompositeID = r.PubChemID
	case r.FooDBID.Present():
		id, _ := r.FooDBID.Get()
		r.CompositeID = Some(id + a.maxPubChemIndex)
	default:
		r.CompositeID = None[int64]()
	}
	return r
}

// Source reports which namespace a composite id belongs to and the original id.
func (a *CompositeKeyAssigner) Source(compositeID int64) (SourceTag, int64) {
	if compositeID >= a.maxPubChemIndex {
		return SourceFooDB, compositeID - a.maxPubChemIndex
	}
	return SourcePubChemCID, compositeID
}

// CheckPubChemID reports an error when cid reaches into the FooDB range,
// meaning the offset has to be raised.
func (a *CompositeKeyAssigner) CheckPubChemID(cid int64) error {
	if cid >= a.maxPubChemIndex {
		return errors.Newf(errors.ErrCodeCompositeOffsetLow,
			"pubchem cid %d reaches max pubchem index %d", cid, a.maxPubChemIndex)
	}
	return nil
}

//Personal.AI order the ending
