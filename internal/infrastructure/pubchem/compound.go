package pubchem

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

// PUG-REST XML namespace for synonym responses.
const pugRestNS = "http://pubchem.ncbi.nlm.nih.gov/pug_rest"

// ─────────────────────────────────────────────────────────────────────────────
// Name → CID + preferred synonym
// ─────────────────────────────────────────────────────────────────────────────

// LookupName queries compound/name/{term}/synonyms/XML. term is expected to
// be a normalized remote term; a literal "%20" is kept as an encoded space.
// The first CID and first Synonym in the document form the record, with the
// synonym lowercased. A 404 yields an absent record and no error.
func (c *Client) LookupName(ctx context.Context, term string) (chemical.Optional[chemical.RemoteRecord], error) {
	none := chemical.None[chemical.RemoteRecord]()
	if term == "" {
		return none, errors.New(errors.ErrCodeInvalidQuery, "empty lookup term")
	}

	rawURL := fmt.Sprintf("%s/compound/name/%s/synonyms/XML", c.cfg.BaseURL, escapeTerm(term))
	body, found, err := c.fetch(ctx, EndpointName, rawURL)
	if err != nil || !found {
		return none, err
	}

	values, err := firstElements(body, pugRestNS, "CID", "Synonym")
	if err != nil {
		return none, errors.Wrap(err, errors.ErrCodeRemoteParseError, "decode synonyms xml").WithDetail(term)
	}
	cidText, ok := values["CID"]
	if !ok {
		return none, errors.New(errors.ErrCodeRemoteParseError, "synonyms response has no CID").WithDetail(term)
	}
	cid, err := parseID(cidText)
	if err != nil {
		return none, errors.Wrap(err, errors.ErrCodeRemoteParseError, "invalid CID").WithDetail(cidText)
	}

	return chemical.Some(chemical.RemoteRecord{
		ExternalID:    cid,
		CanonicalName: strings.ToLower(values["Synonym"]),
		Source:        chemical.SourcePubChemCID,
	}), nil
}

// escapeTerm path-escapes term while keeping an already encoded "%20" as a
// single encoded space.
func escapeTerm(term string) string {
	return url.PathEscape(strings.ReplaceAll(term, "%20", " "))
}

// parseID accepts integral ids, including the "65036.0" float form.
func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("non-integral id %q", s)
	}
	return int64(f), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CID → InChIKey
// ─────────────────────────────────────────────────────────────────────────────

// InChIKeyOptions tunes the batch InChIKey lookup.
type InChIKeyOptions struct {
	// PrefixOnly keeps the first hyphen-separated block (the skeleton hash).
	PrefixOnly bool
}

type propertyTable struct {
	PropertyTable struct {
		Properties []struct {
			CID      int64  `json:"CID"`
			InChIKey string `json:"InChIKey"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

// InChIKeyMap returns CID → InChIKey for every CID the upstream answered.
// CIDs are sent in even chunks of at most BatchSize. Missing CIDs are simply
// absent from the map.
func (c *Client) InChIKeyMap(ctx context.Context, cids []int64, opts InChIKeyOptions) (map[int64]string, error) {
	out := make(map[int64]string, len(cids))
	for _, chunk := range Chunk(cids, c.cfg.BatchSize) {
		props, err := c.fetchInChIKeys(ctx, chunk)
		if err != nil {
			return out, err
		}
		for cid, key := range props {
			if opts.PrefixOnly {
				key = inchiKeyPrefix(key)
			}
			out[cid] = key
		}
	}
	return out, nil
}

// InChIKeyList returns one entry per input CID, in input order. Entries are
// matched to the response by CID, so an upstream omission leaves an absent
// slot instead of shifting later keys.
func (c *Client) InChIKeyList(ctx context.Context, cids []int64, opts InChIKeyOptions) ([]chemical.Optional[string], error) {
	byCID, err := c.InChIKeyMap(ctx, cids, opts)
	if err != nil {
		return nil, err
	}
	out := make([]chemical.Optional[string], len(cids))
	missing := 0
	for i, cid := range cids {
		if key, ok := byCID[cid]; ok {
			out[i] = chemical.Some(key)
		} else {
			missing++
		}
	}
	if missing > 0 {
		c.logger.Warn("upstream omitted CIDs from InChIKey response",
			logging.Int("requested", len(cids)), logging.Int("missing", missing))
	}
	return out, nil
}

func (c *Client) fetchInChIKeys(ctx context.Context, chunk []int64) (map[int64]string, error) {
	ids := make([]string, len(chunk))
	for i, cid := range chunk {
		ids[i] = strconv.FormatInt(cid, 10)
	}
	rawURL := fmt.Sprintf("%s/compound/cid/%s/property/InChIKey/JSON", c.cfg.BaseURL, strings.Join(ids, ","))

	body, found, err := c.fetch(ctx, EndpointInChIKey, rawURL)
	if err != nil || !found {
		return nil, err
	}

	var table propertyTable
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteParseError, "decode property table")
	}
	out := make(map[int64]string, len(table.PropertyTable.Properties))
	for _, p := range table.PropertyTable.Properties {
		out[p.CID] = p.InChIKey
	}
	return out, nil
}

func inchiKeyPrefix(key string) string {
	prefix, _, _ := strings.Cut(key, "-")
	return prefix
}

// Chunk splits ids into the fewest groups of at most limit elements, with
// group sizes differing by at most one (75+75 rather than 100+50).
func Chunk(ids []int64, limit int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = len(ids)
	}
	n := (len(ids) + limit - 1) / limit
	base, extra := len(ids)/n, len(ids)%n

	out := make([][]int64, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		out = append(out, ids[start:start+size])
		start += size
	}
	return out
}

//Personal.AI order the ending
