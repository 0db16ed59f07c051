package pubchem

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/pkg/errors"
)

// NCBI namespace used by PC-Substance XML.
const ncbiNS = "http://www.ncbi.nlm.nih.gov"

type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// LookupMeSH cross-references a MeSH id to a PubChem substance and, through
// it, a compound. The first SID from an Entrez pcsubstance search is used;
// its substance record supplies the first PC-CompoundType_id_cid. Each hop
// that finds nothing leaves the remaining ids absent.
func (c *Client) LookupMeSH(ctx context.Context, mesh string) (chemical.MeSHRecord, error) {
	rec := chemical.MeSHRecord{MeSH: mesh, SID: chemical.None[int64](), CID: chemical.None[int64]()}
	mesh = strings.TrimSpace(mesh)
	if mesh == "" {
		return rec, errors.New(errors.ErrCodeInvalidQuery, "empty MeSH id")
	}

	sid, ok, err := c.searchSubstance(ctx, mesh)
	if err != nil || !ok {
		return rec, err
	}
	rec.SID = chemical.Some(sid)

	cid, ok, err := c.substanceCID(ctx, sid)
	if err != nil {
		return rec, err
	}
	if ok {
		rec.CID = chemical.Some(cid)
	}
	return rec, nil
}

func (c *Client) searchSubstance(ctx context.Context, mesh string) (int64, bool, error) {
	q := url.Values{}
	q.Set("db", "pcsubstance")
	q.Set("term", mesh)
	q.Set("retmode", "json")
	if c.cfg.APIKey != "" {
		q.Set("api_key", c.cfg.APIKey)
	}
	rawURL := fmt.Sprintf("%s/esearch.fcgi?%s", c.cfg.EntrezURL, q.Encode())

	body, found, err := c.fetch(ctx, EndpointESearch, rawURL)
	if err != nil || !found {
		return 0, false, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeRemoteParseError, "decode esearch result").WithDetail(mesh)
	}
	count, _ := strconv.Atoi(resp.ESearchResult.Count)
	if count == 0 || len(resp.ESearchResult.IDList) == 0 {
		return 0, false, nil
	}
	sid, err := parseID(resp.ESearchResult.IDList[0])
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeRemoteParseError, "invalid SID").WithDetail(resp.ESearchResult.IDList[0])
	}
	return sid, true, nil
}

func (c *Client) substanceCID(ctx context.Context, sid int64) (int64, bool, error) {
	rawURL := fmt.Sprintf("%s/substance/sid/%d/xml", c.cfg.BaseURL, sid)
	body, found, err := c.fetch(ctx, EndpointSubstance, rawURL)
	if err != nil || !found {
		return 0, false, err
	}

	values, err := firstElements(body, ncbiNS, "PC-CompoundType_id_cid")
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeRemoteParseError, "decode substance xml").WithDetail(strconv.FormatInt(sid, 10))
	}
	text, ok := values["PC-CompoundType_id_cid"]
	if !ok {
		return 0, false, nil
	}
	cid, err := parseID(text)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeRemoteParseError, "invalid CID").WithDetail(text)
	}
	return cid, true, nil
}

//Personal.AI order the ending
