package pubchem

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

const synonymsXML = `<?xml version="1.0"?>
<InformationList xmlns="http://pubchem.ncbi.nlm.nih.gov/pug_rest" xmlns:xs="http://www.w3.org/2001/XMLSchema-instance">
  <Information>
    <CID>5280934</CID>
    <Synonym>alpha-Linolenic acid</Synonym>
    <Synonym>linolenic acid</Synonym>
  </Information>
  <Information>
    <CID>1</CID>
  </Information>
</InformationList>`

const substanceXML = `<?xml version="1.0"?>
<PC-Substances xmlns="http://www.ncbi.nlm.nih.gov">
  <PC-Substance>
    <PC-Substance_sid><PC-ID><PC-ID_id>3480</PC-ID_id></PC-ID></PC-Substance_sid>
    <PC-Substance_compound>
      <PC-Compounds>
        <PC-Compound><PC-Compound_id><PC-CompoundType><PC-CompoundType_id>
          <PC-CompoundType_id_cid>2244</PC-CompoundType_id_cid>
        </PC-CompoundType_id></PC-CompoundType></PC-Compound_id></PC-Compound>
        <PC-Compound><PC-Compound_id><PC-CompoundType><PC-CompoundType_id>
          <PC-CompoundType_id_cid>9999</PC-CompoundType_id_cid>
        </PC-CompoundType_id></PC-CompoundType></PC-Compound_id></PC-Compound>
      </PC-Compounds>
    </PC-Substance_compound>
  </PC-Substance>
</PC-Substances>`

// recordingMetrics counts retry observations.
type recordingMetrics struct {
	mu        sync.Mutex
	requests  int
	retries   map[int]int
	exhausted int
}

func (m *recordingMetrics) ObserveRemoteRequest(string, int, time.Duration) {
	m.mu.Lock()
	m.requests++
	m.mu.Unlock()
}

func (m *recordingMetrics) IncRemoteRetry(_ string, status int) {
	m.mu.Lock()
	if m.retries == nil {
		m.retries = map[int]int{}
	}
	m.retries[status]++
	m.mu.Unlock()
}

func (m *recordingMetrics) IncRemoteRetryExhausted(string) {
	m.mu.Lock()
	m.exhausted++
	m.mu.Unlock()
}

func newTestClient(t *testing.T, h http.Handler, mutate ...func(*Config)) (*Client, *recordingMetrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := Config{
		BaseURL:   srv.URL,
		EntrezURL: srv.URL + "/entrez",
		RateLimit: 1000,
		Burst:     100,
		Retry: RetryPolicy{
			MaxAttempts:      4,
			RateLimitedDelay: time.Millisecond,
			BusyDelay:        2 * time.Millisecond,
		},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	metrics := &recordingMetrics{}
	return NewClient(cfg, logging.NewNopLogger(), WithMetrics(metrics)), metrics
}

// ─────────────────────────────────────────────────────────────────────────────
// Name lookup
// ─────────────────────────────────────────────────────────────────────────────

func TestLookupName_Success(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, synonymsXML)
	}))

	rec, err := c.LookupName(context.Background(), "alpha-linolenic%20acid")
	require.NoError(t, err)

	got, ok := rec.Get()
	require.True(t, ok)
	assert.Equal(t, int64(5280934), got.ExternalID)
	assert.Equal(t, "alpha-linolenic acid", got.CanonicalName)
	assert.Equal(t, chemical.SourcePubChemCID, got.Source)
	assert.Equal(t, "/compound/name/alpha-linolenic%20acid/synonyms/XML", gotPath)
}

func TestLookupName_EscapesReservedCharacters(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, synonymsXML)
	}))

	_, err := c.LookupName(context.Background(), "omega-3?#fatty")
	require.NoError(t, err)
	assert.Equal(t, "/compound/name/omega-3%3F%23fatty/synonyms/XML", gotPath)
}

func TestLookupName_NotFoundIsAbsent(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	rec, err := c.LookupName(context.Background(), "unobtainium")
	require.NoError(t, err)
	assert.False(t, rec.Present())
}

func TestLookupName_OtherStatusFails(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec, err := c.LookupName(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRemoteLookupFailed))
	assert.False(t, rec.Present())
}

func TestLookupName_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<InformationList xmlns="http://pubchem.ncbi.nlm.nih.gov/pug_rest"><Information><Synonym>x</Synonym></Information></InformationList>`)
	}))

	_, err := c.LookupName(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRemoteParseError))
}

func TestLookupName_WrongNamespaceIgnored(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<InformationList><Information><CID>7</CID></Information></InformationList>`)
	}))

	_, err := c.LookupName(context.Background(), "x")
	assert.True(t, errors.IsCode(err, errors.ErrCodeRemoteParseError))
}

func TestLookupName_EmptyTerm(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	_, err := c.LookupName(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidQuery))
}

// ─────────────────────────────────────────────────────────────────────────────
// Retry policy
// ─────────────────────────────────────────────────────────────────────────────

func TestFetch_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	c, metrics := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			fmt.Fprint(w, synonymsXML)
		}
	}))

	rec, err := c.LookupName(context.Background(), "linolenic")
	require.NoError(t, err)
	assert.True(t, rec.Present())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, map[int]int{429: 1, 503: 1}, metrics.retries)
	assert.Zero(t, metrics.exhausted)
}

func TestFetch_RetryExhausted(t *testing.T) {
	var calls int32
	c, metrics := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), func(cfg *Config) { cfg.Retry.MaxAttempts = 3 })

	_, err := c.LookupName(context.Background(), "busy")
	require.Error(t, err)
	assert.True(t, errors.IsRetryExhausted(err))
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, metrics.exhausted)
	assert.Equal(t, 2, metrics.retries[503])
}

func TestFetch_ContextCancelledDuringBackoff(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}), func(cfg *Config) {
		cfg.Retry.RateLimitedDelay = time.Hour
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.LookupName(ctx, "slow")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
	assert.False(t, errors.IsRetryExhausted(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

// ─────────────────────────────────────────────────────────────────────────────
// InChIKey batch
// ─────────────────────────────────────────────────────────────────────────────

// propertyHandler answers InChIKey requests with "KEY-<cid>-N" for each CID
// except those in omit, and records the size of every batch.
func propertyHandler(omit map[string]bool, batches *[]int, mu *sync.Mutex) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		// /compound/cid/{ids}/property/InChIKey/JSON
		ids := strings.Split(parts[3], ",")
		mu.Lock()
		*batches = append(*batches, len(ids))
		mu.Unlock()

		var props []string
		for _, id := range ids {
			if omit[id] {
				continue
			}
			props = append(props, fmt.Sprintf(`{"CID":%s,"InChIKey":"KEY%s-UHFFFAOYSA-N"}`, id, id))
		}
		fmt.Fprintf(w, `{"PropertyTable":{"Properties":[%s]}}`, strings.Join(props, ","))
	}
}

func TestInChIKeyList_SingleCID(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compound/cid/5284421/property/InChIKey/JSON", r.URL.Path)
		fmt.Fprint(w, `{"PropertyTable":{"Properties":[{"CID":5284421,"InChIKey":"QHGUCRYDKWVIE-UHFFFAOYSA-N"}]}}`)
	}))

	keys, err := c.InChIKeyList(context.Background(), []int64{5284421}, InChIKeyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []chemical.Optional[string]{chemical.Some("QHGUCRYDKWVIE-UHFFFAOYSA-N")}, keys)
}

func TestInChIKeyList_ChunkedEqualsUnchunked(t *testing.T) {
	var mu sync.Mutex
	var batches []int
	h := propertyHandler(nil, &batches, &mu)

	cids := make([]int64, 250)
	for i := range cids {
		cids[i] = int64(1000 + i*7)
	}

	chunked, _ := newTestClient(t, h)
	got, err := chunked.InChIKeyList(context.Background(), cids, InChIKeyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{84, 83, 83}, batches)

	batches = nil
	single, _ := newTestClient(t, h)
	single.cfg.BatchSize = len(cids)
	want, err := single.InChIKeyList(context.Background(), cids, InChIKeyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{250}, batches)

	assert.Equal(t, want, got)
	for i, cid := range cids {
		key, ok := got[i].Get()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("KEY%d-UHFFFAOYSA-N", cid), key)
	}
}

func TestInChIKeyList_OmissionLeavesAbsentSlot(t *testing.T) {
	var mu sync.Mutex
	var batches []int
	c, _ := newTestClient(t, propertyHandler(map[string]bool{"20": true}, &batches, &mu))

	keys, err := c.InChIKeyList(context.Background(), []int64{10, 20, 30}, InChIKeyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []chemical.Optional[string]{
		chemical.Some("KEY10-UHFFFAOYSA-N"),
		chemical.None[string](),
		chemical.Some("KEY30-UHFFFAOYSA-N"),
	}, keys)
}

func TestInChIKeyMap_PrefixOnly(t *testing.T) {
	var mu sync.Mutex
	var batches []int
	c, _ := newTestClient(t, propertyHandler(nil, &batches, &mu))

	keys, err := c.InChIKeyMap(context.Background(), []int64{7, 8}, InChIKeyOptions{PrefixOnly: true})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{7: "KEY7", 8: "KEY8"}, keys)
}

func TestInChIKeyMap_NotFoundChunk(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	keys, err := c.InChIKeyMap(context.Background(), []int64{1, 2}, InChIKeyOptions{})
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestInChIKeyMap_Empty(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	}))
	keys, err := c.InChIKeyMap(context.Background(), nil, InChIKeyOptions{})
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestChunk(t *testing.T) {
	ids := func(n int) []int64 {
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(i)
		}
		return out
	}
	sizes := func(chunks [][]int64) []int {
		out := make([]int, len(chunks))
		for i, c := range chunks {
			out[i] = len(c)
		}
		return out
	}

	assert.Nil(t, Chunk(nil, 100))
	assert.Equal(t, []int{100}, sizes(Chunk(ids(100), 100)))
	assert.Equal(t, []int{51, 50}, sizes(Chunk(ids(101), 100)))
	assert.Equal(t, []int{75, 75}, sizes(Chunk(ids(150), 100)))
	assert.Equal(t, []int{3}, sizes(Chunk(ids(3), 0)))

	var flat []int64
	for _, c := range Chunk(ids(333), 100) {
		assert.LessOrEqual(t, len(c), 100)
		flat = append(flat, c...)
	}
	assert.Equal(t, ids(333), flat)
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 65036.0 ")
	require.NoError(t, err)
	assert.Equal(t, int64(65036), id)

	_, err = parseID("1.5")
	assert.Error(t, err)
	_, err = parseID("abc")
	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// MeSH chain
// ─────────────────────────────────────────────────────────────────────────────

func meshMux(t *testing.T, esearch string, substanceStatus int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/entrez/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pcsubstance", r.URL.Query().Get("db"))
		assert.Equal(t, "json", r.URL.Query().Get("retmode"))
		assert.Equal(t, "D000001", r.URL.Query().Get("term"))
		fmt.Fprint(w, esearch)
	})
	mux.HandleFunc("/substance/sid/3480/xml", func(w http.ResponseWriter, _ *http.Request) {
		if substanceStatus != http.StatusOK {
			w.WriteHeader(substanceStatus)
			return
		}
		fmt.Fprint(w, substanceXML)
	})
	return mux
}

func TestLookupMeSH_FullChain(t *testing.T) {
	c, _ := newTestClient(t, meshMux(t, `{"esearchresult":{"count":"2","idlist":["3480","3481"]}}`, http.StatusOK))

	rec, err := c.LookupMeSH(context.Background(), "D000001")
	require.NoError(t, err)
	assert.Equal(t, "D000001", rec.MeSH)
	assert.Equal(t, chemical.Some[int64](3480), rec.SID)
	assert.Equal(t, chemical.Some[int64](2244), rec.CID)
}

func TestLookupMeSH_NoSearchHits(t *testing.T) {
	c, _ := newTestClient(t, meshMux(t, `{"esearchresult":{"count":"0","idlist":[]}}`, http.StatusOK))

	rec, err := c.LookupMeSH(context.Background(), "D000001")
	require.NoError(t, err)
	assert.False(t, rec.SID.Present())
	assert.False(t, rec.CID.Present())
}

func TestLookupMeSH_SubstanceMissing(t *testing.T) {
	c, _ := newTestClient(t, meshMux(t, `{"esearchresult":{"count":"1","idlist":["3480"]}}`, http.StatusNotFound))

	rec, err := c.LookupMeSH(context.Background(), "D000001")
	require.NoError(t, err)
	assert.Equal(t, chemical.Some[int64](3480), rec.SID)
	assert.False(t, rec.CID.Present())
}

func TestLookupMeSH_APIKeyForwarded(t *testing.T) {
	var key string
	mux := http.NewServeMux()
	mux.HandleFunc("/entrez/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		key = r.URL.Query().Get("api_key")
		fmt.Fprint(w, `{"esearchresult":{"count":"0","idlist":[]}}`)
	})
	c, _ := newTestClient(t, mux, func(cfg *Config) { cfg.APIKey = "secret" })

	_, err := c.LookupMeSH(context.Background(), "D1")
	require.NoError(t, err)
	assert.Equal(t, "secret", key)
}

func TestNewClient_AppliesDefaults(t *testing.T) {
	c := NewClient(Config{BatchSize: 500}, nil)
	assert.Equal(t, 100, c.BatchSize())
	assert.Equal(t, 10, c.cfg.Retry.MaxAttempts)
	assert.Equal(t, "https://pubchem.ncbi.nlm.nih.gov/rest/pug", c.cfg.BaseURL)
}

//Personal.AI order the ending
