package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
	_, err = NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8080/", WithUserAgent("ua/1"), WithRetryMax(1), WithAPIKey("k"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
	assert.Equal(t, "ua/1", c.userAgent)
	assert.Equal(t, 1, c.retryMax)
	assert.Equal(t, "k", c.apiKey)
}

func TestResolve(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/resolve", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "caffeine", body["name"])
		assert.Equal(t, false, body["use_local"])
		_, hasRemote := body["use_remote"]
		assert.False(t, hasRemote)

		w.Write([]byte(`{"query":"caffeine","pubchem_id":2519,"pubchem_name":"caffeine","foodb_id":null,"inchikey":null,"composite_id":2519}`))
	}, WithAPIKey("secret"))

	local := false
	id, err := c.Resolve(context.Background(), "caffeine", &ResolveOptions{UseLocal: &local})
	require.NoError(t, err)
	require.NotNil(t, id.PubChemID)
	assert.Equal(t, int64(2519), *id.PubChemID)
	assert.Nil(t, id.FooDBID)
	assert.True(t, id.Resolved())
}

func TestResolveBatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"run":{"id":"r1","source":"http","summary":{"total":2,"unique_inputs":2,"pubchem_resolved":1}},` +
			`"results":[{"query":"a","composite_id":1},{"query":"b","composite_id":null}],"persisted":true}`))
	})
	res, err := c.ResolveBatch(context.Background(), []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "r1", res.Run.ID)
	assert.Equal(t, 1, res.Run.Summary.PubChemResolved)
	require.Len(t, res.Results, 2)
	assert.False(t, res.Results[1].Resolved())
	assert.True(t, res.Persisted)
}

func TestInChIKeys_ListMode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/inchikeys", r.URL.Path)
		w.Write([]byte(`{"mode":"list","ordered":["RYYVLZVUVIJVGH",null]}`))
	})
	res, err := c.InChIKeys(context.Background(), []int64{2519, 9}, true, ModeList)
	require.NoError(t, err)
	require.Len(t, res.Ordered, 2)
	assert.Equal(t, "RYYVLZVUVIJVGH", *res.Ordered[0])
	assert.Nil(t, res.Ordered[1])
}

func TestInChIKeys_DictMode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"mode":"dict","by_cid":{"2519":"RYYVLZVUVIJVGH-UHFFFAOYSA-N"}}`))
	})
	res, err := c.InChIKeys(context.Background(), []int64{2519}, false, ModeDict)
	require.NoError(t, err)
	assert.Equal(t, "RYYVLZVUVIJVGH-UHFFFAOYSA-N", res.ByCID[2519])
}

func TestMeSHAndStoredLookups(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/mesh/D002110":
			w.Write([]byte(`{"mesh":"D002110","sid":7,"cid":2519}`))
		case "/api/v1/results":
			assert.Equal(t, "garlic oil", r.URL.Query().Get("query"))
			w.Write([]byte(`{"query":"garlic oil","foodb_id":1}`))
		case "/api/v1/runs/r1":
			w.Write([]byte(`{"run_id":"r1","results":[{"query":"x"}]}`))
		case "/healthz":
			w.Write([]byte(`{"status":"ok","version":"v1","uptime":"1s"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	m, err := c.MeSH(ctx, "D002110")
	require.NoError(t, err)
	assert.Equal(t, int64(2519), *m.CID)

	stored, err := c.FindStored(ctx, "garlic oil")
	require.NoError(t, err)
	assert.Equal(t, int64(1), *stored.FooDBID)

	results, err := c.ListRun(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestSubmitJob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"request_id":"evt-1"}`))
	})
	id, err := c.SubmitJob(context.Background(), []string{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", id)
}

func TestAPIError_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"COMMON_003","message":"resource not found","detail":"query"}`))
	})
	_, err := c.FindStored(context.Background(), "nothing")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "COMMON_003", apiErr.Code)
	assert.Equal(t, "query", apiErr.Detail)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestServerErrorRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryMax(2))
	_, err := c.Health(context.Background())
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRateLimitedHonorsRetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})
	_, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

type recordingLogger struct{ lines []string }

func (l *recordingLogger) Debugf(format string, args ...interface{}) { l.lines = append(l.lines, format) }
func (l *recordingLogger) Infof(format string, args ...interface{})  { l.lines = append(l.lines, format) }
func (l *recordingLogger) Errorf(format string, args ...interface{}) { l.lines = append(l.lines, format) }

func TestRateLimitedWithoutRetryAfter(t *testing.T) {
	logger := &recordingLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"code":"COMMON_008","message":"too many requests"}`))
	}, WithLogger(logger))

	_, err := c.Health(context.Background())
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsRateLimited())
	assert.False(t, apiErr.IsServerError())
	assert.Contains(t, apiErr.Error(), "too many requests")
	assert.NotEmpty(t, logger.lines)
}

func TestCalculateBackoff_Capped(t *testing.T) {
	c, err := NewClient("http://localhost", WithRetryWait(10*time.Millisecond, 40*time.Millisecond))
	require.NoError(t, err)
	for attempt := 1; attempt <= 6; attempt++ {
		b := c.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, b, 10*time.Millisecond)
		assert.LessOrEqual(t, b, 50*time.Millisecond)
	}
}

//Personal.AI order the ending
