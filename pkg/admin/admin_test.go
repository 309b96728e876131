package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashpect/fwdproxy/pkg/accesslog"
	"github.com/ashpect/fwdproxy/pkg/cache"
)

func setup(t *testing.T) (http.Handler, *cache.Store, *accesslog.Memory) {
	t.Helper()
	store, err := cache.NewStore(cache.WithByteBudget(1000), cache.WithObjectCeiling(500))
	require.NoError(t, err)
	k := cache.Key{Method: "GET", Host: "a.b", Port: "80", Path: "/x", Version: "HTTP/1.0"}
	_, err = store.TryInsert(k, strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)

	logs := accesslog.NewMemory(10)
	for _, uri := range []string{"http://a.b/1", "http://a.b/2", "http://a.b/3"} {
		logs.Record(accesslog.Record{Time: time.Unix(0, 0), URI: uri, Outcome: accesslog.OutcomeRelayed})
	}
	return NewRouter(store, logs, zerolog.Nop()), store, logs
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	h, _, _ := setup(t)
	rec := get(h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStats(t *testing.T) {
	h, _, _ := setup(t)

	rec := get(h, "/stats")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var st cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, 5, st.BytesUsed)
	assert.Equal(t, 995, st.BytesLeft)
	assert.Equal(t, uint64(1), st.Insertions)
}

func TestCache(t *testing.T) {
	h, _, _ := setup(t)

	rec := get(h, "/cache")

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []cache.EntryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/x", entries[0].Path)
	assert.Equal(t, 5, entries[0].Length)
	assert.Equal(t, "text/plain", entries[0].ContentType)
	assert.NotContains(t, rec.Body.String(), "hello")
}

func TestLogs(t *testing.T) {
	h, _, _ := setup(t)

	var records []accesslog.Record
	rec := get(h, "/logs")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 3)
	assert.Equal(t, "http://a.b/3", records[0].URI)

	rec = get(h, "/logs?limit=1")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)

	rec = get(h, "/logs?limit=-2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogsNotMounted(t *testing.T) {
	store, err := cache.NewStore()
	require.NoError(t, err)
	h := NewRouter(store, nil, zerolog.Nop())

	assert.Equal(t, http.StatusNotFound, get(h, "/logs").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, func() int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/stats", nil))
		return rec.Code
	}())
}
