package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardlab/amazon-board-crawler/internal/database"
	"github.com/boardlab/amazon-board-crawler/internal/stats"
)

// fakeStore pages over an in-memory doc list the way the real store
// pages over seq-ordered rows.
type fakeStore struct {
	docs []string
	err  error
}

func (f *fakeStore) page(lastSeq int64, count int) (database.Page, error) {
	if f.err != nil {
		return database.Page{}, f.err
	}
	total := int64(len(f.docs))
	start := lastSeq
	if start > total {
		start = total
	}
	end := start + int64(count)
	if end > total {
		end = total
	}
	var items []json.RawMessage
	for _, d := range f.docs[start:end] {
		items = append(items, json.RawMessage(d))
	}
	return database.Page{
		Items:  items,
		Remain: total - end,
		Total:  total,
	}, nil
}

func (f *fakeStore) ReadReviews(_ context.Context, lastSeq int64, count int) (database.Page, error) {
	return f.page(lastSeq, count)
}

func (f *fakeStore) ReadRankings(_ context.Context, lastSeq int64, count int) (database.Page, error) {
	return f.page(lastSeq, count)
}

func (f *fakeStore) ReadProducts(_ context.Context, lastSeq int64, count int) (database.Page, error) {
	return f.page(lastSeq, count)
}

func newTestServer(t *testing.T, store PageReader, accessKey string) *httptest.Server {
	t.Helper()
	handlers := NewHandlers(store, accessKey, slog.Default())
	srv := httptest.NewServer(NewRouter(handlers, stats.NewMetrics()))
	t.Cleanup(srv.Close)
	return srv
}

func getEnvelope(t *testing.T, url string) (int, Envelope) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func seedDocs(n int) []string {
	docs := make([]string, n)
	for i := range docs {
		docs[i] = fmt.Sprintf(`{"seq":%d,"asin":"B%09d"}`, i+1, i)
	}
	return docs
}

func TestGetReviewsPaging(t *testing.T) {
	srv := newTestServer(t, &fakeStore{docs: seedDocs(25)}, "")

	status, env := getEnvelope(t, srv.URL+"/api/v1/reviews?last_seq=0&count=10")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", env.Status)
	assert.Len(t, env.Result, 10)
	assert.Equal(t, int64(15), env.RemainCount)
	assert.True(t, env.HasNext)
	assert.Equal(t, int64(25), env.TotalCount)

	// last page
	status, env = getEnvelope(t, srv.URL+"/api/v1/reviews?last_seq=20&count=10")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Result, 5)
	assert.Zero(t, env.RemainCount)
	assert.False(t, env.HasNext)
}

func TestGetReviewsEmptyResultIsArray(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, "")

	resp, err := http.Get(srv.URL + "/api/v1/reviews")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw["result"]))
}

func TestAccessKey(t *testing.T) {
	srv := newTestServer(t, &fakeStore{docs: seedDocs(1)}, "secret")

	status, env := getEnvelope(t, srv.URL+"/api/v1/ranking")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "ERROR", env.Status)

	status, _ = getEnvelope(t, srv.URL+"/api/v1/ranking?access_key=wrong")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = getEnvelope(t, srv.URL+"/api/v1/ranking?access_key=secret")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", env.Status)

	// header variant
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/ranking", nil)
	require.NoError(t, err)
	req.Header.Set("X-Access-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBadQueryParams(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, "")

	status, env := getEnvelope(t, srv.URL+"/api/v1/products?last_seq=abc")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ERROR", env.Status)

	status, _ = getEnvelope(t, srv.URL+"/api/v1/products?count=-5")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStoreError(t *testing.T) {
	srv := newTestServer(t, &fakeStore{err: fmt.Errorf("pool closed")}, "")

	status, env := getEnvelope(t, srv.URL+"/api/v1/products")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "ERROR", env.Status)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, "secret")

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health check bypasses the access key")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, "")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
