package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/internal/blob"
	"github.com/tsawler/reviewsense/internal/handler"
)

var (
	stopwords = []string{"the", "a"}
	corpus    = []string{"4 great service", "0 terrible food", "4 amazing staff"}
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	source *reviewsense.MemorySource
	store  *blob.Dir
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	src := reviewsense.NewMemorySource(stopwords, corpus)
	engine := reviewsense.New(src)
	store := blob.NewDir(t.TempDir())
	proc := handler.New(engine, store, handler.DefaultOptions(), nil)
	return &testServer{router: New(engine, proc, nil).Router(), source: src, store: store}
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	return w, decoded
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w, body := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestScore(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodPost, "/v1/score", `{"review":"great staff"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4.0, body["score"])
	assert.Equal(t, "positive", body["label"])
	assert.Equal(t, []any{"amazing", "food", "great"}, body["top_words"])
	assert.True(t, strings.HasPrefix(body["annotated"].(string), "4.0 (positive) great staff\n\n"))

	w, _ = ts.do(t, http.MethodPost, "/v1/score", `{"review":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppendReview(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/v1/reviews", `{"text":"okay place","label":2}`)
	require.Equal(t, http.StatusCreated, w.Code)

	lines, _ := ts.source.LoadCorpus(context.Background())
	assert.Equal(t, "2 okay place", lines[len(lines)-1])

	tests := []struct {
		name string
		body string
	}{
		{"missing label", `{"text":"okay"}`},
		{"label out of range", `{"text":"okay","label":11}`},
		{"blank text", `{"text":"  ","label":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := ts.do(t, http.MethodPost, "/v1/reviews", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestTopWords(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodGet, "/v1/top-words?n=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["words"], 2)

	w, body = ts.do(t, http.MethodGet, "/v1/top-words", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["words"], 3)

	w, _ = ts.do(t, http.MethodGet, "/v1/top-words?n=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/v1/top-words?n=many", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWord(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodGet, "/v1/words/Great", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "great", body["word"])
	assert.Equal(t, false, body["stop_word"])
	assert.Equal(t, 4.0, body["sentiment"])
	assert.Equal(t, 1.0, body["count"])

	w, body = ts.do(t, http.MethodGet, "/v1/words/the", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["stop_word"])
	assert.Equal(t, -1.0, body["sentiment"])
}

func TestEvents(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.store.Put(ctx, "reviews", "r1.txt", []byte("terrible service"), "text/plain"))

	event := `{"Records":[{"s3":{"bucket":{"name":"reviews"},"object":{"key":"r1.txt"}}}]}`
	w, body := ts.do(t, http.MethodPost, "/v1/events", event)
	require.Equal(t, http.StatusOK, w.Code, body)
	assert.Equal(t, 1.0, body["processed"])

	data, err := ts.store.Get(ctx, "reviews-resized", "sentimented-r1.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "2.0 (neutral) terrible service"))
}

func TestEventsWithoutProcessor(t *testing.T) {
	router := New(reviewsense.New(reviewsense.NewMemorySource(stopwords, corpus)), nil, nil).Router()
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(`{"Records":[]}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestConfigurationErrorIsUnavailable(t *testing.T) {
	engine := reviewsense.New(reviewsense.NewFileSource("/nonexistent/stop.txt", "/nonexistent/corpus.txt"))
	router := New(engine, nil, nil).Router()

	req := httptest.NewRequest(http.MethodPost, "/v1/score", strings.NewReader(`{"review":"great"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimit(t *testing.T) {
	src := reviewsense.NewMemorySource(stopwords, corpus)
	srv := New(reviewsense.New(src), nil, nil)
	srv.LimitRate(0.001, 2)
	router := srv.Router()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/top-words", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health checks are never limited.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv := New(reviewsense.New(reviewsense.NewMemorySource(stopwords, corpus)), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
