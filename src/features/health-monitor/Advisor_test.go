package healthmonitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tveit-dev/guardian/src/utility"
)

func testSnapshot() *MetricsSnapshot {
	return snapshotWith(0.5, 2048, 8192, map[string]string{"plex": "active"})
}

func newTestAdvisor(url string) *Advisor {
	return NewAdvisor(AdvisorConfig{
		Enabled: true,
		URL:     url,
		Model:   "llama3",
		Timeout: 2 * time.Second,
	}, utility.NopLogger())
}

func TestAnalyzeReturnsVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "plex")

		json.NewEncoder(w).Encode(generateResponse{Response: "All systems green.", Done: true})
	}))
	defer srv.Close()

	result := newTestAdvisor(srv.URL).Analyze(context.Background(), testSnapshot())

	assert.True(t, result.Present)
	assert.Equal(t, "All systems green.", result.Text)
}

func TestAnalyzeDisabled(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	advisor := NewAdvisor(AdvisorConfig{Enabled: false, URL: srv.URL}, utility.NopLogger())
	result := advisor.Analyze(context.Background(), testSnapshot())

	assert.False(t, result.Present)
	assert.False(t, called, "disabled advisor must not call the endpoint")
}

func TestAnalyzeEndpointDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately unreachable

	result := newTestAdvisor(srv.URL).Analyze(context.Background(), testSnapshot())
	assert.False(t, result.Present)
}

func TestAnalyzeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := newTestAdvisor(srv.URL).Analyze(context.Background(), testSnapshot())
	assert.False(t, result.Present)
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	result := newTestAdvisor(srv.URL).Analyze(context.Background(), testSnapshot())
	assert.False(t, result.Present)
}

func TestAnalyzeEmptyVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "   ", Done: true})
	}))
	defer srv.Close()

	result := newTestAdvisor(srv.URL).Analyze(context.Background(), testSnapshot())
	assert.False(t, result.Present)
}
