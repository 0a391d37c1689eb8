// internal/kb/search_test.go
package kb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/models"
)

func newFallbackSearcher(t *testing.T) *Searcher {
	return NewSearcher(nil, "kb-articles", logger.NewTestLogger(t))
}

func newESSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	return NewSearcher(client, "kb-articles", logger.NewTestLogger(t))
}

func esJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestSearcher_NilClientUsesKeywordFallback(t *testing.T) {
	searcher := newFallbackSearcher(t)

	tests := []struct {
		name       string
		query      string
		expectedID string
	}{
		{"network keywords", "my wifi is down", "KB-001"},
		{"access keywords", "forgot my password", "KB-003"},
		{"email keywords", "outlook will not sync", "KB-006"},
		{"printer keywords", "cannot print reports", "KB-008"},
		{"no match returns general articles", "strange noise from desk", "KB-002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			articles, err := searcher.Search(context.Background(), tt.query, 0)
			require.NoError(t, err)
			require.NotEmpty(t, articles)
			assert.Equal(t, tt.expectedID, articles[0].ID)
		})
	}
}

func TestSearcher_FallbackCombinesGroupsAndCapsSize(t *testing.T) {
	searcher := newFallbackSearcher(t)

	// Both the network and access groups match; six articles total.
	articles, err := searcher.Search(context.Background(), "wifi password problems", 0)
	require.NoError(t, err)
	assert.Len(t, articles, 6)

	capped, err := searcher.Search(context.Background(), "wifi password problems", 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestSearcher_ParsesElasticsearchHits(t *testing.T) {
	var capturedPath string
	var capturedBody map[string]interface{}

	searcher := newESSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		}
		esJSON(w, http.StatusOK, `{
			"hits": {
				"hits": [
					{"_id": "KB-042", "_score": 7.5, "_source": {"title": "Server Hardening Checklist", "category": "security", "content": "Steps to lock down a host"}},
					{"_id": "KB-009", "_score": 3.1, "_source": {"title": "Security Best Practices", "category": "security"}}
				]
			}
		}`)
	})

	articles, err := searcher.Search(context.Background(), "harden server", 5)
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "KB-042", articles[0].ID)
	assert.Equal(t, "Server Hardening Checklist", articles[0].Title)
	assert.Equal(t, models.CategorySecurity, articles[0].Category)
	assert.InDelta(t, 7.5, articles[0].Score, 0.0001)

	assert.Equal(t, "/kb-articles/_search", capturedPath)
	query := capturedBody["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "harden server", query["query"])
}

func TestSearcher_ErrorStatusFallsBack(t *testing.T) {
	searcher := newESSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		esJSON(w, http.StatusServiceUnavailable, `{"error": "cluster unavailable"}`)
	})

	articles, err := searcher.Search(context.Background(), "wifi keeps dropping", 5)
	require.NoError(t, err)
	require.NotEmpty(t, articles)
	assert.Equal(t, "KB-001", articles[0].ID)
}

func TestSearcher_TransportFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	searcher := NewSearcher(client, "kb-articles", logger.NewTestLogger(t))

	articles, searchErr := searcher.Search(context.Background(), "password reset", 5)
	require.NoError(t, searchErr)
	require.NotEmpty(t, articles)
	assert.Equal(t, "KB-003", articles[0].ID)
}
