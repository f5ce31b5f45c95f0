package utils

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchQuery(t *testing.T) {
	body, err := json.Marshal(searchQuery("doe", []string{"name^3", "email"}, 0))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"size": 50,
		"_source": false,
		"query": {
			"multi_match": {
				"query": "doe",
				"fields": ["name^3", "email"],
				"fuzziness": "AUTO"
			}
		}
	}`, string(body))
}

type esRequest struct {
	method string
	path   string
	query  string
	body   string
}

// fakeElasticsearch answers like a cluster: the client refuses servers that
// do not send the product header.
func fakeElasticsearch(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]esRequest) {
	t.Helper()
	var mu sync.Mutex
	var seen []esRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, esRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodHead && r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		handle(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestElasticsearchIndex_SearchIDs(t *testing.T) {
	srv, seen := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hits":{"hits":[{"_id":"b"},{"_id":"a"}]}}`)
	})

	idx, err := NewElasticsearchIndex(srv.URL, "clients")
	require.NoError(t, err)

	ids, err := idx.SearchIDs(context.Background(), "doe", []string{"name"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	last := (*seen)[len(*seen)-1]
	assert.Equal(t, "/clients/_search", last.path)
	assert.JSONEq(t, `{"size":10,"_source":false,"query":{"multi_match":{"query":"doe","fields":["name"],"fuzziness":"AUTO"}}}`, last.body)
}

func TestElasticsearchIndex_IndexAndDelete(t *testing.T) {
	srv, seen := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			// deleting a document that was never indexed is not an error
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})

	idx, err := NewElasticsearchIndex(srv.URL, "clients")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, idx.IndexDocument(ctx, "c1", map[string]interface{}{"name": "John Doe"}))
	require.NoError(t, idx.DeleteDocument(ctx, "c1"))

	reqs := (*seen)[1:]
	require.Len(t, reqs, 2)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/clients/_doc/c1", reqs[0].path)
	assert.Contains(t, reqs[0].query, "refresh=true")
	assert.JSONEq(t, `{"name":"John Doe"}`, reqs[0].body)
	assert.Equal(t, http.MethodDelete, reqs[1].method)
	assert.Equal(t, "/clients/_doc/c1", reqs[1].path)
}

func TestElasticsearchIndex_ReportsClusterErrors(t *testing.T) {
	srv, _ := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"parsing_exception"}}`)
	})

	idx, err := NewElasticsearchIndex(srv.URL, "clients")
	require.NoError(t, err)

	_, err = idx.SearchIDs(context.Background(), "doe", []string{"name"}, 10)
	assert.ErrorContains(t, err, "Elasticsearch error")
}
