package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/catalog/models"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newESServer(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handle(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func openIndex(t *testing.T, url string) Index {
	t.Helper()
	idx, err := Open(Config{URL: url, Index: "products"})
	require.NoError(t, err)
	require.True(t, idx.Enabled())
	return idx
}

func TestOpenWithoutURLIsNoop(t *testing.T) {
	idx, err := Open(Config{})
	require.NoError(t, err)
	assert.False(t, idx.Enabled())
}

func TestUpsertAndDelete(t *testing.T) {
	srv, calls := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	idx := openIndex(t, srv.URL)

	p := models.Product{ID: uuid.New(), Name: "shirt", Price: decimal.NewFromInt(500)}
	require.NoError(t, idx.Upsert(context.Background(), p))
	require.NoError(t, idx.Delete(context.Background(), p.ID))

	require.Len(t, *calls, 2)
	assert.Equal(t, http.MethodPut, (*calls)[0].method)
	assert.Equal(t, "/products/_doc/"+p.ID.String(), (*calls)[0].path)
	assert.Contains(t, (*calls)[0].body, `"name":"shirt"`)
	assert.Equal(t, http.MethodDelete, (*calls)[1].method)
}

func TestSearchDecodesHits(t *testing.T) {
	id := uuid.New()
	srv, calls := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": 7},
				"hits": []any{
					map[string]any{"_source": map[string]any{"id": id.String(), "name": "linen shirt", "price": 1200}},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	idx := openIndex(t, srv.URL)

	total, items, err := idx.Search(context.Background(), "linen", 20, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.True(t, decimal.NewFromInt(1200).Equal(items[0].Price))

	require.Len(t, *calls, 1)
	assert.True(t, strings.HasSuffix((*calls)[0].path, "/_search"))
	assert.Contains(t, (*calls)[0].body, `"from":20`)
	assert.Contains(t, (*calls)[0].body, `"query":"linen"`)
}

func TestSearchReportsClusterErrors(t *testing.T) {
	srv, _ := newESServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
	})
	idx := openIndex(t, srv.URL)

	_, _, err := idx.Search(context.Background(), "x", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
