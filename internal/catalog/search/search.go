package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/catalog/models"
)

// Index mirrors catalog writes into a full-text index.
type Index interface {
	Enabled() bool
	Upsert(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

// Noop is used when no search cluster is configured.
type Noop struct{}

func (Noop) Enabled() bool                                { return false }
func (Noop) Upsert(context.Context, models.Product) error { return nil }
func (Noop) Delete(context.Context, uuid.UUID) error      { return nil }
func (Noop) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	return 0, nil, nil
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}
	return client, nil
}

// Open returns Noop when cfg.URL is empty.
func Open(cfg Config) (Index, error) {
	if cfg.URL == "" {
		return Noop{}, nil
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewESIndex(client, cfg.Index), nil
}

type ESIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewESIndex(es *elasticsearch.Client, index string) *ESIndex {
	return &ESIndex{es: es, index: index}
}

func (i *ESIndex) Enabled() bool { return true }

func (i *ESIndex) Upsert(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("es: marshal product: %w", err)
	}

	res, err := i.es.Index(
		i.index,
		bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("es: index %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("index", res.Status(), res.Body)
	}
	return nil
}

func (i *ESIndex) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := i.es.Delete(i.index, id.String(), i.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res.Status(), res.Body)
	}
	return nil
}

func (i *ESIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		prods[n] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("es: %s failed: %s: %s", op, status, strings.TrimSpace(string(b)))
}
