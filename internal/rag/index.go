package rag

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	filters "github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/nooklet/nooklet/internal/model"
)

// ChunkClass is the Weaviate class holding embedded text chunks.
const ChunkClass = "NookletChunk"

// Chunk is one embedded piece of text ready for upsert.
type Chunk struct {
	ID      string
	Vector  []float32
	Content string
	User    string
	Date    *string
}

// Index provides vector upsert and similarity search over chunks.
type Index interface {
	UpsertChunks(ctx context.Context, chunks []Chunk) error

	// Search returns up to topK nearest chunks, optionally filtered to one
	// user when user is non-empty.
	Search(ctx context.Context, vec []float32, user string, topK int) ([]model.ChunkHit, error)
}

// weavIndex backs Index with the Weaviate Go client.
type weavIndex struct {
	client  *weaviate.Client
	baseURL string // host:port without scheme
}

// NewWeaviateIndex constructs an Index against Weaviate at baseURL
// (host:port without scheme, e.g. "localhost:8081").
func NewWeaviateIndex(baseURL string) (Index, error) {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &weavIndex{client: cl, baseURL: baseURL}, nil
}

// BootstrapWeaviate ensures the NookletChunk class exists.
func BootstrapWeaviate(ctx context.Context, baseURL string) error {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	exists, err := cl.Schema().ClassExistenceChecker().WithClassName(ChunkClass).Do(cctx)
	if err != nil {
		return fmt.Errorf("check %s class: %w", ChunkClass, err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      ChunkClass,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "user", DataType: []string{"text"}},
			{Name: "date", DataType: []string{"text"}},
		},
	}
	if err := cl.Schema().ClassCreator().WithClass(class).Do(cctx); err != nil {
		return fmt.Errorf("create %s class: %w", ChunkClass, err)
	}
	return nil
}

func (w *weavIndex) UpsertChunks(ctx context.Context, chunks []Chunk) error {
	if w == nil || w.client == nil {
		return nil
	}
	for _, c := range chunks {
		props := map[string]interface{}{
			"content": c.Content,
			"user":    c.User,
		}
		if c.Date != nil {
			props["date"] = *c.Date
		}
		_, err := w.client.Data().Creator().
			WithClassName(ChunkClass).
			WithID(c.ID).
			WithProperties(props).
			WithVector(c.Vector).
			Do(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *weavIndex) Search(ctx context.Context, vec []float32, user string, topK int) ([]model.ChunkHit, error) {
	near := (&gql.NearVectorArgumentBuilder{}).WithVector(vec)

	req := w.client.GraphQL().Get().
		WithClassName(ChunkClass).
		WithNearVector(near).
		WithLimit(topK).
		WithFields(
			gql.Field{Name: "content"},
			gql.Field{Name: "user"},
			gql.Field{Name: "date"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "id"}, {Name: "certainty"}}},
		)
	if user != "" {
		where := filters.Where().WithPath([]string{"user"}).WithOperator(filters.Equal).WithValueText(user)
		req = req.WithWhere(where)
	}

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("weaviate graphql: %s", strings.Join(msgs, "; "))
	}

	getData, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return []model.ChunkHit{}, nil
	}
	raw, ok := getData[ChunkClass].([]interface{})
	if !ok {
		return []model.ChunkHit{}, nil
	}

	safeString := func(v interface{}) string {
		s, _ := v.(string)
		return s
	}

	out := make([]model.ChunkHit, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		hit := model.ChunkHit{
			Content: safeString(m["content"]),
			User:    safeString(m["user"]),
		}
		if d := safeString(m["date"]); d != "" {
			hit.Date = &d
		}
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			hit.ChunkID = safeString(add["id"])
			switch v := add["certainty"].(type) {
			case float64:
				hit.Score = v
			case string:
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					hit.Score = f
				}
			}
		}
		out = append(out, hit)
	}
	return out, nil
}

// HealthPing implements health.HealthPinger; it calls GET /v1/meta.
func (w *weavIndex) HealthPing(ctx context.Context) error {
	if w == nil || w.baseURL == "" {
		return fmt.Errorf("weaviate baseURL missing")
	}
	url := w.baseURL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/meta", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weaviate meta status %d", resp.StatusCode)
	}
	return nil
}
