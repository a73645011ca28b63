package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooklet/nooklet/internal/model"
)

type fakeEmbedder struct {
	fail  bool
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embed failed")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 0.5}
	}
	return out, nil
}

type fakeChatter struct {
	lastSystem string
	answer     string
}

func (f *fakeChatter) Chat(_ context.Context, system, _ string) (string, error) {
	f.lastSystem = system
	return f.answer, nil
}

type fakeIndex struct {
	upserted []Chunk
	hits     []model.ChunkHit
	lastUser string
	lastTopK int
}

func (f *fakeIndex) UpsertChunks(_ context.Context, chunks []Chunk) error {
	f.upserted = append(f.upserted, chunks...)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, user string, topK int) ([]model.ChunkHit, error) {
	f.lastUser = user
	f.lastTopK = topK
	return f.hits, nil
}

func newTestService(e Embedder, c Chatter, i Index) *Service {
	return NewService(e, c, i, zerolog.Nop())
}

func TestEmbedTextUpsertsEveryChunk(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := &fakeIndex{}
	svc := newTestService(emb, &fakeChatter{}, idx)

	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("A sentence about the day and what happened in it. ")
	}
	res, err := svc.EmbedText(context.Background(), EmbedTextRequest{Content: b.String(), User: "mori"})
	require.NoError(t, err)

	assert.Equal(t, ChunkClass, res.Collection)
	assert.Greater(t, res.ChunksProcessed, 1)
	require.Len(t, idx.upserted, res.ChunksProcessed)
	for _, c := range idx.upserted {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Vector)
		assert.Equal(t, "mori", c.User)
	}
	assert.Equal(t, 1, emb.calls, "all chunks embedded in one batch")
}

func TestEmbedTextEmptyContent(t *testing.T) {
	idx := &fakeIndex{}
	svc := newTestService(&fakeEmbedder{}, &fakeChatter{}, idx)

	res, err := svc.EmbedText(context.Background(), EmbedTextRequest{Content: "   \n ", User: "mori"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ChunksProcessed)
	assert.Empty(t, idx.upserted)
}

func TestEmbedTextPropagatesEmbedFailure(t *testing.T) {
	svc := newTestService(&fakeEmbedder{fail: true}, &fakeChatter{}, &fakeIndex{})

	_, err := svc.EmbedText(context.Background(), EmbedTextRequest{Content: "some text", User: "mori"})
	assert.ErrorContains(t, err, "embed")
}

func TestChatBuildsNumberedContext(t *testing.T) {
	date := "2024-05-01"
	idx := &fakeIndex{hits: []model.ChunkHit{
		{Content: "walked the dog", Date: &date, Score: 0.9},
		{Content: "read a book", Score: 0.8},
	}}
	ch := &fakeChatter{answer: "you walked the dog"}
	svc := newTestService(&fakeEmbedder{}, ch, idx)

	res, err := svc.Chat(context.Background(), ChatRequest{Prompt: "what did I do?", User: "mori"})
	require.NoError(t, err)

	assert.Equal(t, "you walked the dog", res.Answer)
	assert.Equal(t, 2, res.Retrieved)
	assert.Equal(t, "mori", idx.lastUser)
	assert.Equal(t, chatTopK, idx.lastTopK)
	assert.Contains(t, ch.lastSystem, "[01][date: 2024-05-01] walked the dog")
	assert.Contains(t, ch.lastSystem, "[02][date: unknown] read a book")
}

func TestChatNoHits(t *testing.T) {
	ch := &fakeChatter{answer: "I don't know"}
	svc := newTestService(&fakeEmbedder{}, ch, &fakeIndex{})

	res, err := svc.Chat(context.Background(), ChatRequest{Prompt: "anything?"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Retrieved)
	assert.Contains(t, ch.lastSystem, "Context (Current date: "+time.Now().Format("2006-01-02")+"): none;")
}
