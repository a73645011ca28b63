package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nooklet/nooklet/internal/model"
)

const chatTopK = 10

// Service runs the embed-and-retrieve pipeline: split text into chunks,
// embed them, store vectors, and answer prompts against the nearest chunks.
// No retries or caching; failures surface to the caller directly.
type Service struct {
	splitter *Splitter
	embedder Embedder
	chatter  Chatter
	index    Index
	log      zerolog.Logger
}

func NewService(embedder Embedder, chatter Chatter, index Index, log zerolog.Logger) *Service {
	return &Service{
		splitter: NewSplitter(),
		embedder: embedder,
		chatter:  chatter,
		index:    index,
		log:      log,
	}
}

type EmbedTextRequest struct {
	Content string  `json:"content"`
	User    string  `json:"user"`
	Date    *string `json:"date,omitempty"`
}

type EmbedTextResult struct {
	ChunksProcessed int    `json:"chunksProcessed"`
	Collection      string `json:"collection"`
}

// EmbedText splits content, embeds every chunk, and upserts the vectors.
func (s *Service) EmbedText(ctx context.Context, req EmbedTextRequest) (*EmbedTextResult, error) {
	chunks := s.splitter.Split(req.Content)
	if len(chunks) == 0 {
		return &EmbedTextResult{ChunksProcessed: 0, Collection: ChunkClass}, nil
	}

	vecs, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	records := make([]Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = Chunk{
			ID:      uuid.New().String(),
			Vector:  vecs[i],
			Content: c,
			User:    req.User,
			Date:    req.Date,
		}
	}
	if err := s.index.UpsertChunks(ctx, records); err != nil {
		return nil, fmt.Errorf("upsert chunks: %w", err)
	}

	s.log.Info().Int("chunks", len(chunks)).Str("user", req.User).Msg("embedded text into index")
	return &EmbedTextResult{ChunksProcessed: len(chunks), Collection: ChunkClass}, nil
}

type ChatRequest struct {
	Prompt string `json:"prompt"`
	User   string `json:"user,omitempty"`
}

type ChatResult struct {
	Answer    string           `json:"answer"`
	Retrieved int              `json:"retrieved"`
	Chunks    []model.ChunkHit `json:"chunks"`
}

// Chat embeds the prompt, retrieves the nearest chunks, and asks the chat
// model with the retrieved context in the system prompt.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	vec, err := s.embedder.Embed(ctx, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("embed prompt: %w", err)
	}

	hits, err := s.index.Search(ctx, vec, req.User, chatTopK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	answer, err := s.chatter.Chat(ctx, buildSystemPrompt(hits, time.Now()), req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return &ChatResult{Answer: answer, Retrieved: len(hits), Chunks: hits}, nil
}

// buildSystemPrompt renders retrieved chunks as a numbered context block.
func buildSystemPrompt(hits []model.ChunkHit, now time.Time) string {
	lines := make([]string, 0, len(hits))
	for i, h := range hits {
		if h.Content == "" {
			continue
		}
		date := "unknown"
		if h.Date != nil && *h.Date != "" {
			date = *h.Date
		}
		lines = append(lines, fmt.Sprintf("[%02d][date: %s] %s", i+1, date, h.Content))
	}
	contextBlock := strings.Join(lines, "\n")
	if contextBlock == "" {
		contextBlock = "none"
	}

	return "You are an assistant for question-answering tasks. " +
		"Use the following pieces of retrieved context to answer the question accurately. " +
		"If you don't know the answer, just say that you don't know.\n\n" +
		fmt.Sprintf("Context (Current date: %s): %s;", now.Format("2006-01-02"), contextBlock)
}
