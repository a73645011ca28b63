package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nooklet/nooklet/internal/config"
	"github.com/nooklet/nooklet/internal/rag"
)

// NewRagService wires the embed/chat pipeline from config and returns the
// service together with its index for health monitoring. Returns nil without
// error when no OpenAI key is configured; the /test/llm routes are simply
// not registered in that case.
func NewRagService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*rag.Service, rag.Index, error) {
	if cfg.OpenAIAPIKey == "" {
		log.Info().Msg("no OpenAI API key configured; embed/chat endpoints disabled")
		return nil, nil, nil
	}
	if cfg.WeaviateURL == "" {
		return nil, nil, fmt.Errorf("NOOKLET_WEAVIATE_URL is required for the embed/chat pipeline")
	}

	provider := rag.NewOpenAIProvider(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.ChatModel)

	idx, err := rag.NewWeaviateIndex(cfg.WeaviateURL)
	if err != nil {
		return nil, nil, err
	}

	// Async class bootstrap; don't block startup.
	go func() {
		timeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		bctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := rag.BootstrapWeaviate(bctx, cfg.WeaviateURL); err != nil {
			log.Warn().Err(err).Str("url", cfg.WeaviateURL).Msg("vector index bootstrap failed")
		} else {
			log.Debug().Str("url", cfg.WeaviateURL).Msg("vector index bootstrap completed")
		}
	}()

	return rag.NewService(provider, provider, idx, log), idx, nil
}
