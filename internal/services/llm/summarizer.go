package llm

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quaestor/internal/common"
)

// SummarizerService adapts the provider factory to the narrow Summarize
// contract the report analyzer consumes.
type SummarizerService struct {
	factory *ProviderFactory
	cfg     *common.LLMConfig
	logger  arbor.ILogger
}

func NewSummarizer(factory *ProviderFactory, cfg *common.LLMConfig, logger arbor.ILogger) *SummarizerService {
	return &SummarizerService{
		factory: factory,
		cfg:     cfg,
		logger:  logger,
	}
}

// Summarize sends the prompt to the default provider and returns its
// narrative text. Errors bubble up so the analyzer can fall back.
func (s *SummarizerService) Summarize(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = s.cfg.MaxTokens
	}

	provider := s.factory.DetectProvider("")
	if timeout := s.factory.requestTimeout(provider); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := s.factory.GenerateContent(ctx, &ContentRequest{
		Messages:  []Message{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug().
		Str("provider", string(resp.Provider)).
		Str("model", resp.Model).
		Int("length", len(resp.Text)).
		Dur("elapsed", time.Since(started)).
		Msg("Narrative generated")

	return resp.Text, nil
}

// IsConfigured reports whether any provider has a resolvable API key
func (s *SummarizerService) IsConfigured() bool {
	return s.factory.HasCredentials(context.Background())
}
