package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/counsel/internal/store"
	"go.uber.org/zap"
)

// NewProvider builds the configured backend and wraps it so that every
// attempt is audited and transient failures are retried:
// caller → retry → audit → backend. A nil repo skips auditing.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if repo != nil {
		base = WithAudit(base, cfg.Provider, repo, logger)
	}
	return WithRetry(base, cfg.Retry, logger), nil
}

// NewProviderFromEnv resolves configuration from COUNSEL_* variables and,
// when the selected provider has no key there, from the vendors' standard
// API key variables.
func NewProviderFromEnv(ctx context.Context, repo store.EventRepo, logger *zap.Logger) (Provider, Config, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, cfg, fmt.Errorf("no LLM provider configured: %w", err)
		}
		cfg = discovered
	}
	p, err := NewProvider(ctx, cfg, repo, logger)
	return p, cfg, err
}
