package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/counsel/internal/store"
	"go.uber.org/zap"
)

// AuditProvider is a decorator that records every attempt in the LLM audit
// trail. Recording failures are logged and never fail the request.
type AuditProvider struct {
	inner    Provider
	provider string
	repo     store.EventRepo
	logger   *zap.Logger
}

// WithAudit wraps p so each Generate call is appended to repo.
func WithAudit(p Provider, providerName string, repo store.EventRepo, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditProvider{inner: p, provider: providerName, repo: repo, logger: logger}
}

func (a *AuditProvider) ModelID() string { return a.inner.ModelID() }

func (a *AuditProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := a.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    a.provider,
		Model:       a.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: renderRequest(req),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	// The request context may already be canceled; the audit row is
	// still wanted.
	if logErr := a.repo.AppendLLMRequest(context.WithoutCancel(ctx), ev); logErr != nil {
		a.logger.Warn("failed to record LLM request event", zap.Error(logErr))
	}
	a.logger.Debug("LLM request",
		zap.String("purpose", ev.Purpose),
		zap.String("model", ev.Model),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
		zap.Int64("latency_ms", ev.LatencyMs),
		zap.Bool("success", ev.Success))
	return resp, err
}

// renderRequest builds the human-readable request shown by `llm view`.
func renderRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
