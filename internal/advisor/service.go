package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/counsel/internal/llm"
	"go.uber.org/zap"
)

// Service drafts briefs with an LLM provider.
type Service struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a brief service. A nil logger is allowed.
func NewService(provider llm.Provider, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, logger: logger}
}

type briefOutput struct {
	Summary string   `json:"summary"`
	Actions []Action `json:"actions"`
	Risks   []string `json:"risks"`
}

// Brief drafts a brief for one student. Actions naming a feature that is
// not part of the student's plan are dropped.
func (s *Service) Brief(ctx context.Context, sc StudentContext) (*Brief, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeStudentBrief)

	req := llm.Request{
		System:      briefSystemPrompt,
		Messages:    llm.UserMessage(buildBriefUserMessage(sc, s.cfg)),
		Schema:      BriefSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("brief generation: %w", err)
	}

	var out briefOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse brief response: %w", err)
	}

	allowed := make(map[string]bool, len(sc.Changes))
	for _, c := range sc.Changes {
		allowed[c.Feature] = true
	}

	brief := &Brief{
		StudentID: sc.StudentID,
		Summary:   strings.TrimSpace(out.Summary),
		Risks:     out.Risks,
		Model:     resp.Model,
	}
	for _, a := range out.Actions {
		a.Feature = strings.TrimSpace(a.Feature)
		if !allowed[a.Feature] {
			brief.Dropped++
			s.logger.Debug("dropping action outside the plan",
				zap.String("student", sc.StudentID),
				zap.String("feature", a.Feature))
			continue
		}
		if s.cfg.MaxActions > 0 && len(brief.Actions) == s.cfg.MaxActions {
			break
		}
		brief.Actions = append(brief.Actions, a)
	}
	return brief, nil
}

// BriefTop drafts briefs for the first n contexts (all when n <= 0), one
// at a time. A failed student does not stop the rest: the returned error
// joins one *BriefError per failure. Cancellation stops the loop.
func (s *Service) BriefTop(ctx context.Context, contexts []StudentContext, n int) ([]*Brief, error) {
	if n > 0 && n < len(contexts) {
		contexts = contexts[:n]
	}

	var (
		briefs []*Brief
		errs   []error
	)
	for _, sc := range contexts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		b, err := s.Brief(ctx, sc)
		if err != nil {
			s.logger.Warn("brief failed", zap.String("student", sc.StudentID), zap.Error(err))
			errs = append(errs, &BriefError{StudentID: sc.StudentID, Err: err})
			continue
		}
		briefs = append(briefs, b)
	}
	return briefs, errors.Join(errs...)
}

type cohortOutput struct {
	Overview string   `json:"overview"`
	Themes   []string `json:"themes"`
}

// Cohort drafts an overview of a whole run.
func (s *Service) Cohort(ctx context.Context, in CohortInput) (*CohortSummary, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeCohortSummary)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      cohortSystemPrompt,
		Messages:    llm.UserMessage(buildCohortUserMessage(in)),
		Schema:      CohortSchema,
		MaxTokens:   s.cfg.CohortMaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("cohort summary: %w", err)
	}

	var out cohortOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse cohort response: %w", err)
	}
	return &CohortSummary{Overview: strings.TrimSpace(out.Overview), Themes: out.Themes}, nil
}
