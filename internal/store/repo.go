package store

import (
	"context"
	"time"
)

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After (events only)
	Before int64     // sequence < Before (events only)
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Target is one feature target of a saved run.
type Target struct {
	Feature string `json:"feature"`
	Value   string `json:"value"`
}

// Run is the summary of one strategy evaluation.
type Run struct {
	ID             string
	Sequence       int64 // append order, assigned on save
	CreatedAt      time.Time
	Strategy       string
	Model          string
	DataPath       string
	Targets        []Target
	Students       int
	MeanGain       float64
	MeanComplexity float64
	MaxGain        float64
}

// RunOutcome is one student's stored result within a run.
type RunOutcome struct {
	StudentID       string
	FirstName       string
	FamilyName      string
	FinalGrade      float64
	ExpectedGrade   float64
	PerformanceGain float64
	Complexity      float64
	ImpLevels       map[string]float64
}

// RunRepo stores strategy runs.
type RunRepo interface {
	// SaveRun stores a run and its outcomes in one transaction.
	SaveRun(ctx context.Context, run Run, outcomes []RunOutcome) error

	// ListRuns returns runs newest first.
	ListRuns(ctx context.Context, opts QueryOpts) ([]Run, error)

	// GetRun returns a run, or nil if it does not exist.
	GetRun(ctx context.Context, id string) (*Run, error)

	// RunOutcomes returns a run's outcomes in their saved order.
	RunOutcomes(ctx context.Context, runID string) ([]RunOutcome, error)

	// DeleteRun removes a run and its outcomes.
	DeleteRun(ctx context.Context, id string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM calls for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to the LLM audit trail.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
