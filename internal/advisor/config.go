package advisor

// Config holds brief generation settings.
type Config struct {
	MaxTokens        int
	CohortMaxTokens  int
	Temperature      float64
	MaxActions       int
	IncludeZeroDelta bool // list features already at target in the prompt
}

// DefaultConfig returns defaults for brief generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:       768,
		CohortMaxTokens: 512,
		Temperature:     0.4,
		MaxActions:      4,
	}
}
