// Package config loads application settings in layers: built-in defaults,
// then an optional YAML file, then COUNSEL_* environment variables.
// LLM provider settings are resolved separately by the llm package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/counsel/internal/grader"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar names the config file when --config is not given.
const PathEnvVar = "COUNSEL_CONFIG"

const envPrefix = "COUNSEL_"

// Config is the application configuration.
type Config struct {
	// DB is the SQLite path. Empty means the store default.
	DB     string       `koanf:"db"`
	Log    LogConfig    `koanf:"log"`
	Models ModelsConfig `koanf:"models"`
	Run    RunConfig    `koanf:"run"`
	Brief  BriefConfig  `koanf:"brief"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// ModelsConfig locates the grader artifacts.
type ModelsConfig struct {
	Dir     string `koanf:"dir" validate:"required"`
	Model   string `koanf:"model" validate:"required"`
	Encoder string `koanf:"encoder" validate:"required"`
	Unknown string `koanf:"unknown" validate:"oneof=error ignore"`
}

// RunConfig holds defaults for `counsel run`.
type RunConfig struct {
	Strategy string `koanf:"strategy"` // YAML strategy file; empty means the default strategy
	Sort     string `koanf:"sort" validate:"oneof=gain complexity expected final"`
	Top      int    `koanf:"top" validate:"gte=0"`
	Save     bool   `koanf:"save"`
}

// BriefConfig holds defaults for `counsel brief`.
type BriefConfig struct {
	Top         int     `koanf:"top" validate:"gte=1,lte=100"`
	MaxTokens   int     `koanf:"max_tokens" validate:"gte=128"`
	Temperature float64 `koanf:"temperature" validate:"gte=0,lte=1"`
	MaxActions  int     `koanf:"max_actions" validate:"gte=1,lte=10"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "warn", Format: "console"},
		Models: ModelsConfig{
			Dir:     grader.DefaultArtifactDir,
			Model:   grader.BaselineName,
			Encoder: grader.DefaultEncoderName,
			Unknown: string(grader.UnknownError),
		},
		Run:   RunConfig{Sort: "gain", Save: true},
		Brief: BriefConfig{Top: 5, MaxTokens: 768, Temperature: 0.4, MaxActions: 4},
	}
}

// envKeys maps COUNSEL_* variables onto config paths. Variables not listed
// (COUNSEL_LLM_*, COUNSEL_CONFIG, API keys) are ignored here.
var envKeys = map[string]string{
	"db":                "db",
	"log_level":         "log.level",
	"log_format":        "log.format",
	"models_dir":        "models.dir",
	"models_model":      "models.model",
	"models_encoder":    "models.encoder",
	"models_unknown":    "models.unknown",
	"run_strategy":      "run.strategy",
	"run_sort":          "run.sort",
	"run_top":           "run.top",
	"run_save":          "run.save",
	"brief_top":         "brief.top",
	"brief_max_tokens":  "brief.max_tokens",
	"brief_temperature": "brief.temperature",
	"brief_max_actions": "brief.max_actions",
}

func envKey(name string) string {
	return envKeys[strings.ToLower(strings.TrimPrefix(name, envPrefix))]
}

// Load builds the configuration. path names a YAML file; when empty,
// COUNSEL_CONFIG is consulted and then $XDG_CONFIG_HOME/counsel/config.yaml
// is used if it exists. An explicitly named file must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	explicit := path != ""
	if !explicit {
		path = defaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "counsel", "config.yaml")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
