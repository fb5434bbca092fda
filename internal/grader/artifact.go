package grader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

const (
	// DefaultArtifactDir is where the CLI looks for model artifacts.
	DefaultArtifactDir = "./assets/models"

	// DefaultEncoderName is the artifact name of the baseline encoder.
	DefaultEncoderName = "grader-encoder-v1"

	// SupportedFormat is the artifact format major version this build reads.
	SupportedFormat = "v1"
)

// regressorArtifact is the on-disk form of a LinearRegressor.
type regressorArtifact struct {
	Kind          string  `json:"kind"`
	Name          string  `json:"name"`
	FormatVersion string  `json:"format_version"`
	Intercept     float64 `json:"intercept"`
	Coefficients  []struct {
		Feature string  `json:"feature"`
		Weight  float64 `json:"weight"`
	} `json:"coefficients"`
}

// encoderArtifact is the on-disk form of a OneHotEncoder.
type encoderArtifact struct {
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	FormatVersion string `json:"format_version"`
	HandleUnknown string `json:"handle_unknown"`
	Columns       []struct {
		Name       string   `json:"name"`
		Categories []string `json:"categories"`
	} `json:"columns"`
}

// LoadRegressor reads a regressor artifact.
func LoadRegressor(path string) (*LinearRegressor, error) {
	var a regressorArtifact
	if err := readArtifact(path, "regressor", regressorSchema, &a); err != nil {
		return nil, err
	}
	features := make([]string, len(a.Coefficients))
	coef := make([]float64, len(a.Coefficients))
	for i, c := range a.Coefficients {
		features[i] = c.Feature
		coef[i] = c.Weight
	}
	r, err := NewLinearRegressor(features, coef, a.Intercept)
	if err != nil {
		return nil, &ArtifactError{Path: path, Err: err}
	}
	return r, nil
}

// LoadEncoder reads an encoder artifact.
func LoadEncoder(path string) (*OneHotEncoder, error) {
	var a encoderArtifact
	if err := readArtifact(path, "encoder", encoderSchema, &a); err != nil {
		return nil, err
	}
	policy, err := ParseUnknownPolicy(a.HandleUnknown)
	if err != nil {
		return nil, &ArtifactError{Path: path, Err: err}
	}
	columns := make([]string, len(a.Columns))
	categories := make(map[string][]string, len(a.Columns))
	for i, c := range a.Columns {
		columns[i] = c.Name
		categories[c.Name] = c.Categories
	}
	e, err := NewOneHotEncoder(columns, categories, policy)
	if err != nil {
		return nil, &ArtifactError{Path: path, Err: err}
	}
	return e, nil
}

// BaselineOptions selects the artifacts that make up a baseline model.
type BaselineOptions struct {
	ModelName   string
	EncoderName string
	// Unknown overrides the encoder artifact's policy when non-empty.
	Unknown UnknownPolicy
}

// DefaultBaselineOptions returns the shipped artifact names.
func DefaultBaselineOptions() BaselineOptions {
	return BaselineOptions{
		ModelName:   BaselineName,
		EncoderName: DefaultEncoderName,
	}
}

// LoadBaseline loads "{dir}/{ModelName}.json" and "{dir}/{EncoderName}.json"
// into a BaselineModel.
func LoadBaseline(dir string, opts BaselineOptions) (*BaselineModel, error) {
	if opts.ModelName == "" {
		opts.ModelName = BaselineName
	}
	if opts.EncoderName == "" {
		opts.EncoderName = DefaultEncoderName
	}
	reg, err := LoadRegressor(filepath.Join(dir, opts.ModelName+".json"))
	if err != nil {
		return nil, err
	}
	enc, err := LoadEncoder(filepath.Join(dir, opts.EncoderName+".json"))
	if err != nil {
		return nil, err
	}
	if opts.Unknown != "" {
		enc = enc.WithUnknown(opts.Unknown)
	}
	return NewBaselineModel(opts.ModelName, enc, reg), nil
}

// DefaultFactory returns a Factory that loads the baseline model from dir.
func DefaultFactory(dir string, opts BaselineOptions) Factory {
	return func() (Model, error) {
		return LoadBaseline(dir, opts)
	}
}

// readArtifact validates the file against schema, checks its kind and
// format version, then decodes it into out.
func readArtifact(path, kind string, schema map[string]any, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &ArtifactError{Path: path, Err: err}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ArtifactError{Path: path, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	compiled, err := compiledSchema(kind, schema)
	if err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	if err := compiled.Validate(doc); err != nil {
		return &ArtifactError{Path: path, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var head struct {
		Kind          string `json:"kind"`
		FormatVersion string `json:"format_version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	if head.Kind != kind {
		return &ArtifactError{Path: path, Err: fmt.Errorf("artifact kind %q, want %q", head.Kind, kind)}
	}
	if err := checkFormatVersion(head.FormatVersion); err != nil {
		return &ArtifactError{Path: path, Err: err}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ArtifactError{Path: path, Err: err}
	}
	return nil
}

func checkFormatVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("format_version %q is not a semantic version", v)
	}
	if semver.Major(v) != SupportedFormat {
		return fmt.Errorf("format_version %s not supported (need %s.x.y)", v, SupportedFormat)
	}
	return nil
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

func compiledSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://artifact/%s.json", name)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	schemaCache.Store(name, compiled)
	return compiled, nil
}

var regressorSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"kind":           map[string]any{"const": "regressor"},
		"name":           map[string]any{"type": "string"},
		"format_version": map[string]any{"type": "string"},
		"intercept":      map[string]any{"type": "number"},
		"coefficients": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"feature": map[string]any{"type": "string", "minLength": 1},
					"weight":  map[string]any{"type": "number"},
				},
				"required": []any{"feature", "weight"},
			},
		},
	},
	"required": []any{"kind", "format_version", "intercept", "coefficients"},
}

var encoderSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"kind":           map[string]any{"const": "encoder"},
		"name":           map[string]any{"type": "string"},
		"format_version": map[string]any{"type": "string"},
		"handle_unknown": map[string]any{"enum": []any{"error", "ignore"}},
		"columns": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{"type": "string", "minLength": 1},
					"categories": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items":    map[string]any{"type": "string"},
					},
				},
				"required": []any{"name", "categories"},
			},
		},
	},
	"required": []any{"kind", "format_version", "columns"},
}
