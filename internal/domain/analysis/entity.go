package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Priority enum
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Request carries everything the caller supplied for one brand analysis.
// Optional slices may be nil; nil means "let the model synthesize its own".
type Request struct {
	BrandName   string            `json:"brandName"`
	WebsiteURL  string            `json:"websiteUrl,omitempty"`
	Email       string            `json:"email,omitempty"`
	Competitors []string          `json:"competitors,omitempty"`
	Topics      []string          `json:"topics,omitempty"`
	TestPrompts []string          `json:"testPrompts,omitempty"`
	Personas    string            `json:"targetPersonas,omitempty"`
	Priority    Priority          `json:"priority,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

const (
	maxBrandLen      = 100
	maxCompetitors   = 5
	maxTopics        = 4
	maxTestPrompts   = 4
	minTestPromptLen = 10
	maxTestPromptLen = 500
	maxPersonasLen   = 1000
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// ValidationError aggregates per-field failures for the 400 response body.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// Validate normalizes and checks the request. The brand name is trimmed in
// place so downstream code never sees surrounding whitespace.
func (r *Request) Validate() error {
	var fields []FieldError

	r.BrandName = strings.TrimSpace(r.BrandName)
	if r.BrandName == "" {
		fields = append(fields, FieldError{"brandName", "is required"})
	} else if len(r.BrandName) > maxBrandLen {
		fields = append(fields, FieldError{"brandName", fmt.Sprintf("must be at most %d characters", maxBrandLen)})
	}

	if len(r.Competitors) > maxCompetitors {
		fields = append(fields, FieldError{"competitors", fmt.Sprintf("at most %d entries allowed", maxCompetitors)})
	}
	if len(r.Topics) > maxTopics {
		fields = append(fields, FieldError{"topics", fmt.Sprintf("at most %d entries allowed", maxTopics)})
	}
	if len(r.TestPrompts) > maxTestPrompts {
		fields = append(fields, FieldError{"testPrompts", fmt.Sprintf("at most %d entries allowed", maxTestPrompts)})
	}
	for i, p := range r.TestPrompts {
		if l := len(strings.TrimSpace(p)); l < minTestPromptLen || l > maxTestPromptLen {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("testPrompts[%d]", i),
				Message: fmt.Sprintf("must be %d-%d characters", minTestPromptLen, maxTestPromptLen),
			})
		}
	}
	if len(r.Personas) > maxPersonasLen {
		fields = append(fields, FieldError{"targetPersonas", fmt.Sprintf("must be at most %d characters", maxPersonasLen)})
	}
	switch r.Priority {
	case "", PriorityLow, PriorityNormal, PriorityHigh:
	default:
		fields = append(fields, FieldError{"priority", "must be one of: low, normal, high"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// TokenUsage value object
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// Add sums usage across the primary and continuation calls.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		Input:  u.Input + o.Input,
		Output: u.Output + o.Output,
		Total:  u.Total + o.Total,
	}
}

// Result is what the upstream generation produced for one prompt.
type Result struct {
	Text     string        `json:"text"`
	Usage    TokenUsage    `json:"usage"`
	Duration time.Duration `json:"-"`
	Model    string        `json:"model"`
}

// comprehensiveThreshold: responses at least this long are considered a full
// multi-section analysis rather than a short standard answer.
const comprehensiveThreshold = 4000

// Depth classifies the result as "comprehensive" or "standard" by length.
func (r *Result) Depth() string {
	if len(r.Text) >= comprehensiveThreshold {
		return "comprehensive"
	}
	return "standard"
}
