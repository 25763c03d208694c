package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ValidationError lists every unmet rule of a draft or resolution.
// It is an expected, recoverable condition.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "invalid prediction: " + strings.Join(e.Reasons, "; ")
}

// Builder accumulates the fields of a new prediction and validates them
// before a Prediction is handed out.
type Builder struct {
	emission   time.Time
	statement  string
	confidence *float64
	realizes   *time.Time
	tags       []string
}

// requiredField is a single named check over a draft. It returns an empty
// string when the field is acceptable.
type requiredField struct {
	name  string
	check func(b *Builder) string
}

// requiredFields is the explicit list of fields a draft must satisfy.
var requiredFields = []requiredField{
	{name: "statement", check: checkStatement},
	{name: "confidence", check: checkConfidence},
	{name: "realization_date", check: checkRealizationDate},
}

// RequiredFields returns the names of the fields every draft must provide.
func RequiredFields() []string {
	names := make([]string, len(requiredFields))
	for i, f := range requiredFields {
		names[i] = f.name
	}
	return names
}

// NewBuilder starts a draft whose emission date is now.
func NewBuilder(now time.Time) *Builder {
	return &Builder{emission: now}
}

// EmissionDate returns the instant the draft was started.
func (b *Builder) EmissionDate() time.Time {
	return b.emission
}

// Statement returns the current draft statement.
func (b *Builder) Statement() string {
	return b.statement
}

// Confidence returns the draft confidence and whether it has been set.
func (b *Builder) Confidence() (float64, bool) {
	if b.confidence == nil {
		return 0, false
	}
	return *b.confidence, true
}

// RealizationDate returns the draft realization date and whether it has been set.
func (b *Builder) RealizationDate() (time.Time, bool) {
	if b.realizes == nil {
		return time.Time{}, false
	}
	return *b.realizes, true
}

// Tags returns the normalized draft tags.
func (b *Builder) Tags() []string {
	return b.tags
}

// SetStatement sets the forecast text.
func (b *Builder) SetStatement(statement string) *Builder {
	b.statement = strings.TrimSpace(statement)
	return b
}

// SetConfidence sets the subjective probability.
func (b *Builder) SetConfidence(confidence float64) *Builder {
	b.confidence = &confidence
	return b
}

// SetRealizationDate sets the date at which the statement resolves.
func (b *Builder) SetRealizationDate(date time.Time) *Builder {
	b.realizes = &date
	return b
}

// SetTags replaces the draft tags with their normalized form.
func (b *Builder) SetTags(raw ...string) *Builder {
	b.tags = NormalizeTags(raw...)
	return b
}

// Errors enumerates every unmet rule. An empty result means Build will succeed.
func (b *Builder) Errors() []string {
	var errs []string
	for _, f := range requiredFields {
		if msg := f.check(b); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

// Build returns the finished prediction, or a *ValidationError listing what
// still needs to be corrected.
func (b *Builder) Build() (*Prediction, error) {
	if errs := b.Errors(); len(errs) > 0 {
		return nil, &ValidationError{Reasons: errs}
	}

	return &Prediction{
		Statement:       b.statement,
		Confidence:      *b.confidence,
		RealizationDate: *b.realizes,
		EmissionDate:    b.emission,
		Tags:            append([]string(nil), b.tags...),
	}, nil
}

func checkStatement(b *Builder) string {
	if b.statement == "" {
		return "statement not set"
	}
	return ""
}

func checkConfidence(b *Builder) string {
	if b.confidence == nil {
		return "confidence not set"
	}
	if c := *b.confidence; math.IsNaN(c) || c < 0.0 || c > 1.0 {
		return fmt.Sprintf("confidence must be between 0 and 1, got %v", c)
	}
	return ""
}

func checkRealizationDate(b *Builder) string {
	if b.realizes == nil {
		return "realization date not set"
	}
	if !b.realizes.After(b.emission) {
		return "realization date must be after emission date"
	}
	return ""
}
