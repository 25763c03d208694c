// Package models defines the core domain entities for the predict application.
// A Prediction is a forecast statement with a subjective confidence and a date
// at which it is expected to resolve. Predictions are created through a
// validating Builder and later resolved with an outcome and optional proof.
//
// Status is never stored: it is derived from the resolution fields and the
// "now" passed in by the caller, which keeps every status query deterministic.
package models

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// ShortIDLength is the number of fingerprint characters used as the
// user-facing identifier.
const ShortIDLength = 6

// Status is the lifecycle state of a prediction relative to a point in time.
type Status string

const (
	// StatusFuture means the realization date has not been reached yet.
	StatusFuture Status = "future"
	// StatusPending means the prediction is due but has no outcome.
	StatusPending Status = "pending"
	// StatusSolved means an outcome has been recorded.
	StatusSolved Status = "solved"
)

// Prediction represents a single forecast.
//
// Statement, Confidence, RealizationDate and EmissionDate form the identity of
// the prediction and must not change once it has been built. Outcome, Proof
// and Tags are the mutable resolution and bookkeeping fields.
type Prediction struct {
	Statement       string    `json:"statement"`
	Confidence      float64   `json:"confidence"`       // Subjective probability (0–1)
	RealizationDate time.Time `json:"realization_date"` // When the statement is expected to resolve
	EmissionDate    time.Time `json:"emission_date"`    // When the prediction was made
	Outcome         *bool     `json:"outcome,omitempty"`
	Proof           string    `json:"proof,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
}

// Fingerprint returns the deterministic content hash of the prediction.
func (p *Prediction) Fingerprint() string {
	var b strings.Builder
	b.WriteString(p.Statement)
	b.WriteString(strconv.FormatFloat(p.Confidence, 'g', -1, 64))
	b.WriteString(p.RealizationDate.UTC().Format(time.RFC3339Nano))
	b.WriteString(p.EmissionDate.UTC().Format(time.RFC3339Nano))

	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ShortID returns the user-facing identifier, a fixed-length prefix of the
// fingerprint. Distinct predictions may collide at this length.
func (p *Prediction) ShortID() string {
	return p.Fingerprint()[:ShortIDLength]
}

// IsResolved reports whether an outcome has been recorded.
func (p *Prediction) IsResolved() bool {
	return p.Outcome != nil
}

// Status derives the lifecycle state at the given instant.
func (p *Prediction) Status(now time.Time) Status {
	if p.Outcome != nil {
		return StatusSolved
	}
	if p.RealizationDate.After(now) {
		return StatusFuture
	}
	return StatusPending
}

// IsDue reports whether the realization date has been reached.
func (p *Prediction) IsDue(now time.Time) bool {
	return !p.RealizationDate.After(now)
}

// HasTag reports whether the prediction carries the tag (case-insensitive).
func (p *Prediction) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Resolve records the outcome and optional proof. A solved prediction cannot
// be resolved again; delete and recreate it instead.
func (p *Prediction) Resolve(outcome bool, proof string) error {
	if p.Outcome != nil {
		return &ValidationError{Reasons: []string{"prediction is already solved"}}
	}
	p.Outcome = &outcome
	p.Proof = strings.TrimSpace(proof)
	return nil
}

// SetTags replaces the tags with the normalized form of raw. Each element of
// raw may itself hold comma separated tags.
func (p *Prediction) SetTags(raw ...string) {
	p.Tags = NormalizeTags(raw...)
}

// SetProof replaces the proof of a solved prediction.
func (p *Prediction) SetProof(proof string) error {
	if p.Outcome == nil {
		return &ValidationError{Reasons: []string{"proof can only be set on a solved prediction"}}
	}
	p.Proof = strings.TrimSpace(proof)
	return nil
}

// Clone returns a deep copy.
func (p *Prediction) Clone() *Prediction {
	c := *p
	if p.Outcome != nil {
		o := *p.Outcome
		c.Outcome = &o
	}
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	return &c
}

// NormalizeTag trims and upper-cases a single tag.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// NormalizeTags splits comma separated input into trimmed, upper-cased tags.
// Empty tokens are dropped and duplicates keep their first position.
func NormalizeTags(raw ...string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, chunk := range raw {
		for _, token := range strings.Split(chunk, ",") {
			tag := NormalizeTag(token)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}
