package prompt

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	answers  []string
	prompts  []string
	prefills []string
}

func (s *scriptedReader) SetPrompt(prompt string) { s.prompts = append(s.prompts, prompt) }

func (s *scriptedReader) ReadlineWithDefault(what string) (string, error) {
	s.prefills = append(s.prefills, what)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scriptedReader) Close() error { return nil }

func scripted(answers ...string) (*Prompter, *scriptedReader) {
	r := &scriptedReader{answers: answers}
	return &Prompter{rl: r, loc: time.UTC}, r
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"0.7", 0.7, false},
		{"70%", 0.7, false},
		{" 70 % ", 0.7, false},
		{"7/10", 0.7, false},
		{"7 in 10", 0.7, false},
		{"1", 1, false},
		{"150%", 1.5, false},
		{"", 0, true},
		{"seventy", 0, true},
		{"7/0", 0, true},
		{"a/10", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRatio(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-03-04", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"2025-03-04 18:30", time.Date(2025, 3, 4, 18, 30, 0, 0, time.UTC)},
		{"2025/03/04", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"Mar 4 2025", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"March 4, 2025", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"2025-03-04T18:30:00+02:00", time.Date(2025, 3, 4, 16, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input, time.UTC)
		require.NoError(t, err, tt.input)
		assert.True(t, got.Equal(tt.want), "%s: got %v want %v", tt.input, got, tt.want)
	}

	_, err := ParseDate("next tuesday", time.UTC)
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	for _, yes := range []string{"y", "Yes", "TRUE", "1", " t "} {
		assert.True(t, ParseBool(yes), yes)
	}
	for _, no := range []string{"n", "no", "", "false", "maybe"} {
		assert.False(t, ParseBool(no), no)
	}
}

func TestPrompter_TextRepeatsUntilNonEmpty(t *testing.T) {
	p, r := scripted("", "  ", "Rain tomorrow")

	got, err := p.Text("Statement:", "")
	require.NoError(t, err)
	assert.Equal(t, "Rain tomorrow", got)
	assert.Len(t, r.prompts, 3)
	assert.Equal(t, "Statement: ", r.prompts[0])
}

func TestPrompter_RatioRejectsOutOfRange(t *testing.T) {
	p, r := scripted("abc", "150%", "7 in 10")
	prev := 0.5

	got, err := p.Ratio("Confidence:", &prev)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, got, 1e-12)
	assert.Equal(t, []string{"0.5", "abc", "150%"}, r.prefills, "rejected answers are pre-filled for correction")
}

func TestPrompter_DateMustBeAfterEmission(t *testing.T) {
	emission := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p, _ := scripted("2024-12-31", "2025-01-01 12:00", "2025-01-02")

	got, err := p.Date("Realization date:", nil, emission)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestPrompter_Aborted(t *testing.T) {
	p, _ := scripted()

	_, err := p.Text("Statement:", "")
	assert.True(t, errors.Is(err, ErrAborted))

	_, err = p.Confirm("Is this OK?")
	assert.True(t, errors.Is(err, ErrAborted))
}

func TestPrompter_Bool(t *testing.T) {
	p, _ := scripted("y", "nope")

	yes, err := p.Bool("Outcome:", "")
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := p.Confirm("Solve?")
	require.NoError(t, err)
	assert.False(t, no)
}
