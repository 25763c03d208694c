// Package prompt collects raw answers from a human on the terminal and
// turns them into the typed values the rest of the application consumes.
// Previous answers are pre-filled so a rejected draft can be corrected
// instead of retyped.
package prompt

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/rotisserie/eris"
)

// ErrAborted is returned when the user interrupts input (Ctrl-C or Ctrl-D).
var ErrAborted = eris.New("input aborted")

// lineReader is the part of readline the prompter uses.
type lineReader interface {
	SetPrompt(prompt string)
	ReadlineWithDefault(what string) (string, error)
	Close() error
}

// Prompter asks questions on the terminal.
type Prompter struct {
	rl  lineReader
	loc *time.Location
}

// New creates a Prompter reading from stdin and writing to out.
func New(out io.Writer) (*Prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdout:                 out,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
	})
	if err != nil {
		return nil, eris.Wrap(err, "prompt: init readline")
	}
	return &Prompter{rl: rl, loc: time.Local}, nil
}

// Close releases the terminal.
func (p *Prompter) Close() error {
	return p.rl.Close()
}

func (p *Prompter) readLine(question, prefill string) (string, error) {
	p.rl.SetPrompt(question + " ")
	line, err := p.rl.ReadlineWithDefault(prefill)
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrAborted
	}
	if err != nil {
		return "", eris.Wrap(err, "prompt: read line")
	}
	return strings.TrimSpace(line), nil
}

// Text asks until a non-empty answer is given.
func (p *Prompter) Text(question, prefill string) (string, error) {
	for {
		answer, err := p.readLine(question, prefill)
		if err != nil || answer != "" {
			return answer, err
		}
	}
}

// OptionalText asks once and accepts an empty answer.
func (p *Prompter) OptionalText(question, prefill string) (string, error) {
	return p.readLine(question, prefill)
}

// Bool asks a yes/no question.
func (p *Prompter) Bool(question, prefill string) (bool, error) {
	answer, err := p.readLine(question, prefill)
	if err != nil {
		return false, err
	}
	return ParseBool(answer), nil
}

// Confirm asks a [y/n] question.
func (p *Prompter) Confirm(question string) (bool, error) {
	return p.Bool(question+" [y/n]", "")
}

// Ratio asks until the answer parses as a ratio in [0, 1].
func (p *Prompter) Ratio(question string, prefill *float64) (float64, error) {
	fill := ""
	if prefill != nil {
		fill = strconv.FormatFloat(*prefill, 'g', -1, 64)
	}
	for {
		answer, err := p.readLine(question, fill)
		if err != nil {
			return 0, err
		}
		if v, perr := ParseRatio(answer); perr == nil && v >= 0 && v <= 1 {
			return v, nil
		}
		fill = answer
	}
}

// Date asks until the answer parses as a date strictly after notBefore.
func (p *Prompter) Date(question string, prefill *time.Time, notBefore time.Time) (time.Time, error) {
	fill := ""
	if prefill != nil {
		fill = prefill.In(p.loc).Format("2006-01-02 15:04")
	}
	for {
		answer, err := p.readLine(question, fill)
		if err != nil {
			return time.Time{}, err
		}
		if t, perr := ParseDate(answer, p.loc); perr == nil && t.After(notBefore) {
			return t, nil
		}
		fill = answer
	}
}
