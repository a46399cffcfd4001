package pattern

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNumber is the largest step number a token may carry (two digits)
const MaxNumber = 99

// StepKind identifies what a step does when it fires
type StepKind uint8

const (
	StepRest      StepKind = iota // silence, releases the sounding note
	StepDegree                    // chord member / scale degree
	StepChordNote                 // literal index into the held notes
	StepHold                      // keep the previous note sounding
)

// Step is one parsed pattern position
type Step struct {
	Kind   StepKind
	Index  int // 0-based, signed
	Octave int // octave shift from ' and , marks
	Accent bool
}

// Sounds reports whether the step triggers a new note
func (s Step) Sounds() bool {
	return s.Kind == StepDegree || s.Kind == StepChordNote
}

// Span is the byte range [Start, End) of a step inside the pattern text
type Span struct {
	Start, End int
}

// Pattern is parsed pattern text. Treat as immutable once returned from Parse.
type Pattern struct {
	Text  string
	Steps []Step
	Spans []Span
}

var (
	ErrSyntax = errors.New("unrecognized character")
	ErrRange  = errors.New("step number out of range")
)

// ParseError reports the offending token of a rejected pattern
type ParseError struct {
	Offset int
	Token  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pattern: token %q at offset %d: %v", e.Token, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Empty is the silent pattern
var Empty = &Pattern{}

// Len returns the number of steps
func (p *Pattern) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Steps)
}

// Equal compares parsed steps only; text layout is ignored
func (p *Pattern) Equal(o *Pattern) bool {
	return slices.Equal(p.stepsOrNil(), o.stepsOrNil())
}

func (p *Pattern) stepsOrNil() []Step {
	if p == nil {
		return nil
	}
	return p.Steps
}

// Parse splits text on whitespace and parses each token into a Step.
// Empty text yields a pattern with no steps.
func Parse(text string) (*Pattern, error) {
	p := &Pattern{Text: text}
	i := 0
	for i < len(text) {
		if isSpace(text[i]) {
			i++
			continue
		}
		start := i
		for i < len(text) && !isSpace(text[i]) {
			i++
		}
		step, err := parseToken(text[start:i])
		if err != nil {
			return nil, &ParseError{Offset: start, Token: text[start:i], Err: err}
		}
		p.Steps = append(p.Steps, step)
		p.Spans = append(p.Spans, Span{Start: start, End: i})
	}
	return p, nil
}

// MustParse is Parse for known-good text
func MustParse(text string) *Pattern {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// isSpace accepts ASCII whitespace only; bytes of multi-byte runes stay
// inside their token
func isSpace(c byte) bool {
	return c < utf8.RuneSelf && unicode.IsSpace(rune(c))
}

func parseToken(tok string) (Step, error) {
	switch tok {
	case ".":
		return Step{Kind: StepRest}, nil
	case "_":
		return Step{Kind: StepHold}, nil
	}

	step := Step{Kind: StepDegree}
	body := tok
	if body[0] == 'c' {
		step.Kind = StepChordNote
		body = body[1:]
	}

	// Modifiers trail the number
	end := len(body)
	for end > 0 && isModifier(body[end-1]) {
		end--
	}
	for _, c := range []byte(body[end:]) {
		switch c {
		case '\'':
			step.Octave++
		case ',':
			step.Octave--
		case '!':
			step.Accent = true
		}
	}
	body = body[:end]

	neg := strings.HasPrefix(body, "-")
	digits := strings.TrimPrefix(body, "-")
	if digits == "" || len(digits) > 2 {
		if digits != "" && allDigits(digits) {
			return Step{}, ErrRange
		}
		return Step{}, ErrSyntax
	}
	if !allDigits(digits) {
		return Step{}, ErrSyntax
	}
	n, _ := strconv.Atoi(digits)
	if n < 1 || n > MaxNumber {
		return Step{}, ErrRange
	}
	if neg {
		step.Index = -n
	} else {
		step.Index = n - 1
	}
	return step, nil
}

func isModifier(c byte) bool {
	return c == '\'' || c == ',' || c == '!'
}

func allDigits(s string) bool {
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Render writes steps back out as canonical pattern text
func Render(steps []Step) string {
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// String renders a single step token
func (s Step) String() string {
	switch s.Kind {
	case StepRest:
		return "."
	case StepHold:
		return "_"
	}
	var b strings.Builder
	if s.Kind == StepChordNote {
		b.WriteByte('c')
	}
	if s.Index >= 0 {
		b.WriteString(strconv.Itoa(s.Index + 1))
	} else {
		b.WriteString(strconv.Itoa(s.Index))
	}
	for o := s.Octave; o > 0; o-- {
		b.WriteByte('\'')
	}
	for o := s.Octave; o < 0; o++ {
		b.WriteByte(',')
	}
	if s.Accent {
		b.WriteByte('!')
	}
	return b.String()
}
