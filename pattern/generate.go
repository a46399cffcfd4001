package pattern

import (
	"math/rand"
	"strconv"
	"strings"

	"go-arp/util"
)

// Euclid defaults, matching the generator popup
const (
	DefaultHits  = 3
	DefaultSteps = 8

	RandomLength = 8
)

// EuclidHit reports whether position i of an E(hits, steps) rhythm sounds.
// Inputs must already be clamped with hits <= steps.
func EuclidHit(i, hits, steps int) bool {
	return (i*hits)%steps < hits
}

// Euclid spreads hits as evenly as possible over steps and returns the
// result as pattern text. Hits are numbered 1, 2, 3... so the rhythm walks
// up the chord; empty positions are rests. More hits than steps gives a
// fully dense pattern.
func Euclid(hits, steps int) string {
	hits = util.Clamp(hits, 0, MaxNumber)
	steps = util.Clamp(steps, 1, MaxNumber)
	if hits > steps {
		hits = steps
	}

	tokens := make([]string, steps)
	n := 0
	for i := range tokens {
		if EuclidHit(i, hits, steps) {
			n++
			tokens[i] = strconv.Itoa(n)
		} else {
			tokens[i] = "."
		}
	}
	return strings.Join(tokens, " ")
}

// Random returns an arbitrary RandomLength-step pattern
func Random() string {
	return RandomN(nil, RandomLength)
}

// RandomN builds n random tokens from r (the global source when r is nil).
// The first token always sounds so the result is never silent.
func RandomN(r *rand.Rand, n int) string {
	intn := rand.Intn
	if r != nil {
		intn = r.Intn
	}
	n = util.Clamp(n, 1, MaxNumber)

	steps := make([]Step, n)
	for i := range steps {
		roll := intn(10)
		switch {
		case i > 0 && roll == 0:
			steps[i] = Step{Kind: StepRest}
		case i > 0 && roll == 1:
			steps[i] = Step{Kind: StepHold}
		default:
			steps[i] = Step{Kind: StepDegree, Index: intn(4)}
			switch intn(6) {
			case 0:
				steps[i].Octave = 1
			case 1:
				steps[i].Octave = -1
			}
			steps[i].Accent = intn(8) == 0
		}
	}
	return Render(steps)
}
