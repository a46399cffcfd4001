package sequencer

import (
	"fmt"
	"strings"
)

// Subdivision is the musical length of one pattern step
type Subdivision int

const (
	SubHalf Subdivision = iota
	SubQuarter
	SubEighth
	SubSixteenth
	SubThirtySecond
	SubHalfTriplet
	SubQuarterTriplet
	SubEighthTriplet
	SubSixteenthTriplet
	SubThirtySecondTriplet
	SubDottedQuarter
	SubDottedEighth
	SubDottedSixteenth
	SubdivisionCount
)

const DefaultSubdivision = SubSixteenth

// step length in beats (1 = quarter note)
var subdivisionBeats = []float64{
	2.0,
	1.0,
	0.5,
	0.25,
	0.125,
	2.0 / 3.0,
	1.0 / 3.0,
	0.5 / 3.0,
	0.25 / 3.0,
	0.125 / 3.0,
	1.0 * 3.0 / 2.0,
	0.5 * 3.0 / 2.0,
	0.25 * 3.0 / 2.0,
}

var subdivisionNames = []string{
	"1/2", "1/4", "1/8", "1/16", "1/32",
	"1/2T", "1/4T", "1/8T", "1/16T", "1/32T",
	"1/4.", "1/8.", "1/16.",
}

func (s Subdivision) Valid() bool {
	return s >= 0 && s < SubdivisionCount
}

// Beats returns the step length in quarter notes. Unknown values fall back
// to the default.
func (s Subdivision) Beats() float64 {
	if !s.Valid() {
		s = DefaultSubdivision
	}
	return subdivisionBeats[s]
}

func (s Subdivision) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Subdivision(%d)", int(s))
	}
	return subdivisionNames[s]
}

// ParseSubdivision accepts names like "1/16", "1/8T" or "1/4."
func ParseSubdivision(name string) (Subdivision, error) {
	for i, n := range subdivisionNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Subdivision(i), nil
		}
	}
	return DefaultSubdivision, fmt.Errorf("%w: subdivision %q", ErrInvalidParameter, name)
}
