// Package score maps single vital-sign readings to ordinal risk points.
//
// Every function is total: malformed, missing or out-of-table input yields
// Unscorable instead of an error or a guessed default.
package score

import (
	"strconv"
	"strings"

	"github.com/gyeh/vitalrisk/internal/normalize"
)

// Score is the outcome of scoring one field: either Scored(n) or Unscorable.
type Score struct {
	value  int
	scored bool
}

// Unscorable marks a value that could not be classified.
var Unscorable = Score{}

// Scored returns a classified score of v points.
func Scored(v int) Score {
	return Score{value: v, scored: true}
}

// Value returns the points and whether the field was scorable.
func (s Score) Value() (int, bool) {
	return s.value, s.scored
}

// IsScored reports whether the field was classified.
func (s Score) IsScored() bool {
	return s.scored
}

// Effective returns the points counted toward a total: the score itself,
// or 0 for Unscorable.
func (s Score) Effective() int {
	if !s.scored {
		return 0
	}
	return s.value
}

func (s Score) String() string {
	if !s.scored {
		return "unscorable"
	}
	return strconv.Itoa(s.value)
}

// BloodPressure scores a "systolic/diastolic" reading. Rules are checked in
// order and the first match wins; the table has holes (e.g. 100/89.5) which
// are Unscorable.
func BloodPressure(v any) Score {
	s, ok := v.(string)
	if !ok {
		return Unscorable
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Unscorable
	}
	sys, ok := normalize.LeadingFloat(parts[0])
	if !ok {
		return Unscorable
	}
	dia, ok := normalize.LeadingFloat(parts[1])
	if !ok {
		return Unscorable
	}

	switch {
	case sys < 120 && dia < 80:
		return Scored(0) // normal
	case sys >= 120 && sys <= 129 && dia < 80:
		return Scored(1) // elevated
	case (sys >= 130 && sys <= 139) || (dia >= 80 && dia <= 89):
		return Scored(2) // stage 1
	case sys >= 140 || dia >= 90:
		return Scored(3) // stage 2
	}
	return Unscorable
}

// Temperature scores a body temperature in °F. Readings strictly between
// 100.9 and 101 match no band and are Unscorable.
func Temperature(v any) Score {
	t, ok := normalize.ParseNumber(v)
	if !ok {
		return Unscorable
	}
	switch {
	case t <= 99.5:
		return Scored(0)
	case t > 99.5 && t <= 100.9:
		return Scored(1)
	case t >= 101:
		return Scored(2)
	}
	return Unscorable
}

// Age scores a patient age in years. Zero is a valid age.
func Age(v any) Score {
	a, ok := normalize.ParseNumber(v)
	if !ok {
		return Unscorable
	}
	switch {
	case a < 40:
		return Scored(0)
	case a <= 65:
		return Scored(1)
	default:
		return Scored(2)
	}
}
