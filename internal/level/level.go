// SPDX-License-Identifier: BSD-3-Clause

// Package level implements the fan-level table: temperature bands mapped
// to fan commands, their ordering/overlap invariants, and the simple vs.
// complex (per-sensor-vector) comparison rules.
package level

import "math"

// Canonical speed_num sentinels. MIN maps "auto"/"disengaged"/"full-speed"
// strings; MAX marks an opaque, non-numeric command string.
const (
	Min = math.MinInt32
	Max = math.MaxInt32
)

// bandSentinel values used for the first level's lower bound and the last
// level's upper bound, standing in for -infinity/+infinity.
const (
	NegInf = math.MinInt32
	PosInf = math.MaxInt32
)

// Level is one row of a fan's level table. Simple levels carry exactly one
// lower/upper bound compared against tmax; complex levels carry one bound
// pair per sensor slot (length L <= N), compared per-index.
type Level struct {
	SpeedString string
	SpeedNum    int
	Lower       []int
	Upper       []int
}

// Simple reports whether this level has exactly one band, i.e. is compared
// only against tmax rather than per-sensor-slot.
func (l Level) Simple() bool { return len(l.Lower) == 1 }

// NewSimple builds a level compared only against tmax.
func NewSimple(speedString string, speedNum, lower, upper int) Level {
	return Level{SpeedString: speedString, SpeedNum: speedNum, Lower: []int{lower}, Upper: []int{upper}}
}

// NewComplex builds a level compared against the first len(lower) biased
// temperatures individually. lower and upper must have equal length.
func NewComplex(speedString string, speedNum int, lower, upper []int) Level {
	return Level{SpeedString: speedString, SpeedNum: speedNum, Lower: lower, Upper: upper}
}

// StepUp reports "this level is no longer enough": for a simple level,
// biasedTemps[tmaxIdx] >= Upper[0]; for a complex level, any covered index
// reaches its own upper bound.
func (l Level) StepUp(biasedTemps []int, tmaxIdx int) bool {
	if l.Simple() {
		return biasedTemps[tmaxIdx] >= l.Upper[0]
	}
	for i, up := range l.Upper {
		if i >= len(biasedTemps) {
			break
		}
		if biasedTemps[i] >= up {
			return true
		}
	}
	return false
}

// StepDown reports "we have cooled enough to retreat": for a simple level,
// biasedTemps[tmaxIdx] < Lower[0]; for a complex level, every covered index
// has dropped below its own lower bound.
func (l Level) StepDown(biasedTemps []int, tmaxIdx int) bool {
	if l.Simple() {
		return biasedTemps[tmaxIdx] < l.Lower[0]
	}
	for i, lo := range l.Lower {
		if i >= len(biasedTemps) {
			continue
		}
		if biasedTemps[i] >= lo {
			return false
		}
	}
	return true
}

// ParseSpeed maps a level's command string to its canonical numeric form.
// "auto", "disengaged" and the thinkfan-recognized "full-speed" synonym
// (see DESIGN.md) map to Min; an explicit integer maps to itself; anything
// else is an opaque command mapped to Max.
func ParseSpeed(s string) int {
	switch s {
	case "auto", "disengaged", "full-speed":
		return Min
	}
	if n, ok := parseInt(s); ok {
		return n
	}
	return Max
}

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
