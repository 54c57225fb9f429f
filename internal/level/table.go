// SPDX-License-Identifier: BSD-3-Clause

package level

import "fmt"

// Table is the ordered list of Levels bound to one fan, plus the cursor
// into it the control loop advances/retreats each cycle.
type Table struct {
	levels []Level
	cur    int
}

// NewTable validates levels per spec.md §3/§4.7 and returns a Table
// positioned at the lowest level. Validation here is the one
// re-validation pass the core performs regardless of what the (external,
// out-of-scope) textual parser already checked.
func NewTable(levels []Level) (*Table, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: level table must have at least one level", ErrEmpty)
	}

	length := len(levels[0].Lower)
	for _, l := range levels {
		if len(l.Lower) != length || len(l.Upper) != length {
			return nil, fmt.Errorf("%w: inconsistent band length", ErrInconsistent)
		}
		for i := range l.Lower {
			if l.Lower[i] >= l.Upper[i] {
				return nil, fmt.Errorf("%w: level %q band is not strict (%d >= %d)", ErrInconsistent, l.SpeedString, l.Lower[i], l.Upper[i])
			}
		}
	}

	prevNum := Min
	sawReal := false
	for _, l := range levels {
		if l.SpeedNum == Min || l.SpeedNum == Max {
			continue
		}
		if sawReal && l.SpeedNum <= prevNum {
			return nil, fmt.Errorf("%w: speed_num must be strictly ascending", ErrInconsistent)
		}
		prevNum = l.SpeedNum
		sawReal = true
	}

	for k := 0; k < len(levels)-1; k++ {
		lo, hi := levels[k], levels[k+1]
		for i := range lo.Upper {
			if lo.Upper[i] < hi.Lower[i] {
				return nil, fmt.Errorf("%w: gap between level %q and %q", ErrInconsistent, lo.SpeedString, hi.SpeedString)
			}
		}
	}

	return &Table{levels: levels}, nil
}

// Current returns the level the cursor currently points to.
func (t *Table) Current() Level { return t.levels[t.cur] }

// AtFirst reports whether the cursor is at the lowest level.
func (t *Table) AtFirst() bool { return t.cur == 0 }

// AtLast reports whether the cursor is at the highest level.
func (t *Table) AtLast() bool { return t.cur == len(t.levels)-1 }

// Advance moves the cursor to the next-higher level. Callers must check
// !AtLast() first.
func (t *Table) Advance() { t.cur++ }

// Retreat moves the cursor to the next-lower level. Callers must check
// !AtFirst() first.
func (t *Table) Retreat() { t.cur-- }

// HasMaxLevel reports whether any level in the table uses the opaque Max
// sentinel for speed_num (a non-numeric command string that ParseSpeed
// does not recognize, rather than a literal duty cycle).
func (t *Table) HasMaxLevel() bool {
	for _, l := range t.levels {
		if l.SpeedNum == Max {
			return true
		}
	}
	return false
}

// HighestRealSpeedNum returns the greatest speed_num among levels that
// carry an actual numeric value (excluding the Min/Max sentinels), and
// whether any such level exists.
func (t *Table) HighestRealSpeedNum() (highest int, ok bool) {
	for _, l := range t.levels {
		if l.SpeedNum == Min || l.SpeedNum == Max {
			continue
		}
		if !ok || l.SpeedNum > highest {
			highest = l.SpeedNum
			ok = true
		}
	}
	return highest, ok
}

// Step runs the control-loop's per-FanConfig decision for one cycle
// (spec.md §4.5 step 5): while not at the top and the current level says
// step up, advance (possibly repeatedly, matching a sudden jump that
// crosses more than one level in a single cycle); else if not at the
// bottom and the current level says step down, retreat once. Returns
// whether the level changed and, if so, whether it was a step-down (which
// resets tmp_sleeptime to the configured steady-state value).
func (t *Table) Step(biasedTemps []int, tmaxIdx int) (changed bool, steppedDown bool) {
	for !t.AtLast() && t.Current().StepUp(biasedTemps, tmaxIdx) {
		t.Advance()
		changed = true
	}
	if changed {
		return true, false
	}
	if !t.AtFirst() && t.Current().StepDown(biasedTemps, tmaxIdx) {
		t.Retreat()
		return true, true
	}
	return false, false
}
