// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"fmt"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/tempstate"
)

// Base is embedded by every sensor variant: the correction vector, the
// assigned cursor, and num_temps bookkeeping shared across all of them,
// mirroring the original's SensorDriver base class.
type Base struct {
	driver.Base
	correction []int
	numTemps   int
	ref        *tempstate.Ref
}

// NewSensorBase constructs the shared sensor bookkeeping.
func NewSensorBase(b driver.Base, correction []int) Base {
	return Base{Base: b, correction: append([]int(nil), correction...)}
}

// SetNumTemps records how many temperatures this instance reports per
// cycle, padding or validating the correction vector to match.
func (s *Base) SetNumTemps(n int) error {
	s.numTemps = n
	if len(s.correction) == 0 {
		s.correction = make([]int, n)
		return nil
	}
	return s.checkCorrectionLength()
}

func (s *Base) checkCorrectionLength() error {
	if len(s.correction) > s.numTemps {
		return fmt.Errorf("%w: %d entries for %d temperatures", ErrCorrectionLength, len(s.correction), s.numTemps)
	}
	return nil
}

// NumTemps reports how many temperatures this driver contributes per
// cycle.
func (s *Base) NumTemps() int { return s.numTemps }

// Correction returns the per-slot correction vector.
func (s *Base) Correction() []int { return s.correction }

// BindRef assigns the cursor this driver writes into each cycle.
func (s *Base) BindRef(ref *tempstate.Ref) { s.ref = ref }

// Ref returns the assigned cursor. Panics if BindRef was never called,
// matching a programming error rather than a runtime condition.
func (s *Base) Ref() *tempstate.Ref {
	if s.ref == nil {
		panic(fmt.Sprintf("%v: sensor read before BindRef", driver.ErrBug))
	}
	return s.ref
}

// RefExhausted reports whether the cursor reached the end of its
// assigned range on the most recent ReadTemps call.
func (s *Base) RefExhausted() bool {
	if s.ref == nil {
		return false
	}
	return s.ref.Exhausted()
}

// SkipAll marks every slot unavailable (-128) when an optional sensor
// lost its hardware entirely, exactly as skip_io_error does for the
// optional case.
func (s *Base) SkipAll() {
	r := s.Ref()
	r.Restart()
	for i := 0; i < s.numTemps; i++ {
		r.AddTemp(tempstate.Unavailable)
	}
}

// SkipKeepLast advances every slot without changing its reading, used
// when a transient error is tolerated and the previous value should
// still count toward this cycle's tmax.
func (s *Base) SkipKeepLast() {
	r := s.Ref()
	r.Restart()
	for i := 0; i < s.numTemps; i++ {
		r.SkipTemp()
	}
}
