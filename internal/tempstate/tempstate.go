// SPDX-License-Identifier: BSD-3-Clause

// Package tempstate holds the shared temperature buffer the control loop
// reads from and every sensor driver writes into: raw readings, the
// anti-oscillation bias ("exaggeration") filter, and the running maximum
// used to drive level lookups.
package tempstate

import "math"

// Unavailable is the sentinel a sensor writes for a slot it could not read
// (an optional driver that lost its hardware). It must never win tmax.
const Unavailable = -128

// State is the N-slot buffer shared by the whole control loop for one
// cycle, where N is the sum of every configured sensor's num_temps. It is
// owned by the control loop; sensors only see it through a Ref.
type State struct {
	temps       []int
	biases      []float64
	biasedTemps []int

	tmaxIdx   int
	tmaxValue int

	biasLevel   float64
	sleeptime   float64 // seconds, the configured steady-state sleep
	tmpSleep    float64 // seconds, the current cycle's possibly-shortened sleep
	minTmpSleep float64 // seconds, cap imposed by a fresh bias spike (2s)
}

// New allocates a State for n total temperature slots. biasLevel scales a
// sudden rise into an inflated bias (the -b CLI multiplier, already divided
// by 10); sleeptime is the configured steady-state cycle sleep in seconds.
func New(n int, biasLevel, sleeptime float64) *State {
	return &State{
		temps:       make([]int, n),
		biases:      make([]float64, n),
		biasedTemps: make([]int, n),
		tmaxIdx:     0,
		tmaxValue:   Unavailable,
		biasLevel:   biasLevel,
		sleeptime:   sleeptime,
		tmpSleep:    sleeptime,
		minTmpSleep: 2,
	}
}

// Len returns the total number of temperature slots.
func (s *State) Len() int { return len(s.temps) }

// Restart resets tmax tracking and the cycle sleep back to the configured
// steady-state value before a new round of reads begins. Biases are NOT
// reset here; they persist and decay across cycles.
func (s *State) Restart() {
	s.tmaxValue = Unavailable
	s.tmaxIdx = 0
	s.tmpSleep = s.sleeptime
}

// BiasedTemps returns the current biased-temperature vector. Callers must
// not mutate the returned slice.
func (s *State) BiasedTemps() []int { return s.biasedTemps }

// Temps returns the current raw (corrected) readings. Callers must not
// mutate the returned slice.
func (s *State) Temps() []int { return s.temps }

// TmaxIndex returns the slot index currently holding the maximum biased
// temperature.
func (s *State) TmaxIndex() int { return s.tmaxIdx }

// Tmax returns the current maximum biased temperature.
func (s *State) Tmax() int { return s.tmaxValue }

// Sleeptime returns the sleep duration, in seconds, the control loop
// should use for the cycle that just finished reading.
func (s *State) Sleeptime() float64 { return s.tmpSleep }

// Ref is a non-owning cursor into a contiguous range of State's slots,
// handed to exactly one sensor driver. It replaces the original's
// iterator-into-a-shared-vector with an explicit owner+index pair.
type Ref struct {
	state *State
	base  int
	n     int
	cur   int
}

// NewRef creates a cursor over the half-open slot range [base, base+n).
func NewRef(s *State, base, n int) *Ref {
	return &Ref{state: s, base: base, n: n}
}

// Restart rewinds this sensor's cursor to the start of its slot range.
func (r *Ref) Restart() { r.cur = 0 }

// Len reports how many slots this sensor is expected to fill per cycle.
func (r *Ref) Len() int { return r.n }

// AddTemp applies the bias filter to reading t and advances the cursor by
// one slot, exactly matching TempState::add_temp in the original:
//
//  1. diff = t - prevTemp if prevTemp > 0, else 0
//  2. store t as the new raw reading
//  3. diff > 2: inflate bias to diff*biasLevel, clamp tmpSleep to <= 2s
//  4. else: decay bias toward 0, and add 1s to tmpSleep if it is below
//     sleeptime. State.Restart sets tmpSleep back to sleeptime at the start
//     of every cycle, so a shortened sleep lasts for one cycle only; it is
//     not grown back across cycles.
//  5. biasedTemp = t + int(bias) — truncated toward zero, matching the
//     original C++ implementation's `int(*bias_)` rather than the
//     spec prose's "round"; see DESIGN.md.
//  6. update tmax if this slot's biased temp is now the largest
func (r *Ref) AddTemp(t int) {
	s := r.state
	i := r.base + r.cur

	prev := s.temps[i]
	diff := 0
	if prev > 0 {
		diff = t - prev
	}
	s.temps[i] = t

	if diff > 2 {
		s.biases[i] = float64(diff) * s.biasLevel
		if s.tmpSleep > s.minTmpSleep {
			s.tmpSleep = s.minTmpSleep
		}
	} else {
		if s.tmpSleep < s.sleeptime {
			s.tmpSleep++
		}
		b := s.biases[i]
		if math.Abs(b) < 0.5 {
			s.biases[i] = 0
		} else {
			sign := 1.0
			if b < 0 {
				sign = -1.0
			}
			s.biases[i] = b - sign*(1+math.Abs(b)/5)
		}
	}

	biased := t + int(s.biases[i])
	s.biasedTemps[i] = biased

	if biased > s.tmaxValue {
		s.tmaxValue = biased
		s.tmaxIdx = i
	}

	r.cur++
}

// SkipTemp advances the cursor without changing the stored reading or
// bias, used when a driver tolerates a transient read failure and wants
// to keep the previous value in place for this cycle's tmax computation.
func (r *Ref) SkipTemp() {
	s := r.state
	i := r.base + r.cur
	if s.biasedTemps[i] > s.tmaxValue {
		s.tmaxValue = s.biasedTemps[i]
		s.tmaxIdx = i
	}
	r.cur++
}

// Exhausted reports whether the cursor has advanced exactly n slots,
// i.e. read_temps() filled every slot it was supposed to. The control
// loop treats a short read as MSG_SENSOR_LOST when sanity checks are on.
func (r *Ref) Exhausted() bool { return r.cur == r.n }
