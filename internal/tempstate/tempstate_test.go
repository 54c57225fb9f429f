// SPDX-License-Identifier: BSD-3-Clause

package tempstate

import "testing"

func TestAddTempTracksTmax(t *testing.T) {
	s := New(2, 1.0, 5)
	r0 := NewRef(s, 0, 1)
	r1 := NewRef(s, 1, 1)

	s.Restart()
	r0.Restart()
	r1.Restart()
	r0.AddTemp(40)
	r1.AddTemp(55)

	if s.Tmax() != 55 {
		t.Fatalf("tmax = %d, want 55", s.Tmax())
	}
	if s.TmaxIndex() != 1 {
		t.Fatalf("tmaxIdx = %d, want 1", s.TmaxIndex())
	}
}

func TestBiasInflationOnJump(t *testing.T) {
	// S2: bias_level = 0.5, readings 30 then 40 => diff 10 => bias = 5
	s := New(1, 0.5, 5)
	r := NewRef(s, 0, 1)

	s.Restart()
	r.Restart()
	r.AddTemp(30)
	if s.BiasedTemps()[0] != 30 {
		t.Fatalf("first reading biased = %d, want 30", s.BiasedTemps()[0])
	}

	s.Restart()
	r.Restart()
	r.AddTemp(40)
	if got, want := s.BiasedTemps()[0], 45; got != want {
		t.Fatalf("biased temp = %d, want %d", got, want)
	}
	if s.Sleeptime() > 2 {
		t.Fatalf("tmp_sleeptime = %v, want <= 2", s.Sleeptime())
	}
}

func TestBiasDecaysTowardZero(t *testing.T) {
	s := New(1, 1.0, 5)
	r := NewRef(s, 0, 1)

	s.Restart()
	r.Restart()
	r.AddTemp(50) // diff 0 from zero-value prev, no bias

	s.Restart()
	r.Restart()
	r.AddTemp(62) // diff 12 > 2 -> bias = 12

	for i := 0; i < 20; i++ {
		s.Restart()
		r.Restart()
		r.AddTemp(62) // diff 0, decay each cycle
	}
	if s.BiasedTemps()[0] != 62 {
		t.Fatalf("biased temp after decay = %d, want 62 (remaining bias below 1 truncates to 0)", s.BiasedTemps()[0])
	}
}

func TestSkipTempPreservesReadingForTmax(t *testing.T) {
	s := New(1, 1.0, 5)
	r := NewRef(s, 0, 1)
	s.Restart()
	r.Restart()
	r.AddTemp(50)

	s.Restart()
	r.Restart()
	r.SkipTemp()
	if s.Tmax() != 50 {
		t.Fatalf("tmax after skip = %d, want 50 (kept previous biased temp)", s.Tmax())
	}
	if !r.Exhausted() {
		t.Fatal("cursor should be exhausted after one slot filled via skip")
	}
}
