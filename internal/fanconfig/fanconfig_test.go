// SPDX-License-Identifier: BSD-3-Clause

package fanconfig

import (
	"testing"
	"time"

	"github.com/thinkfan-go/thinkfan/internal/level"
)

type stubFan struct {
	speeds []level.Level
	pings  int
}

func (f *stubFan) TryInit() error { return nil }
func (f *stubFan) SetSpeed(l level.Level) error {
	f.speeds = append(f.speeds, l)
	return nil
}
func (f *stubFan) PingWatchdogAndDepulse(level.Level, time.Duration) error {
	f.pings++
	return nil
}
func (f *stubFan) Close() error      { return nil }
func (f *stubFan) Initialized() bool { return true }

func newTable(t *testing.T) *level.Table {
	t.Helper()
	table, err := level.NewTable([]level.Level{
		level.NewSimple("0", level.Min, level.NegInf, 50),
		level.NewSimple("5", 5, 40, level.PosInf),
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestFanConfigStepUpCallsSetSpeed(t *testing.T) {
	f := &stubFan{}
	fc := New(f, newTable(t))

	reset, err := fc.Step([]int{60}, 0, time.Second)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if reset {
		t.Fatal("step-up should not request a sleeptime reset")
	}
	if len(f.speeds) != 1 || f.speeds[0].SpeedNum != 5 {
		t.Fatalf("expected one SetSpeed call to level 5, got %+v", f.speeds)
	}
}

func TestFanConfigUnchangedPingsWatchdog(t *testing.T) {
	f := &stubFan{}
	fc := New(f, newTable(t))

	if _, err := fc.Step([]int{45}, 0, time.Second); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if f.pings != 1 {
		t.Fatalf("expected a watchdog ping when the level doesn't change, got %d pings", f.pings)
	}
}

func TestFanConfigStepDownRequestsSleeptimeReset(t *testing.T) {
	f := &stubFan{}
	fc := New(f, newTable(t))

	if _, err := fc.Step([]int{60}, 0, time.Second); err != nil {
		t.Fatalf("step up: %v", err)
	}
	reset, err := fc.Step([]int{30}, 0, time.Second)
	if err != nil {
		t.Fatalf("step down: %v", err)
	}
	if !reset {
		t.Fatal("expected step-down to request a sleeptime reset")
	}
}
