// SPDX-License-Identifier: BSD-3-Clause

package control

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thinkfan-go/thinkfan/internal/config"
	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/fan"
	"github.com/thinkfan-go/thinkfan/internal/fanconfig"
	"github.com/thinkfan-go/thinkfan/internal/level"
	"github.com/thinkfan-go/thinkfan/internal/tempstate"
)

// fakeSensor is a single-slot sensor.Driver whose reading is controlled by
// the test, used to drive the control loop's step decisions deterministically.
type fakeSensor struct {
	ref   *tempstate.Ref
	temp  int
	short bool // simulate a lost sensor by not filling its slot
}

func (f *fakeSensor) TryInit() error          { return nil }
func (f *fakeSensor) NumTemps() int           { return 1 }
func (f *fakeSensor) BindRef(r *tempstate.Ref) { f.ref = r }
func (f *fakeSensor) Initialized() bool       { return true }
func (f *fakeSensor) RefExhausted() bool      { return f.ref.Exhausted() }
func (f *fakeSensor) ReadTemps() error {
	f.ref.Restart()
	if f.short {
		return nil
	}
	f.ref.AddTemp(f.temp)
	return nil
}

// fakeFan is a fan.Driver recording every SetSpeed call, the number of
// watchdog pings, and whether Close was called.
type fakeFan struct {
	speeds []level.Level
	closed bool
	pings  int
}

func (f *fakeFan) TryInit() error { return nil }
func (f *fakeFan) SetSpeed(l level.Level) error {
	f.speeds = append(f.speeds, l)
	return nil
}
func (f *fakeFan) PingWatchdogAndDepulse(l level.Level, d time.Duration) error {
	f.pings++
	return nil
}
func (f *fakeFan) Close() error      { f.closed = true; return nil }
func (f *fakeFan) Initialized() bool { return true }

var _ fan.Driver = (*fakeFan)(nil)

func newTestConfig(t *testing.T, sensorTemp int) (*config.Config, *fakeSensor, *fakeFan) {
	t.Helper()
	s := &fakeSensor{temp: sensorTemp}
	table, err := level.NewTable([]level.Level{
		level.NewSimple("0", level.Min, level.NegInf, 50),
		level.NewSimple("5", 5, 40, level.PosInf),
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	f := &fakeFan{}
	fc := fanconfig.New(f, table)

	cfg, err := config.New(
		config.WithSensors(s),
		config.WithFanConfigs(fc),
		config.WithPolicy(driver.NewPolicy()),
		config.WithSleeptime(10*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	return cfg, s, f
}

func TestLoopStepsFanUpOnHighTemp(t *testing.T) {
	cfg, _, f := newTestConfig(t, 60)
	l := New(cfg, slog.Default(), nil)

	if err := l.cycle(uuid.New()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(f.speeds) != 1 {
		t.Fatalf("expected one SetSpeed call, got %d", len(f.speeds))
	}
	if f.speeds[0].SpeedNum != 5 {
		t.Fatalf("expected step up to level 5, got %d", f.speeds[0].SpeedNum)
	}
}

func TestLoopSensorLostIsFatalWhenSanityEnabled(t *testing.T) {
	cfg, s, _ := newTestConfig(t, 60)
	s.short = true
	l := New(cfg, slog.Default(), nil)

	err := l.cycle(uuid.New())
	if err == nil {
		t.Fatal("expected an error for a short sensor read")
	}
}

func TestLoopRestoresFansOnShutdown(t *testing.T) {
	cfg, _, f := newTestConfig(t, 30)
	l := New(cfg, slog.Default(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !f.closed {
		t.Fatal("expected fan to be restored (Close called) on shutdown")
	}
}
