// SPDX-License-Identifier: BSD-3-Clause

package fan

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/level"
)

func writeFakePwm(t *testing.T) (pwmPath string) {
	t.Helper()
	dir := t.TempDir()
	pwmPath = filepath.Join(dir, "pwm1")
	if err := os.WriteFile(pwmPath, []byte("0"), 0o644); err != nil {
		t.Fatalf("WriteFile pwm: %v", err)
	}
	if err := os.WriteFile(pwmPath+"_enable", []byte("2"), 0o644); err != nil {
		t.Fatalf("WriteFile pwm_enable: %v", err)
	}
	return pwmPath
}

func TestHwmonFanCapturesAndRestoresEnableState(t *testing.T) {
	pwmPath := writeFakePwm(t)
	f := NewHwmonFan(driver.NewPolicy(), slog.Default(), pwmPath, false, 0)

	if err := f.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}
	if f.initialState != "2" {
		t.Fatalf("expected captured initial enable state %q, got %q", "2", f.initialState)
	}
	enabled, err := os.ReadFile(pwmPath + "_enable")
	if err != nil || string(enabled) != "1" {
		t.Fatalf("expected manual mode (1) engaged after TryInit, got %q, err=%v", enabled, err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	restored, err := os.ReadFile(pwmPath + "_enable")
	if err != nil || string(restored) != "2" {
		t.Fatalf("expected enable selector restored to %q, got %q, err=%v", "2", restored, err)
	}
}

func TestHwmonFanSetSpeedWritesPwmValue(t *testing.T) {
	pwmPath := writeFakePwm(t)
	f := NewHwmonFan(driver.NewPolicy(), slog.Default(), pwmPath, false, 0)
	if err := f.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}

	lvl := level.NewSimple("128", 128, 40, 50)
	if err := f.SetSpeed(lvl); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	got, err := os.ReadFile(pwmPath)
	if err != nil || string(got) != "128" {
		t.Fatalf("expected pwm value %q written, got %q, err=%v", "128", got, err)
	}
}

func TestHwmonFanPingWatchdogIsNoOp(t *testing.T) {
	f := NewHwmonFan(driver.NewPolicy(), slog.Default(), "/nonexistent", false, 0)
	if err := f.PingWatchdogAndDepulse(level.NewSimple("1", 1, 0, 1), 0); err != nil {
		t.Fatalf("expected PingWatchdogAndDepulse to be a no-op, got %v", err)
	}
}
