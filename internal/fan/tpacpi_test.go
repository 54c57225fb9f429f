// SPDX-License-Identifier: BSD-3-Clause

package fan

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/level"
)

func writeFakeTpFanFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fan")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestTpFanCapturesInitialStateAndRestoresOnClose(t *testing.T) {
	path := writeFakeTpFanFile(t, "status:\t\tenabled\nlevel:\t\t5\ncommands:\tlevel <level> (0-7, auto, disengaged, full-speed)\nwatchdog:\t0\n")
	f := NewTpFan(driver.NewPolicy(), slog.Default(), path, false, 0, 0)

	if err := f.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}
	if f.initialState != "5" {
		t.Fatalf("expected captured initial state %q, got %q", "5", f.initialState)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "level 5" {
		t.Fatalf("expected restored contents %q, got %q", "level 5", string(got))
	}
}

func TestTpFanInitFailsWithoutLevelControlCommand(t *testing.T) {
	path := writeFakeTpFanFile(t, "status:\t\tenabled\nlevel:\t\t5\ncommands:\tdisengaged\n")
	f := NewTpFan(driver.NewPolicy(), slog.Default(), path, false, 0, 0)

	if err := f.TryInit(); err == nil {
		t.Fatal("expected TryInit to fail when level <level> isn't advertised")
	}
}

func TestTpFanSetSpeedWritesLevelCommand(t *testing.T) {
	path := writeFakeTpFanFile(t, "level:\t\tauto\ncommands:\tlevel <level> (0-7, auto, disengaged, full-speed)\n")
	f := NewTpFan(driver.NewPolicy(), slog.Default(), path, false, 0, 0)
	if err := f.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}

	lvl := level.NewSimple("level 3", 3, 40, 50)
	if err := f.SetSpeed(lvl); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "level 3" {
		t.Fatalf("expected %q written, got %q", "level 3", string(got))
	}
}

func TestTpFanPingWatchdogDepulsesWhenConfigured(t *testing.T) {
	path := writeFakeTpFanFile(t, "level:\t\tauto\ncommands:\tlevel <level> (0-7, auto, disengaged, full-speed)\n")
	f := NewTpFan(driver.NewPolicy(), slog.Default(), path, false, 0, time.Millisecond)
	if err := f.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}

	lvl := level.NewSimple("level 3", 3, 40, 50)
	if err := f.PingWatchdogAndDepulse(lvl, 5*time.Second); err != nil {
		t.Fatalf("PingWatchdogAndDepulse: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "level 3" {
		t.Fatalf("expected the level restored to %q after depulsing, got %q", "level 3", string(got))
	}
}
