// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/tempstate"
)

func writeFakeThermalFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thermal")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestTpSensorReadsAllTemperaturesByDefault(t *testing.T) {
	path := writeFakeThermalFile(t, "temperatures:\t45\t50\t38\t-128\n")
	s := NewTpSensor(driver.NewPolicy(), slog.Default(), path, false, nil, nil, 0)

	if err := s.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}
	if s.NumTemps() != 4 {
		t.Fatalf("expected 4 temperatures, got %d", s.NumTemps())
	}

	st := tempstate.New(s.NumTemps(), 1.0, 5)
	s.BindRef(tempstate.NewRef(st, 0, s.NumTemps()))
	if err := s.ReadTemps(); err != nil {
		t.Fatalf("ReadTemps: %v", err)
	}
	want := []int{45, 50, 38, -128}
	got := st.Temps()
	for i, w := range want {
		if got[i] != w {
			t.Errorf("slot %d: want %d, got %d", i, w, got[i])
		}
	}
}

func TestTpSensorHonorsTempIndices(t *testing.T) {
	path := writeFakeThermalFile(t, "temperatures:\t45\t50\t38\n")
	s := NewTpSensor(driver.NewPolicy(), slog.Default(), path, false, []int{0, 2}, nil, 0)

	if err := s.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}
	if s.NumTemps() != 2 {
		t.Fatalf("expected 2 selected temperatures, got %d", s.NumTemps())
	}

	st := tempstate.New(s.NumTemps(), 1.0, 5)
	s.BindRef(tempstate.NewRef(st, 0, s.NumTemps()))
	if err := s.ReadTemps(); err != nil {
		t.Fatalf("ReadTemps: %v", err)
	}
	want := []int{45, 38}
	got := st.Temps()
	for i, w := range want {
		if got[i] != w {
			t.Errorf("slot %d: want %d, got %d", i, w, got[i])
		}
	}
}

func TestTpSensorRejectsUnknownFormat(t *testing.T) {
	path := writeFakeThermalFile(t, "garbage\n")
	s := NewTpSensor(driver.NewPolicy(), slog.Default(), path, false, nil, nil, 0)
	if err := s.TryInit(); err == nil {
		t.Fatal("expected TryInit to fail on an unrecognized file format")
	}
}
