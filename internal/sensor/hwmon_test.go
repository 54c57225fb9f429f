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

func TestHwmonSensorDividesMilliCelsiusByInteger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp1_input")
	if err := os.WriteFile(path, []byte("45678"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewHwmonSensor(driver.NewPolicy(), slog.Default(), path, false, 0, 0)
	if err := s.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}

	st := tempstate.New(1, 1.0, 5)
	s.BindRef(tempstate.NewRef(st, 0, 1))
	if err := s.ReadTemps(); err != nil {
		t.Fatalf("ReadTemps: %v", err)
	}
	if got := st.Temps()[0]; got != 45 {
		t.Fatalf("expected integer division 45678/1000 == 45, got %d", got)
	}
}

func TestHwmonSensorAppliesCorrection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp1_input")
	if err := os.WriteFile(path, []byte("50000"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewHwmonSensor(driver.NewPolicy(), slog.Default(), path, false, -3, 0)
	if err := s.TryInit(); err != nil {
		t.Fatalf("TryInit: %v", err)
	}

	st := tempstate.New(1, 1.0, 5)
	s.BindRef(tempstate.NewRef(st, 0, 1))
	if err := s.ReadTemps(); err != nil {
		t.Fatalf("ReadTemps: %v", err)
	}
	if got := st.Temps()[0]; got != 47 {
		t.Fatalf("expected 50 + (-3) == 47, got %d", got)
	}
}
