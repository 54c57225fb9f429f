// SPDX-License-Identifier: BSD-3-Clause

// Package sensor implements the SensorDriver variants (tpacpi, hwmon,
// atasmart, nvml, libsensors): each resolves a hardware-specific path or
// handle and fills its assigned tempstate.Ref slots once per cycle.
package sensor

import "github.com/thinkfan-go/thinkfan/internal/tempstate"

// Driver is the capability every sensor backend provides to the control
// loop.
type Driver interface {
	TryInit() error
	// ReadTemps restarts the assigned Ref and fills exactly NumTemps()
	// slots via AddTemp/SkipTemp, per spec.md §4.2's read_temps contract.
	ReadTemps() error
	NumTemps() int
	// BindRef assigns the cursor this driver will write into; called once
	// by Config construction after NumTemps is known.
	BindRef(ref *tempstate.Ref)
	Initialized() bool
	// RefExhausted reports whether the last ReadTemps call filled every
	// slot it was assigned, per the read_temps contract in spec.md §4.2.
	RefExhausted() bool
}
