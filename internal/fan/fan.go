// SPDX-License-Identifier: BSD-3-Clause

// Package fan implements the FanDriver variants (tpacpi, hwmon): lookup,
// one-shot init capturing the pre-thinkfan state, speed writes, watchdog
// maintenance, and restore-on-exit.
package fan

import (
	"time"

	"github.com/thinkfan-go/thinkfan/internal/level"
)

// Driver is the capability every fan backend provides to the control
// loop. SetSpeed is called whenever the level cursor moves;
// PingWatchdogAndDepulse is called every cycle the level does not change, so a tpacpi watchdog
// never expires and reverts control to firmware.
type Driver interface {
	TryInit() error
	SetSpeed(l level.Level) error
	PingWatchdogAndDepulse(l level.Level, sleeptime time.Duration) error
	// Close restores whatever pre-thinkfan state init() captured
	// (initial_state), matching the original's RAII destructor.
	Close() error
	Initialized() bool
}
