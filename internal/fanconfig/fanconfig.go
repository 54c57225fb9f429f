// SPDX-License-Identifier: BSD-3-Clause

// Package fanconfig binds one fan driver to its ordered level table: the
// StepwiseMapping of spec.md §3/§4.5.
package fanconfig

import (
	"time"

	"github.com/thinkfan-go/thinkfan/internal/fan"
	"github.com/thinkfan-go/thinkfan/internal/level"
)

// FanConfig owns one fan driver plus the level table driving it.
type FanConfig struct {
	Fan   fan.Driver
	Table *level.Table
}

// New binds a fan driver to a validated level table.
func New(f fan.Driver, table *level.Table) *FanConfig {
	return &FanConfig{Fan: f, Table: table}
}

// Step runs one control-loop cycle's decision for this fan (spec.md §4.5
// step 5): step up (possibly across several levels), or step down once,
// or otherwise ping the watchdog/depulse at the current level. Returns
// whether tmp_sleeptime should be reset to the steady-state value (true
// only on a step-down).
func (fc *FanConfig) Step(biasedTemps []int, tmaxIdx int, sleeptime time.Duration) (resetSleeptime bool, err error) {
	changed, steppedDown := fc.Table.Step(biasedTemps, tmaxIdx)
	if changed {
		if err := fc.Fan.SetSpeed(fc.Table.Current()); err != nil {
			return false, err
		}
		return steppedDown, nil
	}
	return false, fc.Fan.PingWatchdogAndDepulse(fc.Table.Current(), sleeptime)
}

// Close restores the fan's captured initial_state.
func (fc *FanConfig) Close() error { return fc.Fan.Close() }
