// SPDX-License-Identifier: BSD-3-Clause

package fan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/hwmonpath"
	"github.com/thinkfan-go/thinkfan/internal/level"
	"github.com/thinkfan-go/thinkfan/pkg/hwmon"
)

// HwmonFan drives a sysfs PWM file (pwmN) and its sibling enable selector
// (pwmN_enable). Unlike the tpacpi backend it has no watchdog; once manual
// mode is engaged it stays engaged until Close restores the original
// selector value.
type HwmonFan struct {
	driver.Base

	path         string
	basePath     string
	name         string
	index        int
	initialState string
	logger       *slog.Logger
}

// NewHwmonFan builds a direct-path hwmon fan driver.
func NewHwmonFan(policy *driver.Policy, logger *slog.Logger, path string, optional bool, maxErrors uint) *HwmonFan {
	return &HwmonFan{Base: driver.NewBase(policy, "hwmon fan", optional, maxErrors), path: path, logger: logger}
}

// NewHwmonFanByIndex builds a hwmon fan driver resolved by chip name and
// 1-based pwm index under basePath.
func NewHwmonFanByIndex(policy *driver.Policy, logger *slog.Logger, basePath, name string, index int, optional bool, maxErrors uint) *HwmonFan {
	return &HwmonFan{Base: driver.NewBase(policy, "hwmon fan", optional, maxErrors), basePath: basePath, name: name, index: index, logger: logger}
}

func (f *HwmonFan) lookup() (string, error) {
	p, err := hwmonpath.Resolve(context.Background(), hwmonpath.PWM, f.path, f.basePath, f.name, f.index)
	if err != nil {
		return "", fmt.Errorf("%w: %v", driver.ErrDriverInit, err)
	}
	f.path = p
	return p, nil
}

func (f *HwmonFan) enablePath() string { return f.path + "_enable" }

func (f *HwmonFan) init() error {
	if f.initialState == "" {
		s, err := hwmon.ReadString(f.enablePath())
		if err != nil {
			return f.wrapHwmonErr(err)
		}
		f.initialState = s
		f.logger.Debug("saved initial fan state", "path", f.path, "state", f.initialState)
	}
	if err := hwmon.WriteString(f.enablePath(), "1"); err != nil {
		return f.wrapHwmonErr(err)
	}
	return nil
}

func (f *HwmonFan) wrapHwmonErr(err error) error {
	return fmt.Errorf("%w: %s: %v", driver.ErrIO, f.path, err)
}

// TryInit resolves and initializes the driver.
func (f *HwmonFan) TryInit() error {
	return f.Base.TryInit(f.lookup, f.init, func(err error) {
		lvl := slog.LevelInfo
		if f.Optional() {
			lvl = slog.LevelDebug
		}
		f.logger.Log(context.Background(), lvl, "ignoring error initializing hwmon fan", "path", f.path, "error", err)
	})
}

// SetSpeed writes the level's numeric speed to the pwm file. On EINVAL
// (the kernel silently reverted pwmN_enable to automatic across a suspend
// cycle) it re-initializes once and retries, matching the original.
func (f *HwmonFan) SetSpeed(l level.Level) error {
	return f.RobustOp(func() error {
		err := hwmon.WriteInt(f.path, l.SpeedNum)
		if err != nil && errors.Is(err, hwmon.ErrInvalidValue) {
			f.logger.Warn("pwm enable reverted to automatic, re-initializing", "path", f.path)
			if ierr := f.init(); ierr != nil {
				return f.wrapHwmonErr(ierr)
			}
			err = hwmon.WriteInt(f.path, l.SpeedNum)
		}
		if err != nil {
			return f.wrapHwmonErr(err)
		}
		return nil
	}, func(error) {})
}

// PingWatchdogAndDepulse is a no-op for hwmon fans: there is no watchdog
// and depulse is meaningless on a PWM interface (spec.md §9).
func (f *HwmonFan) PingWatchdogAndDepulse(level.Level, time.Duration) error { return nil }

// Close restores the enable selector to its pre-thinkfan value.
func (f *HwmonFan) Close() error {
	if !f.Initialized() || f.initialState == "" {
		return nil
	}
	if err := hwmon.WriteString(f.enablePath(), strings.TrimSpace(f.initialState)); err != nil {
		f.logger.Error("failed to restore fan state", "path", f.path, "error", err)
	} else {
		f.logger.Debug("restored initial fan state", "path", f.path, "state", f.initialState)
	}
	return nil
}
