// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/hwmonpath"
	"github.com/thinkfan-go/thinkfan/pkg/hwmon"
)

// HwmonSensor reads one tempN_input file under /sys/class/hwmon. Readings
// are milli-Celsius; converted by integer division, matching the
// original's `tmp/1000` (not a float divide).
type HwmonSensor struct {
	Base
	path     string
	basePath string
	name     string
	index    int
	logger   *slog.Logger
}

// NewHwmonSensor builds a direct-path hwmon sensor.
func NewHwmonSensor(policy *driver.Policy, logger *slog.Logger, path string, optional bool, correction int, maxErrors uint) *HwmonSensor {
	s := &HwmonSensor{
		Base:   NewSensorBase(driver.NewBase(policy, "hwmon sensor", optional, maxErrors), []int{correction}),
		path:   path,
		logger: logger,
	}
	_ = s.SetNumTemps(1)
	return s
}

// NewHwmonSensorByIndex builds a hwmon sensor resolved by chip name and
// 1-based temp index under basePath.
func NewHwmonSensorByIndex(policy *driver.Policy, logger *slog.Logger, basePath, name string, index int, optional bool, correction int, maxErrors uint) *HwmonSensor {
	s := &HwmonSensor{
		Base:     NewSensorBase(driver.NewBase(policy, "hwmon sensor", optional, maxErrors), []int{correction}),
		basePath: basePath,
		name:     name,
		index:    index,
		logger:   logger,
	}
	_ = s.SetNumTemps(1)
	return s
}

func (s *HwmonSensor) lookup() (string, error) {
	p, err := hwmonpath.Resolve(context.Background(), hwmonpath.Temperature, s.path, s.basePath, s.name, s.index)
	if err != nil {
		return "", fmt.Errorf("%w: %v", driver.ErrDriverInit, err)
	}
	return p, nil
}

func (s *HwmonSensor) init() error {
	path, err := s.Path()
	if err != nil {
		return err
	}
	if !hwmon.FileExists(path) {
		return fmt.Errorf("%w: %s", driver.ErrIO, path)
	}
	return nil
}

// TryInit resolves and initializes the driver.
func (s *HwmonSensor) TryInit() error {
	return s.Base.TryInit(s.lookup, s.init, func(err error) {
		lvl := slog.LevelInfo
		if s.Optional() {
			lvl = slog.LevelDebug
		}
		s.logger.Log(context.Background(), lvl, "ignoring error initializing hwmon sensor", "error", err)
	})
}

// ReadTemps reads the milli-Celsius value and converts to whole degrees.
func (s *HwmonSensor) ReadTemps() error {
	return s.RobustOp(func() error {
		path, err := s.Path()
		if err != nil {
			return err
		}
		milli, err := hwmon.ReadInt(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", driver.ErrIO, path, err)
		}
		r := s.Ref()
		r.Restart()
		r.AddTemp(milli/1000 + s.Correction()[0])
		return nil
	}, func(error) {
		if s.Optional() {
			s.SkipAll()
		} else {
			s.SkipKeepLast()
		}
	})
}
