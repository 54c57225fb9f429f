// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/thinkfan-go/thinkfan/internal/driver"
)

const tpSkipPrefix = "temperatures:"

// TpSensor reads /proc/acpi/ibm/thermal, the thinkpad_acpi interface
// reporting whole-degree Celsius readings with no division needed.
type TpSensor struct {
	Base
	path        string
	tempIndices []int // nil means "use every reported slot"
	inUse       []bool
	logger      *slog.Logger
}

// NewTpSensor builds a tpacpi sensor. tempIndices, if non-nil, selects a
// subset of the file's reported temperatures by position.
func NewTpSensor(policy *driver.Policy, logger *slog.Logger, path string, optional bool, tempIndices []int, correction []int, maxErrors uint) *TpSensor {
	s := &TpSensor{
		Base:        NewSensorBase(driver.NewBase(policy, "tpacpi sensor", optional, maxErrors), correction),
		path:        path,
		tempIndices: tempIndices,
		logger:      logger,
	}
	if tempIndices != nil {
		_ = s.SetNumTemps(len(tempIndices))
	}
	return s
}

func (s *TpSensor) lookup() (string, error) { return s.path, nil }

func (s *TpSensor) fields() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", driver.ErrIO, s.path, err)
	}
	text := string(data)
	if !strings.HasPrefix(text, tpSkipPrefix) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, s.path)
	}
	return strings.Fields(text[len(tpSkipPrefix):]), nil
}

func (s *TpSensor) init() error {
	fields, err := s.fields()
	if err != nil {
		return err
	}
	count := len(fields)

	if s.tempIndices != nil {
		if len(s.tempIndices) > count {
			return fmt.Errorf("%w: config specifies %d inputs in %s, but there are only %d", ErrTooFewIndices, len(s.tempIndices), s.path, count)
		}
		s.inUse = make([]bool, count)
		for _, i := range s.tempIndices {
			if i < 0 || i >= count {
				return fmt.Errorf("%w: config specifies input %d in %s, but there are only %d", ErrTooFewIndices, i, s.path, count)
			}
			s.inUse[i] = true
		}
	} else {
		s.inUse = make([]bool, count)
		for i := range s.inUse {
			s.inUse[i] = true
		}
		if err := s.SetNumTemps(count); err != nil {
			return err
		}
	}
	return nil
}

// TryInit resolves and initializes the driver.
func (s *TpSensor) TryInit() error {
	return s.Base.TryInit(s.lookup, s.init, func(err error) {
		lvl := slog.LevelInfo
		if s.Optional() {
			lvl = slog.LevelDebug
		}
		s.logger.Log(context.Background(), lvl, "ignoring error initializing tpacpi sensor", "path", s.path, "error", err)
	})
}

// ReadTemps parses the current set of readings and fills every in-use
// slot, matching TpSensorDriver::read_temps_.
func (s *TpSensor) ReadTemps() error {
	return s.RobustOp(func() error {
		fields, err := s.fields()
		if err != nil {
			return err
		}
		r := s.Ref()
		r.Restart()
		cidx := 0
		for tidx, f := range fields {
			if tidx >= len(s.inUse) || !s.inUse[tidx] {
				continue
			}
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return fmt.Errorf("%w: %s: %v", driver.ErrIO, s.path, err)
			}
			corr := 0
			if cidx < len(s.Correction()) {
				corr = s.Correction()[cidx]
			}
			r.AddTemp(v + corr)
			cidx++
		}
		return nil
	}, func(error) {
		if s.Optional() {
			s.SkipAll()
		} else {
			s.SkipKeepLast()
		}
	})
}
