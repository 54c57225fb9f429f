// SPDX-License-Identifier: BSD-3-Clause

package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/pkg/hwmon"
)

// libsensorsRegistry is the process-wide shared state every
// LibsensorsSensor consults, mirroring the original's single
// LibsensorsInterface: lazily initialized on first use, and reset
// whenever any client's lookup comes up empty, so that the next lookup by
// any client rescans sysfs (libsensors does not notice kernel modules
// loaded after its own init, so the shared cache is dropped as a whole
// rather than per-client). Clients that already resolved a path keep it;
// a reset does not mark them unavailable or make them resolve again. There is no maintained Go binding for the real
// lm-sensors library in this module's dependency pack (see DESIGN.md), so
// this registry is built on the same sysfs hwmon discovery libsensors
// itself reads from, through the pkg/hwmon package.
type libsensorsRegistry struct {
	mu          sync.Mutex
	initialized bool
	discoverer  *hwmon.Discoverer
}

var sharedLibsensors = &libsensorsRegistry{}

func (r *libsensorsRegistry) ensureInit() *hwmon.Discoverer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		r.discoverer = hwmon.NewDiscoverer()
		r.initialized = true
	}
	return r.discoverer
}

func (r *libsensorsRegistry) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initialized = false
	r.discoverer = nil
}

// LibsensorsSensor looks up one (chip, feature) pair against the shared
// registry in TryInit, until a lookup succeeds; ReadTemps then reads the
// cached attribute path.
type LibsensorsSensor struct {
	Base
	chipName    string
	featureName string
	path        string
	logger      *slog.Logger
}

// NewLibsensorsSensor builds a libsensors-equivalent sensor for the given
// chip and feature label (e.g. chip "coretemp-isa-0000", feature
// "Package id 0").
func NewLibsensorsSensor(policy *driver.Policy, logger *slog.Logger, chipName, featureName string, optional bool, correction int, maxErrors uint) *LibsensorsSensor {
	s := &LibsensorsSensor{
		Base:        NewSensorBase(driver.NewBase(policy, "libsensors sensor", optional, maxErrors), []int{correction}),
		chipName:    chipName,
		featureName: featureName,
		logger:      logger,
	}
	_ = s.SetNumTemps(1)
	return s
}

func (s *LibsensorsSensor) lookup() (string, error) {
	disc := sharedLibsensors.ensureInit()
	ctx := context.Background()
	dev, err := disc.FindDevice(ctx, s.chipName)
	if err != nil {
		sharedLibsensors.invalidate()
		return "", fmt.Errorf("%w: chip %q: %v", driver.ErrDriverInit, s.chipName, err)
	}
	info, err := dev.GetSensorByLabel(ctx, s.featureName)
	if err != nil {
		sharedLibsensors.invalidate()
		return "", fmt.Errorf("%w: chip %q feature %q: %v", driver.ErrDriverInit, s.chipName, s.featureName, err)
	}
	path, err := info.GetAttributePath(hwmon.AttributeInput)
	if err != nil {
		sharedLibsensors.invalidate()
		return "", fmt.Errorf("%w: chip %q feature %q: %v", driver.ErrDriverInit, s.chipName, s.featureName, err)
	}
	return path, nil
}

func (s *LibsensorsSensor) init() error { return nil }

// TryInit resolves the chip/feature pair against the shared registry.
func (s *LibsensorsSensor) TryInit() error {
	return s.Base.TryInit(s.lookup, s.init, func(err error) {
		lvl := slog.LevelInfo
		if s.Optional() {
			lvl = slog.LevelDebug
		}
		s.logger.Log(context.Background(), lvl, "ignoring error initializing libsensors sensor", "chip", s.chipName, "feature", s.featureName, "error", err)
	})
}

// ReadTemps reads the resolved attribute, validating against absolute
// zero per spec.md §4.2.
func (s *LibsensorsSensor) ReadTemps() error {
	return s.RobustOp(func() error {
		path, err := s.Path()
		if err != nil {
			return err
		}
		milli, err := hwmon.ReadInt(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", driver.ErrIO, path, err)
		}
		celsius := milli / 1000
		if celsius <= -273 {
			return fmt.Errorf("%w: %d", ErrInvalidTemperature, celsius)
		}
		r := s.Ref()
		r.Restart()
		r.AddTemp(celsius + s.Correction()[0])
		return nil
	}, func(error) {
		if s.Optional() {
			s.SkipAll()
		} else {
			s.SkipKeepLast()
		}
	})
}
