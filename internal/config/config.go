// SPDX-License-Identifier: BSD-3-Clause

// Package config holds the in-process Config aggregate the control loop
// consumes: the sensor list, the fan/level bindings, and the tuning
// parameters the CLI exposes, plus the single re-validation pass
// performed once at construction per spec.md §4.7.
package config

import (
	"fmt"
	"time"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/fan"
	"github.com/thinkfan-go/thinkfan/internal/fanconfig"
	"github.com/thinkfan-go/thinkfan/internal/sensor"
	"github.com/thinkfan-go/thinkfan/internal/tempstate"
)

// pwmSafeMax is the floor a PWM fan's highest numeric level must reach
// before a level using the Max (opaque, non-numeric command) sentinel is
// accepted under sanity checking, mirroring MSG_CONF_MAXLVL's warning that
// a PWM fan which never commands a near-ceiling duty cycle may never
// actually spin up to full speed. 255 is the standard Linux pwm[1-*] sysfs ceiling.
const pwmSafeMax = 255

// config is the unexported struct the functional options mutate; New
// copies it into the returned, validated Config.
type config struct {
	sensors       []sensor.Driver
	fanConfigs    []*fanconfig.FanConfig
	biasLevel     float64
	sleeptime     time.Duration
	policy        *driver.Policy
	dndDisk       bool
	depulse       time.Duration
}

// Config is the validated, ready-to-run aggregate the control loop reads.
// TempState is allocated here once every sensor's num_temps is known, and
// each sensor is bound to its disjoint slice via tempstate.Ref.
type Config struct {
	Sensors    []sensor.Driver
	FanConfigs []*fanconfig.FanConfig
	TempState  *tempstate.State
	Policy     *driver.Policy
	Sleeptime  time.Duration
}

// Option configures a Config under construction, in the teacher's
// functional-options style.
type Option interface{ apply(*config) }

type sensorsOption struct{ sensors []sensor.Driver }

func (o *sensorsOption) apply(c *config) { c.sensors = append(c.sensors, o.sensors...) }

// WithSensors appends sensor drivers to the configuration, in
// declaration order (spec.md §5's ordering guarantee depends on this
// order being preserved).
func WithSensors(sensors ...sensor.Driver) Option { return &sensorsOption{sensors: sensors} }

type fanConfigsOption struct{ fanConfigs []*fanconfig.FanConfig }

func (o *fanConfigsOption) apply(c *config) { c.fanConfigs = append(c.fanConfigs, o.fanConfigs...) }

// WithFanConfigs appends fan/level bindings to the configuration.
func WithFanConfigs(fanConfigs ...*fanconfig.FanConfig) Option {
	return &fanConfigsOption{fanConfigs: fanConfigs}
}

type biasLevelOption struct{ level float64 }

func (o *biasLevelOption) apply(c *config) { c.biasLevel = o.level }

// WithBiasLevel sets the exaggeration multiplier applied to a sudden
// temperature rise (the -b flag, already divided by 10).
func WithBiasLevel(level float64) Option { return &biasLevelOption{level: level} }

type sleeptimeOption struct{ d time.Duration }

func (o *sleeptimeOption) apply(c *config) { c.sleeptime = o.d }

// WithSleeptime sets the steady-state cycle sleep (the -s flag).
func WithSleeptime(d time.Duration) Option { return &sleeptimeOption{d: d} }

type policyOption struct{ p *driver.Policy }

func (o *policyOption) apply(c *config) { c.policy = o.p }

// WithPolicy attaches the process-wide driver policy (sanity checks,
// assume-resume-safe, tolerate-errors) every driver shares.
func WithPolicy(p *driver.Policy) Option { return &policyOption{p: p} }

// New builds and validates a Config from options, performing the one
// re-validation pass spec.md §4.7 requires regardless of how the
// (out-of-scope) textual parser already checked its output.
func New(opts ...Option) (*Config, error) {
	c := &config{sleeptime: 5 * time.Second, biasLevel: 1.0, policy: driver.NewPolicy()}
	for _, o := range opts {
		o.apply(c)
	}

	if len(c.sensors) == 0 {
		return nil, fmt.Errorf("%w: config has no sensors", ErrInvalid)
	}
	if len(c.fanConfigs) == 0 {
		return nil, fmt.Errorf("%w: config has no fan configs", ErrInvalid)
	}

	total := 0
	for _, s := range c.sensors {
		if s.NumTemps() < 1 {
			return nil, fmt.Errorf("%w: sensor reports zero temperatures", ErrInvalid)
		}
		total += s.NumTemps()
	}

	if c.policy.ChkSanity() {
		for _, fc := range c.fanConfigs {
			if _, isPWM := fc.Fan.(*fan.HwmonFan); !isPWM {
				continue
			}
			if !fc.Table.HasMaxLevel() {
				continue
			}
			highest, ok := fc.Table.HighestRealSpeedNum()
			if !ok || highest < pwmSafeMax {
				return nil, fmt.Errorf("%w: PWM fan uses a non-numeric level but its highest numeric level (%d) is below the safe maximum (%d); enable -DANGEROUS mode to accept this", ErrInvalid, highest, pwmSafeMax)
			}
		}
	}

	state := tempstate.New(total, c.biasLevel, c.sleeptime.Seconds())
	base := 0
	for _, s := range c.sensors {
		s.BindRef(tempstate.NewRef(state, base, s.NumTemps()))
		base += s.NumTemps()
	}

	return &Config{
		Sensors:    c.sensors,
		FanConfigs: c.fanConfigs,
		TempState:  state,
		Policy:     c.policy,
		Sleeptime:  c.sleeptime,
	}, nil
}
