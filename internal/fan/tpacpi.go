// SPDX-License-Identifier: BSD-3-Clause

package fan

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/level"
)

// TpFan drives /proc/acpi/ibm/fan, thinkpad_acpi's legacy fan control
// interface. It owns a watchdog (re-armed on every write so firmware
// never takes back control) and an optional "depulse" cycle used on old,
// worn-out fans to avoid an audible pulsing oscillation.
type TpFan struct {
	driver.Base

	path             string
	watchdog         time.Duration
	depulse          time.Duration
	initialState     string
	lastWatchdogPing time.Time
	currentSpeed     string
	logger           *slog.Logger
}

// NewTpFan constructs a tpacpi fan at a fixed, non-discovered path
// (/proc/acpi/ibm/fan in production), with the fixed 120s watchdog the
// original always uses for this backend.
func NewTpFan(policy *driver.Policy, logger *slog.Logger, path string, optional bool, maxErrors uint, depulse time.Duration) *TpFan {
	return &TpFan{
		Base:     driver.NewBase(policy, "tpacpi fan", optional, maxErrors),
		path:     path,
		watchdog: 120 * time.Second,
		depulse:  depulse,
		logger:   logger,
	}
}

func (f *TpFan) lookup() (string, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", driver.ErrIO, f.path, err)
	}
	fh.Close()
	return f.path, nil
}

// init parses /proc/acpi/ibm/fan for the current "level:" line (captured
// as initial_state, restored on Close) and for "commands:" advertising
// "level <level>" support, then arms the watchdog.
func (f *TpFan) init() error {
	fh, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", driver.ErrIO, f.path, err)
	}
	defer fh.Close()

	ctrlSupported := false
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := scanner.Text()
		if f.initialState == "" && strings.Contains(line, "level:") {
			if idx := strings.LastIndexAny(line, " \t"); idx >= 0 {
				rest := line[idx+1:]
				if nul := strings.IndexByte(rest, 0); nul >= 0 {
					rest = rest[:nul]
				}
				f.initialState = rest
				f.logger.Debug("saved initial fan state", "path", f.path, "state", f.initialState)
			}
		} else if strings.Contains(line, "commands:") && strings.Contains(line, "level <level>") {
			ctrlSupported = true
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", driver.ErrIO, f.path, err)
	}
	if !ctrlSupported {
		return fmt.Errorf("%w: %s", ErrNoCtrlSupport, f.path)
	}
	if f.initialState == "" {
		return fmt.Errorf("%w: %s", ErrNoInitialState, f.path)
	}

	out, err := os.OpenFile(f.path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", driver.ErrIO, f.path, err)
	}
	defer out.Close()
	if _, err := fmt.Fprintf(out, "watchdog %d", int(f.watchdog.Seconds())); err != nil {
		return fmt.Errorf("%w: %s: %v", driver.ErrIO, f.path, err)
	}
	return nil
}

// TryInit resolves and initializes the driver, tolerating errors per the
// shared robustOp policy.
func (f *TpFan) TryInit() error {
	return f.Base.TryInit(f.lookup, f.init, func(err error) {
		lvl := slog.LevelInfo
		if f.Optional() {
			lvl = slog.LevelDebug
		}
		f.logger.Log(context.Background(), lvl, "ignoring error initializing tpacpi fan", "path", f.path, "error", err)
	})
}

func (f *TpFan) writeLevel(cmd string) error {
	return f.RobustOp(func() error {
		out, err := os.OpenFile(f.path, os.O_WRONLY|os.O_TRUNC, 0)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", driver.ErrIO, f.path, err)
		}
		defer out.Close()
		if _, err := out.WriteString(cmd); err != nil {
			return fmt.Errorf("%w: %s: %v", driver.ErrIO, f.path, err)
		}
		f.currentSpeed = cmd
		return nil
	}, func(error) {})
}

// SetSpeed writes the level's command string (e.g. "level 3", "level
// auto", "level disengaged") and re-arms the watchdog clock.
func (f *TpFan) SetSpeed(l level.Level) error {
	if err := f.writeLevel(l.SpeedString); err != nil {
		return err
	}
	f.lastWatchdogPing = time.Now()
	return nil
}

// PingWatchdogAndDepulse implements the depulse cycle (briefly disengage,
// sleep, re-set the level) when configured, else re-issues the current
// level shortly before the watchdog would expire.
func (f *TpFan) PingWatchdogAndDepulse(l level.Level, sleeptime time.Duration) error {
	if f.depulse > 0 {
		if err := f.writeLevel("level disengaged"); err != nil {
			return err
		}
		time.Sleep(f.depulse)
		return f.SetSpeed(l)
	}
	if f.lastWatchdogPing.Add(f.watchdog).Add(-sleeptime).Before(time.Now()) ||
		f.lastWatchdogPing.Add(f.watchdog).Add(-sleeptime).Equal(time.Now()) {
		f.logger.Debug("watchdog ping")
		return f.SetSpeed(l)
	}
	return nil
}

// Close writes the captured initial_state back, exactly matching the
// original's destructor (not "level auto" — see DESIGN.md's resolution
// of the corresponding Open Question).
func (f *TpFan) Close() error {
	if !f.Initialized() {
		return nil
	}
	if f.initialState == "" {
		return nil
	}
	out, err := os.OpenFile(f.path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		f.logger.Error("failed to restore fan state", "path", f.path, "error", err)
		return nil
	}
	defer out.Close()
	if _, err := fmt.Fprintf(out, "level %s", f.initialState); err != nil {
		f.logger.Error("failed to restore fan state", "path", f.path, "error", err)
	} else {
		f.logger.Debug("restored initial fan state", "path", f.path, "state", f.initialState)
	}
	return nil
}
