// SPDX-License-Identifier: BSD-3-Clause

// Package control implements the reactive control loop (spec.md §4.5):
// read every sensor, advance or retreat each fan's level cursor, sleep,
// and repeat, with signal-driven reload/shutdown/diagnostics between
// cycles.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/thinkfan-go/thinkfan/internal/config"
)

// signalFlag mirrors the original's single process-wide `interrupted`
// variable: set asynchronously by the signal goroutine, polled by the
// loop between cycles. Handlers never touch driver state directly.
type signalFlag int32

const (
	none signalFlag = iota
	sigShutdown
	sigReload
	sigDumpTemps
)

// Loop runs the reactive state machine over one Config at a time,
// reloading it on SIGHUP via loadConfig and restoring every fan's
// captured initial_state on shutdown.
type Loop struct {
	cfg        *config.Config
	loadConfig func() (*config.Config, error)
	logger     *slog.Logger

	interrupted  int32
	tolerateOnce int32
}

// New builds a Loop around an already-validated Config. loadConfig is
// invoked on SIGHUP to build a replacement Config; pass nil if config
// reload isn't supported by the embedder (the loop then logs and ignores
// SIGHUP).
func New(cfg *config.Config, logger *slog.Logger, loadConfig func() (*config.Config, error)) *Loop {
	return &Loop{cfg: cfg, logger: logger, loadConfig: loadConfig}
}

// Run executes cycles until interrupted by SIGINT/SIGTERM or ctx is
// canceled, restoring every fan's initial state before returning.
func (l *Loop) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigCh)

	go l.handleSignals(ctx, sigCh)

	defer l.closeFans()

	for {
		runID := uuid.New()
		if err := l.cycle(runID); err != nil {
			return err
		}

		if atomic.CompareAndSwapInt32(&l.tolerateOnce, 1, 0) {
			l.cfg.Policy.SetTolerateErrors(false)
		}

		if atomic.CompareAndSwapInt32(&l.interrupted, int32(sigReload), int32(none)) {
			l.reload()
		}
		if atomic.CompareAndSwapInt32(&l.interrupted, int32(sigDumpTemps), int32(none)) {
			l.logTempState()
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if atomic.LoadInt32(&l.interrupted) == int32(sigShutdown) {
			return nil
		}

		sleep := time.Duration(l.cfg.TempState.Sleeptime() * float64(time.Second))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(sleep):
		}
		if atomic.LoadInt32(&l.interrupted) == int32(sigShutdown) {
			return nil
		}
	}
}

// cycle runs exactly one iteration of spec.md §4.5's numbered steps.
func (l *Loop) cycle(runID uuid.UUID) error {
	log := l.logger.With("run_id", runID.String())
	l.cfg.TempState.Restart()

	for _, s := range l.cfg.Sensors {
		if err := s.ReadTemps(); err != nil {
			return fmt.Errorf("reading sensor: %w", err)
		}
		if !s.RefExhausted() && l.cfg.Policy.ChkSanity() {
			return fmt.Errorf("%w", ErrSensorLost)
		}
	}

	biased := l.cfg.TempState.BiasedTemps()
	tmaxIdx := l.cfg.TempState.TmaxIndex()

	for _, fc := range l.cfg.FanConfigs {
		sleep := time.Duration(l.cfg.TempState.Sleeptime() * float64(time.Second))
		reset, err := fc.Step(biased, tmaxIdx, sleep)
		if err != nil {
			return fmt.Errorf("driving fan: %w", err)
		}
		if reset {
			l.cfg.TempState.Restart()
		}
	}

	log.Debug("cycle complete", "tmax", l.cfg.TempState.Tmax(), "sleeptime", l.cfg.TempState.Sleeptime())
	return nil
}

func (l *Loop) handleSignals(ctx context.Context, sigCh <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			switch sig {
			case syscall.SIGHUP:
				atomic.StoreInt32(&l.interrupted, int32(sigReload))
			case syscall.SIGINT, syscall.SIGTERM:
				atomic.StoreInt32(&l.interrupted, int32(sigShutdown))
			case syscall.SIGUSR1:
				atomic.StoreInt32(&l.interrupted, int32(sigDumpTemps))
			case syscall.SIGUSR2:
				l.cfg.Policy.SetTolerateErrors(true)
				atomic.StoreInt32(&l.tolerateOnce, 1)
			}
		}
	}
}

// reload builds a new Config first; only if that succeeds are the current
// Config's fans closed and the new Config swapped in. On failure the old
// Config is kept (spec.md §3 Lifecycles, scenario S6).
func (l *Loop) reload() {
	if l.loadConfig == nil {
		l.logger.Warn("SIGHUP received but config reload is not wired")
		return
	}
	newCfg, err := l.loadConfig()
	if err != nil {
		l.logger.Error("CONF_RELOAD_ERR: keeping previous configuration", "error", err)
		return
	}
	l.closeFans()
	l.cfg = newCfg
	l.logger.Info("configuration reloaded")
}

// logTempState reproduces the original's SIGUSR1 dump: every raw and
// biased reading currently held in TempState, followed by a tmax/sleeptime
// summary. Individual sensors don't expose their own readings, only the
// Ref range bound into the shared TempState, so the dump is over the
// state as a whole rather than per-sensor.
func (l *Loop) logTempState() {
	l.logger.Info("temperature state",
		"sensor_count", len(l.cfg.Sensors),
		"temps", l.cfg.TempState.Temps(),
		"biased_temps", l.cfg.TempState.BiasedTemps(),
		"tmax", l.cfg.TempState.Tmax(),
		"sleeptime", l.cfg.TempState.Sleeptime(),
	)
}

func (l *Loop) closeFans() {
	for _, fc := range l.cfg.FanConfigs {
		if err := fc.Close(); err != nil {
			l.logger.Error("failed to restore fan state", "error", err)
		}
	}
}
