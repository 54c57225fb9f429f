// SPDX-License-Identifier: BSD-3-Clause

// Command thinkfan is the daemon entry point: it parses the CLI, wires the
// process-wide driver.Policy and structured logger, loads the configuration,
// and runs the control loop until a terminating signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/thinkfan-go/thinkfan/internal/config"
	"github.com/thinkfan-go/thinkfan/internal/control"
	"github.com/thinkfan-go/thinkfan/internal/driver"
	"github.com/thinkfan-go/thinkfan/internal/tflog"
)

// Exit codes, stable for script compatibility (spec.md §6/§7).
const (
	exitOK = iota
	exitInvocationOrConfig
	exitUnexpected
	exitUnknownFlag
)

const pidFilePath = "/var/run/thinkfan.pid"

// errInvocation marks a flag value outside its accepted range, as opposed
// to a flag pflag could not parse at all.
var errInvocation = errors.New("invalid invocation")

const bugBanner = `thinkfan-go has encountered an internal error it did not expect to survive.
This is a bug. Please file a report with the log output above attached.`

type cliFlags struct {
	help         bool
	foreground   bool
	quiet        bool
	verbose      bool
	noSanity     bool
	resumeSafe   bool
	dndDisk      bool
	configPath   string
	maxSleep     int
	bias         float64
	depulse      float64
	depulseSet   bool
}

func parseFlags(args []string) (*cliFlags, error) {
	fs := pflag.NewFlagSet("thinkfan", pflag.ContinueOnError)
	f := &cliFlags{}

	fs.BoolVarP(&f.help, "help", "h", false, "print usage and exit")
	fs.BoolVarP(&f.foreground, "foreground", "n", false, "stay in the foreground, do not daemonize")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "quieter logging")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "verbose logging")
	fs.BoolVarP(&f.noSanity, "no-sanity", "D", false, "disable sanity checks")
	fs.BoolVarP(&f.resumeSafe, "resume-safe", "z", false, "assume resume from suspend is safe")
	fs.BoolVarP(&f.dndDisk, "dnd-disk", "d", false, "do not disturb sleeping disks")
	fs.StringVarP(&f.configPath, "config", "c", "/etc/thinkfan.conf", "path to the configuration file")
	fs.IntVarP(&f.maxSleep, "max-sleep", "s", 5, "max sleep time between cycles, in seconds (0..15)")
	fs.Float64VarP(&f.bias, "bias", "b", 0, "bias multiplier, -10..30 (used as /10)")
	fs.Float64VarP(&f.depulse, "depulse", "p", 0.5, "depulse seconds, 0..10 (default 0.5 if given with no value)")
	fs.Lookup("depulse").NoOptDefVal = "0.5"

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: thinkfan [-hnqvDz] [-d] [-c PATH] [-s INT] [-b FLOAT] [-p [FLOAT]]")
		fmt.Fprintln(os.Stderr, fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.depulseSet = fs.Lookup("depulse").Changed

	if f.maxSleep < 0 {
		return nil, fmt.Errorf("%w: -s must not be negative", errInvocation)
	}
	if f.maxSleep == 0 || f.maxSleep > 15 {
		fmt.Fprintf(os.Stderr, "WARNING: -s %d is outside the recommended 1..15 range\n", f.maxSleep)
	}
	if f.bias < -10 || f.bias > 30 {
		return nil, fmt.Errorf("%w: -b must be between -10 and 30", errInvocation)
	}
	if f.depulse < 0 || f.depulse > 10 {
		return nil, fmt.Errorf("%w: -p must be between 0 and 10", errInvocation)
	}

	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		if errors.Is(err, errInvocation) {
			return exitInvocationOrConfig
		}
		return exitUnknownFlag
	}
	if flags.help {
		pflag.CommandLine.Usage()
		return exitOK
	}
	// -n is accepted for CLI compatibility; this port never daemonizes
	// (no fork/setsid), so it has no behavioral effect. -d (DndDisk) is a
	// per-AtasmartSensor constructor argument rather than a process-wide
	// flag, so it only takes effect once an embedder's config parser
	// builds sensors from this path; loadConfigFile is an out-of-scope
	// stub here, so -d is parsed but has nothing to apply to yet.

	level := slog.LevelInfo
	switch {
	case flags.verbose:
		level = slog.LevelDebug
	case flags.quiet:
		level = slog.LevelWarn
	}
	logger := tflog.New(tflog.WithLevel(level))

	policy := driver.NewPolicy()
	policy.SetChkSanity(!flags.noSanity)
	policy.AssumeResumeSafe = flags.resumeSafe

	if policy.ChkSanity() {
		if _, err := os.Stat(pidFilePath); err == nil {
			logger.Error("ERROR: refusing to start, pid file already exists", "path", pidFilePath)
			return exitInvocationOrConfig
		}
	}

	cfg, err := loadConfigFile(flags.configPath, policy)
	if err != nil {
		logger.Error("ERROR: failed to load configuration", "path", flags.configPath, "error", err)
		return exitInvocationOrConfig
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(bugBanner, "panic", r)
			os.Exit(exitUnexpected)
		}
	}()

	loop := control.New(cfg, logger, func() (*config.Config, error) {
		return loadConfigFile(flags.configPath, policy)
	})

	if err := loop.Run(context.Background()); err != nil {
		logger.Error("ERROR: control loop exited", "error", err)
		return exitUnexpected
	}
	return exitOK
}
