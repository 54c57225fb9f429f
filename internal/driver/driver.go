// SPDX-License-Identifier: BSD-3-Clause

// Package driver implements the generic robust-I/O and lifecycle
// capability shared by every sensor and fan backend: unavailable ->
// available -> initialized, with an error counter and a skip/propagate
// policy decided once per call.
package driver

import "fmt"

// Base is embedded by every concrete sensor/fan driver. It is not itself a
// Driver (it has no Lookup/Init obligations); concrete types supply those
// via the lookup and initFn functions passed to TryInit, or by calling RobustOp
// directly from their own methods.
type Base struct {
	policy      *Policy
	optional    bool
	maxErrors   uint
	errors      uint
	initialized bool
	path        string
	available   bool
	typeName    string
}

// NewBase constructs the shared driver bookkeeping. typeName is used only
// for log messages (e.g. "hwmon fan", "tpacpi sensor").
func NewBase(policy *Policy, typeName string, optional bool, maxErrors uint) Base {
	return Base{policy: policy, typeName: typeName, optional: optional, maxErrors: maxErrors}
}

// Optional reports whether this driver's absence is tolerated at startup.
func (b *Base) Optional() bool { return b.optional }

// Initialized reports whether init() has completed successfully at least
// once since the last time the driver became unavailable.
func (b *Base) Initialized() bool { return b.initialized }

// Available reports whether a path has been resolved via lookup().
func (b *Base) Available() bool { return b.available }

// Path returns the resolved path. Callers must check Available() first;
// Path returns "" and ErrUnavailable otherwise.
func (b *Base) Path() (string, error) {
	if !b.available {
		return "", ErrUnavailable
	}
	return b.path, nil
}

// SetPath records a freshly resolved path and marks the driver available.
// Concrete drivers call this from their own lookup() implementation.
func (b *Base) SetPath(path string) {
	b.path = path
	b.available = true
}

// Errors returns the consecutive-error counter, reset to 0 by every
// successful RobustOp call.
func (b *Base) Errors() uint { return b.errors }

// MaxErrors is the greater of the configured tolerance and one extra error
// of slack granted while the process-wide tolerateErrors flag is set,
// exactly as the original's Driver::max_errors() computes it.
func (b *Base) MaxErrors() uint {
	extra := uint(0)
	if b.policy != nil && b.policy.TolerateErrors() {
		extra = 1
	}
	if b.maxErrors > extra {
		return b.maxErrors
	}
	return extra
}

// TryInit resolves the path (if not already available) via lookup, then
// calls initFn. On a recognized I/O error, the error is routed through the
// driver's own skip function instead of propagating, exactly as
// Driver::try_init delegates to robust_op.
func (b *Base) TryInit(lookup func() (string, error), initFn func() error, skip func(error)) error {
	return b.RobustOp(func() error {
		if !b.available {
			path, err := lookup()
			if err != nil {
				return err
			}
			b.SetPath(path)
		}
		if err := initFn(); err != nil {
			return err
		}
		b.initialized = true
		return nil
	}, skip)
}

// RobustOp is the generic wrapper every driver read/write routes through.
// It increments the error counter before running op, resets it to zero on
// success, and on a recognized I/O error decides whether to swallow (via
// skip) or propagate according to Policy.
func (b *Base) RobustOp(op func() error, skip func(error)) error {
	b.errors++
	err := op()
	if err == nil {
		b.errors = 0
		return nil
	}
	if !ExpectedError(err) {
		return err
	}
	if b.shouldSkip() {
		if skip != nil {
			skip(err)
		}
		return nil
	}
	return err
}

func (b *Base) shouldSkip() bool {
	if b.optional {
		return true
	}
	if b.policy == nil {
		return true
	}
	if b.policy.AssumeResumeSafe {
		return true
	}
	if b.policy.TolerateErrors() {
		return true
	}
	if b.errors < b.MaxErrors() {
		return true
	}
	return !b.policy.ChkSanity()
}

// TypeName identifies the concrete backend in log messages and errors.
func (b *Base) TypeName() string { return b.typeName }

func (b *Base) initError(msg string, cause error) error {
	return fmt.Errorf("%w: %s: %s: %v", ErrDriverInit, b.typeName, msg, cause)
}
