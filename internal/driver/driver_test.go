// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"fmt"
	"testing"
)

func TestRobustOpResetsErrorsOnSuccess(t *testing.T) {
	b := NewBase(NewPolicy(), "test", false, 2)
	if err := b.RobustOp(func() error { return fmt.Errorf("%w: boom", ErrIO) }, nil); err != nil {
		t.Fatalf("expected first tolerated error to be swallowed, got %v", err)
	}
	if b.Errors() != 1 {
		t.Fatalf("expected error counter 1, got %d", b.Errors())
	}
	if err := b.RobustOp(func() error { return nil }, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Errors() != 0 {
		t.Fatalf("expected error counter reset to 0 after success, got %d", b.Errors())
	}
}

func TestRobustOpPropagatesPastMaxErrors(t *testing.T) {
	b := NewBase(NewPolicy(), "test", false, 2)
	skipCalls := 0
	skip := func(error) { skipCalls++ }

	if err := b.RobustOp(func() error { return fmt.Errorf("%w: boom", ErrIO) }, skip); err != nil {
		t.Fatalf("first error should be tolerated: %v", err)
	}
	err := b.RobustOp(func() error { return fmt.Errorf("%w: boom again", ErrIO) }, skip)
	if err == nil {
		t.Fatal("expected the second error to propagate past max_errors")
	}
	if skipCalls != 1 {
		t.Fatalf("expected exactly one skip call, got %d", skipCalls)
	}
}

func TestRobustOpAlwaysToleratesOptionalDriver(t *testing.T) {
	b := NewBase(NewPolicy(), "test", true, 0)
	for i := 0; i < 5; i++ {
		if err := b.RobustOp(func() error { return fmt.Errorf("%w: boom", ErrIO) }, nil); err != nil {
			t.Fatalf("optional driver should never propagate a recognized error, got %v at iteration %d", err, i)
		}
	}
}

func TestRobustOpPropagatesUnrecognizedErrors(t *testing.T) {
	b := NewBase(NewPolicy(), "test", true, 5)
	plainErr := fmt.Errorf("not a recognized driver error")
	if err := b.RobustOp(func() error { return plainErr }, nil); err != plainErr {
		t.Fatalf("expected unrecognized error to propagate unchanged, got %v", err)
	}
}

func TestMaxErrorsGrantsOneExtraWhenTolerateErrorsSet(t *testing.T) {
	p := NewPolicy()
	b := NewBase(p, "test", false, 0)
	if b.MaxErrors() != 0 {
		t.Fatalf("expected max_errors 0 by default, got %d", b.MaxErrors())
	}
	p.SetTolerateErrors(true)
	if b.MaxErrors() != 1 {
		t.Fatalf("expected max_errors 1 while tolerate_errors is set, got %d", b.MaxErrors())
	}
}

func TestTryInitResolvesPathOnce(t *testing.T) {
	b := NewBase(NewPolicy(), "test", false, 0)
	lookups := 0
	lookup := func() (string, error) { lookups++; return "/sys/class/test0", nil }
	init := func() error { return nil }

	if err := b.TryInit(lookup, init, nil); err != nil {
		t.Fatalf("TryInit: %v", err)
	}
	if err := b.TryInit(lookup, init, nil); err != nil {
		t.Fatalf("second TryInit: %v", err)
	}
	if lookups != 1 {
		t.Fatalf("expected lookup to run once after path is resolved, ran %d times", lookups)
	}
	if !b.Initialized() {
		t.Fatal("expected Initialized() to be true after a successful TryInit")
	}
	path, err := b.Path()
	if err != nil || path != "/sys/class/test0" {
		t.Fatalf("unexpected Path(): %q, %v", path, err)
	}
}
