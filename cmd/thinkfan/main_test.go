// SPDX-License-Identifier: BSD-3-Clause

package main

import "testing"

func TestParseFlagsDefaults(t *testing.T) {
	f, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if f.maxSleep != 5 {
		t.Errorf("expected default max-sleep 5, got %d", f.maxSleep)
	}
	if f.depulse != 0.5 {
		t.Errorf("expected default depulse 0.5, got %v", f.depulse)
	}
	if f.depulseSet {
		t.Error("depulse should not be marked as explicitly set by default")
	}
}

func TestParseFlagsDepulseNoValue(t *testing.T) {
	f, err := parseFlags([]string{"-p"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if f.depulse != 0.5 {
		t.Errorf("expected -p with no value to default to 0.5, got %v", f.depulse)
	}
	if !f.depulseSet {
		t.Error("expected depulse to be marked as explicitly set")
	}
}

func TestParseFlagsRejectsOutOfRangeBias(t *testing.T) {
	if _, err := parseFlags([]string{"-b", "50"}); err == nil {
		t.Fatal("expected an error for bias outside -10..30")
	}
}

func TestParseFlagsRejectsNegativeMaxSleep(t *testing.T) {
	if _, err := parseFlags([]string{"-s", "-1"}); err == nil {
		t.Fatal("expected an error for a negative -s")
	}
}

func TestRunReportsOutOfScopeConfigAsInvocationError(t *testing.T) {
	code := run([]string{"-n", "-c", "/nonexistent/thinkfan.conf"})
	if code != exitInvocationOrConfig {
		t.Fatalf("expected exitInvocationOrConfig, got %d", code)
	}
}

func TestRunUnknownFlagExitsWithUnknownFlagCode(t *testing.T) {
	code := run([]string{"--definitely-not-a-flag"})
	if code != exitUnknownFlag {
		t.Fatalf("expected exitUnknownFlag, got %d", code)
	}
}
