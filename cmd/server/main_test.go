package main

import (
	"testing"
)

func TestParseFlagsLeavesUnsetFlagsNil(t *testing.T) {
	overrides, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}
	if overrides.Port != nil || overrides.EligibilityFile != nil || overrides.MaxStaleIterations != nil ||
		overrides.LogLevel != nil || overrides.RateLimitRPS != nil || overrides.RateLimitBurst != nil {
		t.Fatalf("expected no overrides, got %+v", overrides)
	}
}

func TestParseFlagsAppliesValues(t *testing.T) {
	overrides, err := parseFlags([]string{
		"--config", "config.yaml",
		"--port", "9090",
		"--eligibility", "testdata/eligibility.json",
		"--max-stale-iterations", "25",
		"--log-level", "debug",
		"--rate-limit-rps", "0",
		"--rate-limit-burst", "3",
	})
	if err != nil {
		t.Fatalf("parseFlags returned error: %v", err)
	}

	if overrides.ConfigFile != "config.yaml" {
		t.Fatalf("unexpected config file %q", overrides.ConfigFile)
	}
	if overrides.Port == nil || *overrides.Port != "9090" {
		t.Fatalf("unexpected port override %v", overrides.Port)
	}
	if overrides.EligibilityFile == nil || *overrides.EligibilityFile != "testdata/eligibility.json" {
		t.Fatalf("unexpected eligibility override %v", overrides.EligibilityFile)
	}
	if overrides.MaxStaleIterations == nil || *overrides.MaxStaleIterations != 25 {
		t.Fatalf("unexpected budget override %v", overrides.MaxStaleIterations)
	}
	if overrides.LogLevel == nil || *overrides.LogLevel != "debug" {
		t.Fatalf("unexpected log level override %v", overrides.LogLevel)
	}
	if overrides.RateLimitRPS == nil || *overrides.RateLimitRPS != 0 {
		t.Fatalf("expected rate limit rps override of 0")
	}
	if overrides.RateLimitBurst == nil || *overrides.RateLimitBurst != 3 {
		t.Fatalf("expected rate limit burst override of 3")
	}
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseFlags([]string{"--unknown-flag"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}
