// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// Package envconfig loads harness tunables from the environment.
package envconfig

import (
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/env"
)

const (
	// EnvReadyTimeout overrides how long waits for readiness may block.
	EnvReadyTimeout = "INTTEST_READY_TIMEOUT"
	// EnvDeleteTimeout overrides how long deletion waits may block.
	EnvDeleteTimeout = "INTTEST_DELETE_TIMEOUT"
	// EnvPollInterval overrides the fixed sleep between status checks.
	EnvPollInterval = "INTTEST_POLL_INTERVAL"
	// EnvSkipPrechecks skips environment pre-checks during setup.
	EnvSkipPrechecks = "INTTEST_SKIP_PRECHECKS"
	// EnvAWSRegion sets the region used for credential validation.
	EnvAWSRegion = "INTTEST_AWS_REGION"
)

// Config carries the environment-provided harness settings.
type Config struct {
	ReadyTimeout  time.Duration
	DeleteTimeout time.Duration
	PollInterval  time.Duration
	SkipPrechecks bool
	AWSRegion     string
}

// Default returns the built-in settings used when nothing is overridden.
func Default() Config {
	return Config{
		ReadyTimeout:  20 * time.Minute,
		DeleteTimeout: 5 * time.Minute,
		PollInterval:  10 * time.Second,
		SkipPrechecks: false,
		AWSRegion:     "us-east-1",
	}
}

// Load reads the configuration from the environment, falling back to
// defaults. An unparsable duration keeps the default and logs a warning
// rather than failing the run.
func Load(log logr.Logger) Config {
	cfg := Default()
	cfg.ReadyTimeout = duration(log, EnvReadyTimeout, cfg.ReadyTimeout)
	cfg.DeleteTimeout = duration(log, EnvDeleteTimeout, cfg.DeleteTimeout)
	cfg.PollInterval = duration(log, EnvPollInterval, cfg.PollInterval)
	cfg.AWSRegion = env.GetString(EnvAWSRegion, cfg.AWSRegion)

	skip, err := env.GetBool(EnvSkipPrechecks, cfg.SkipPrechecks)
	if err != nil {
		log.Info("ignoring unparsable boolean override", "variable", EnvSkipPrechecks, "error", err.Error())
	} else {
		cfg.SkipPrechecks = skip
	}
	return cfg
}

func duration(log logr.Logger, key string, fallback time.Duration) time.Duration {
	raw := env.GetString(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Info("ignoring unparsable duration override", "variable", key, "value", raw)
		return fallback
	}
	return d
}
