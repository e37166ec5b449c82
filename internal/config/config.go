// Package config defines the server's command-line configuration surface,
// grounded on the retrieval pack's cobra usage (luxfi-consensus's
// cmd/consensus flag binding) in place of the teacher's loadConfig
// hardcoded-struct literal.
package config

import (
	"time"

	"github.com/spf13/cobra"
)

// Config holds every operator-tunable setting the server reads at startup.
type Config struct {
	BindAddr            string
	MetricsAddr         string
	TickRate            time.Duration
	ReliabilityInterval time.Duration
	StaleTimeout         time.Duration
	MaxPacketRetries    int
	Debug               bool
	WelcomeText         string
	CombatRNGSeed       int64
}

// Default returns the configuration the server boots with absent any
// flag overrides.
func Default() Config {
	return Config{
		BindAddr:            "0.0.0.0:7777",
		MetricsAddr:         "127.0.0.1:9090",
		TickRate:            10 * time.Millisecond,
		ReliabilityInterval: 20 * time.Millisecond,
		StaleTimeout:        60 * time.Second,
		MaxPacketRetries:    10,
		WelcomeText:         "Welcome to RiftForged",
		CombatRNGSeed:       1,
	}
}

// BindFlags registers every Config field as a persistent flag on cmd,
// seeding defaults from Default() and writing results back into cfg once
// the command's flags are parsed.
func BindFlags(cmd *cobra.Command, cfg *Config) {
	defaults := Default()
	cmd.PersistentFlags().StringVar(&cfg.BindAddr, "bind-addr", defaults.BindAddr, "UDP address to bind the game socket to")
	cmd.PersistentFlags().StringVar(&cfg.MetricsAddr, "metrics-addr", defaults.MetricsAddr, "HTTP address to serve Prometheus metrics on")
	cmd.PersistentFlags().DurationVar(&cfg.TickRate, "tick-rate", defaults.TickRate, "simulation tick interval")
	cmd.PersistentFlags().DurationVar(&cfg.ReliabilityInterval, "reliability-interval", defaults.ReliabilityInterval, "reliability maintenance pass interval")
	cmd.PersistentFlags().DurationVar(&cfg.StaleTimeout, "stale-timeout", defaults.StaleTimeout, "duration of inactivity before a peer is reaped")
	cmd.PersistentFlags().IntVar(&cfg.MaxPacketRetries, "max-packet-retries", defaults.MaxPacketRetries, "reliable packet retries before a connection is dropped")
	cmd.PersistentFlags().BoolVar(&cfg.Debug, "debug", defaults.Debug, "enable human-readable debug logging")
	cmd.PersistentFlags().StringVar(&cfg.WelcomeText, "welcome-text", defaults.WelcomeText, "text sent to a player on successful join")
	cmd.PersistentFlags().Int64Var(&cfg.CombatRNGSeed, "combat-rng-seed", defaults.CombatRNGSeed, "seed for the combat accuracy/critical-hit RNG")
}

// TickRateHz converts TickRate into the integer Hz JoinSuccess reports to
// clients.
func (c Config) TickRateHz() uint32 {
	if c.TickRate <= 0 {
		return 0
	}
	return uint32(time.Second / c.TickRate)
}
