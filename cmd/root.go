// Package cmd implements ssp-host, a small cobra-based CLI that drives
// ssp/device.Device for local smoke-testing. It is explicitly out of the
// protocol's core scope (see SPEC_FULL.md's Non-goals) — the equivalent of
// the teacher's sim_reader CLI, here talking eSSP/SSP instead of SIM cards.
package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/decapod-atm/ssp-host/output"
	"github.com/decapod-atm/ssp-host/ssp"
)

var (
	version = "0.1.0"

	// Global flags
	deviceAddr uint8
	retryLimit int
	enforceCtr bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ssp-host",
	Short: "Smiley Secure Protocol host CLI",
	Long: `ssp-host v` + version + `
Drive an ITL SSP/eSSP banknote validator or recycler over the Smiley Secure
Protocol.

This tool supports:
  - Device lifecycle: reset, enable, disable, sync
  - Setup and unit/channel inspection
  - Polling for acceptance/reject/stack events
  - Diffie-Hellman key exchange and encrypted sessions
  - Recycler payout and bezel configuration

Every command here runs against an in-process simulated validator, since
wiring a real serial port is left to the embedding application.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().Uint8VarP(&deviceAddr, "address", "a", 0,
		"device sequence address (7-bit)")
	rootCmd.PersistentFlags().IntVar(&retryLimit, "retries", 3,
		"resend attempts before giving up on an unanswered command")
	rootCmd.PersistentFlags().BoolVar(&enforceCtr, "enforce-counter", true,
		"reject encrypted responses whose embedded counter doesn't match")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log protocol-level debug output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetVersion returns the current version.
func GetVersion() string {
	return version
}

func newLogger() *log.Logger {
	if !verbose {
		return log.New(io.Discard)
	}
	logger := log.New(os.Stderr)
	logger.SetLevel(log.DebugLevel)
	return logger
}

func deviceConfig() ssp.Config {
	cfg := ssp.DefaultConfig()
	cfg.Address = deviceAddr
	cfg.RetryLimit = retryLimit
	if !enforceCtr {
		cfg.CounterPolicy = ssp.CounterPolicyIgnore
	}
	return cfg
}

func fatalf(format string, a ...any) {
	output.PrintError(format, a...)
	os.Exit(1)
}
