package cmd

import (
	"bytes"
	"testing"
)

// runCmd executes rootCmd with args, capturing cobra's own output and error
// streams. The output package's tables and messages still go to os.Stdout,
// and flag values set by one call persist into the next.
func runCmd(t *testing.T, args ...string) error {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestResetCommandSucceeds(t *testing.T) {
	if err := runCmd(t, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
}

func TestSetupCommandSucceeds(t *testing.T) {
	if err := runCmd(t, "setup"); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func TestKeyExchangeCommandSucceeds(t *testing.T) {
	if err := runCmd(t, "key-exchange"); err != nil {
		t.Fatalf("key-exchange: %v", err)
	}
}

func TestPollCommandSucceeds(t *testing.T) {
	if err := runCmd(t, "poll", "--ack"); err != nil {
		t.Fatalf("poll --ack: %v", err)
	}
}
