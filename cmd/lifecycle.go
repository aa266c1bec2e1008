package cmd

import (
	"github.com/spf13/cobra"

	"github.com/decapod-atm/ssp-host/output"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the device",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.Reset(); err != nil {
			fatalf("reset failed: %v", err)
		}
		output.PrintSuccess("device reset")
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable note/coin acceptance",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.Enable(); err != nil {
			fatalf("enable failed: %v", err)
		}
		output.PrintSuccess("acceptance enabled")
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable note/coin acceptance",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.Disable(); err != nil {
			fatalf("disable failed: %v", err)
		}
		output.PrintSuccess("acceptance disabled")
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Resynchronise the sequence flag with the device",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.Sync(); err != nil {
			fatalf("sync failed: %v", err)
		}
		output.PrintSuccess("sequence synchronised")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd, enableCmd, disableCmd, syncCmd)
}
