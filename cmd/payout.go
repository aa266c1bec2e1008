package cmd

import (
	"github.com/spf13/cobra"

	"github.com/decapod-atm/ssp-host/output"
)

var payoutOption uint8

var enablePayoutCmd = &cobra.Command{
	Use:   "enable-payout",
	Short: "Arm recycler payout",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.EnablePayout(payoutOption); err != nil {
			fatalf("enable payout failed: %v", err)
		}
		output.PrintSuccess("payout enabled")
	},
}

var disablePayoutCmd = &cobra.Command{
	Use:   "disable-payout",
	Short: "Disarm recycler payout",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.DisablePayout(); err != nil {
			fatalf("disable payout failed: %v", err)
		}
		output.PrintSuccess("payout disabled")
	},
}

var emptyCmd = &cobra.Command{
	Use:   "empty",
	Short: "Empty all channels to the cashbox",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.Empty(); err != nil {
			fatalf("empty failed: %v", err)
		}
		output.PrintSuccess("channels emptied")
	},
}

var smartEmptyCmd = &cobra.Command{
	Use:   "smart-empty",
	Short: "Empty a recycler while retaining a working float",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.SmartEmpty(); err != nil {
			fatalf("smart empty failed: %v", err)
		}
		output.PrintSuccess("smart empty complete")
	},
}

var lastRejectCmd = &cobra.Command{
	Use:   "last-reject-code",
	Short: "Read the vendor-specific reason code for the most recent reject",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		code, err := d.LastRejectCode()
		if err != nil {
			fatalf("last reject code failed: %v", err)
		}
		output.PrintSuccess("last reject code: 0x%02X", code)
	},
}

func init() {
	enablePayoutCmd.Flags().Uint8Var(&payoutOption, "option", 0, "device-specific payout option byte")
	rootCmd.AddCommand(enablePayoutCmd, disablePayoutCmd, emptyCmd, smartEmptyCmd, lastRejectCmd)
}
