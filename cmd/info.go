package cmd

import (
	"github.com/spf13/cobra"

	"github.com/decapod-atm/ssp-host/output"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Query unit type, firmware, country code, and channel layout",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		resp, err := d.SetupRequest()
		if err != nil {
			fatalf("setup request failed: %v", err)
		}
		output.PrintSetupRequest(resp)
	},
}

var serialCmd = &cobra.Command{
	Use:   "serial-number",
	Short: "Read the device's serial number",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		sn, err := d.SerialNumber()
		if err != nil {
			fatalf("serial number failed: %v", err)
		}
		output.PrintSerialNumber(sn)
	},
}

var datasetCmd = &cobra.Command{
	Use:   "dataset-version",
	Short: "Read the loaded currency-dataset version",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		v, err := d.DatasetVersion()
		if err != nil {
			fatalf("dataset version failed: %v", err)
		}
		output.PrintDatasetVersion(v)
	},
}

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Read live per-channel values",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		resp, err := d.ChannelValueData()
		if err != nil {
			fatalf("channel value data failed: %v", err)
		}
		output.PrintChannelValueData(resp)
	},
}

func init() {
	rootCmd.AddCommand(setupCmd, serialCmd, datasetCmd, channelsCmd)
}
