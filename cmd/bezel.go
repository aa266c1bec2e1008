package cmd

import (
	"github.com/spf13/cobra"

	"github.com/decapod-atm/ssp-host/output"
)

var bezelR, bezelG, bezelB uint8
var bezelVolatile bool

var bezelCmd = &cobra.Command{
	Use:   "bezel",
	Short: "Set the validator's bezel LED color",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.ConfigureBezel(bezelR, bezelG, bezelB, bezelVolatile); err != nil {
			fatalf("configure bezel failed: %v", err)
		}
		output.PrintSuccess("bezel configured")
	},
}

func init() {
	bezelCmd.Flags().Uint8Var(&bezelR, "red", 0, "red channel (0-255)")
	bezelCmd.Flags().Uint8Var(&bezelG, "green", 0, "green channel (0-255)")
	bezelCmd.Flags().Uint8Var(&bezelB, "blue", 0, "blue channel (0-255)")
	bezelCmd.Flags().BoolVar(&bezelVolatile, "volatile", true,
		"forget the color on device reset instead of persisting it")
	rootCmd.AddCommand(bezelCmd)
}
