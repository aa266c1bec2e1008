package cmd

import (
	"github.com/spf13/cobra"

	"github.com/decapod-atm/ssp-host/output"
	"github.com/decapod-atm/ssp-host/ssp/poll"
)

var pollAck bool

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll for pending acceptance/reject/stack events",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()

		var (
			events []poll.Event
			err    error
		)
		if pollAck {
			events, err = d.PollWithAck()
		} else {
			events, err = d.Poll()
		}
		if err != nil {
			fatalf("poll failed: %v", err)
		}
		output.PrintPollEvents(events)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Reject the note currently being validated",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.Reject(); err != nil {
			fatalf("reject failed: %v", err)
		}
		output.PrintSuccess("note rejected")
	},
}

var holdCmd = &cobra.Command{
	Use:   "hold",
	Short: "Hold a note at the escrow position",
	Run: func(cmd *cobra.Command, args []string) {
		d := connect()
		if err := d.Hold(); err != nil {
			fatalf("hold failed: %v", err)
		}
		output.PrintSuccess("note held")
	},
}

func init() {
	pollCmd.Flags().BoolVar(&pollAck, "ack", false,
		"use PollWithAck to implicitly acknowledge the previous event set")
	rootCmd.AddCommand(pollCmd, rejectCmd, holdCmd)
}
