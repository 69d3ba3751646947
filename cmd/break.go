/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// breakCmd represents the break command
var breakCmd = &cobra.Command{
	Use:   "break <port>",
	Short: "Send a break condition",
	Long: `Hold the transmit line in the break state for a while, then release it.

Many bootloaders and consoles treat a break as an attention or reset signal.

Examples:
  serialctl break /dev/ttyUSB0
  serialctl break /dev/ttyUSB0 --duration 500ms`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		duration, _ := cmd.Flags().GetDuration("duration")
		if duration <= 0 {
			fmt.Fprintln(os.Stderr, "Error: duration must be positive")
			os.Exit(1)
		}

		s := mustOpen(args[0])
		defer s.Close()

		if err := s.reg.SetBreak(s.id); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting break: %v\n", err)
			os.Exit(1)
		}
		time.Sleep(duration)
		if err := s.reg.ClearBreak(s.id); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing break: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Sent %v break on %s\n", duration, args[0])
	},
}

func init() {
	rootCmd.AddCommand(breakCmd)
	breakCmd.ValidArgsFunction = completePorts(0)

	breakCmd.Flags().DurationP("duration", "d", 250*time.Millisecond, "How long to hold the break")
}
