/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// baudCmd represents the baud command
var baudCmd = &cobra.Command{
	Use:   "baud <port> <rate>",
	Short: "Check that a port accepts a baud rate",
	Long: `Open a port at the configured baud rate, then switch it to the given rate
in place. Reports whether the driver accepted the new rate.

The setting does not outlive the command; use it to probe which rates an
adapter supports.

Examples:
  serialctl baud /dev/ttyUSB0 115200
  serialctl baud /dev/ttyUSB0 250000`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		rate, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid rate %q\n", args[1])
			os.Exit(1)
		}

		s := mustOpen(args[0])
		defer s.Close()

		before, _ := s.reg.Baud(s.id)
		if err := s.reg.SetBaudRate(s.id, uint32(rate)); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("✗"), err)
			os.Exit(1)
		}

		after, _ := s.reg.Baud(s.id)
		fmt.Printf("%s %s: %d -> %d baud\n", successStyle.Render("✓"), args[0], before, after)
	},
}

func init() {
	rootCmd.AddCommand(baudCmd)
	baudCmd.ValidArgsFunction = completePorts(0)
}
