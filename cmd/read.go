/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <port>",
	Short: "Read once from a serial port",
	Long: `Perform a single read on a serial port and print what arrived.

By default one read of up to --count bytes is made; it returns early with
whatever arrived within the read timeout, possibly nothing. With --pending
only the bytes already queued by the driver are returned, without waiting.

Examples:
  serialctl read /dev/ttyUSB0
  serialctl read /dev/ttyUSB0 --count 16 --hex
  serialctl read /dev/ttyUSB0 --pending --read-timeout 0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		count, _ := cmd.Flags().GetInt("count")
		pending, _ := cmd.Flags().GetBool("pending")
		hexOut, _ := cmd.Flags().GetBool("hex")

		s := mustOpen(args[0])
		defer s.Close()

		var data []byte
		var err error
		if pending {
			data, err = s.reg.ReadToEnd(s.id)
		} else {
			data, err = s.reg.Read(s.id, count)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading: %v\n", err)
			os.Exit(1)
		}

		if len(data) == 0 {
			fmt.Fprintln(os.Stderr, "No data received")
			return
		}

		if hexOut {
			fmt.Printf("% X\n", data)
			return
		}
		os.Stdout.Write(data)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.ValidArgsFunction = completePorts(0)

	readCmd.Flags().IntP("count", "n", 256, "Maximum number of bytes to read")
	readCmd.Flags().BoolP("pending", "p", false, "Return only the bytes already queued")
	readCmd.Flags().BoolP("hex", "x", false, "Print data as hex bytes")
}
