/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/allbin/serialhost/native"
	"github.com/spf13/cobra"
)

// rtsCmd represents the rts command
var rtsCmd = &cobra.Command{
	Use:   "rts <port> <state>",
	Short: "Control RTS (Request To Send) signal",
	Long: `Manually set the RTS (Request To Send) signal state.

RTS is often wired to reset or boot-mode pins on development boards.

Examples:
  serialctl rts /dev/ttyUSB0 high
  serialctl rts /dev/ttyUSB0 low
  serialctl rts /dev/ttyUSB0 1 --hold

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		hold, _ := cmd.Flags().GetBool("hold")
		runSetLine("RTS", args[0], args[1], hold, (*native.Registry).WriteRequestToSend)
	},
}

func parseSignalState(state string) (bool, error) {
	switch strings.ToLower(state) {
	case "high", "on", "true", "1":
		return true, nil
	case "low", "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state: %s (valid: high, low, on, off, true, false, 1, 0)", state)
	}
}

func init() {
	rootCmd.AddCommand(rtsCmd)
	rtsCmd.ValidArgsFunction = completePorts(0)

	rtsCmd.Flags().Bool("hold", false, "Keep the port open until interrupted")
}
