/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/allbin/serialhost/native"
	"github.com/spf13/cobra"
)

// dtrCmd represents the dtr command
var dtrCmd = &cobra.Command{
	Use:   "dtr <port> <state>",
	Short: "Control DTR (Data Terminal Ready) signal",
	Long: `Manually set the DTR (Data Terminal Ready) signal state.

The DTR signal indicates that the terminal is ready for communication.
Most drivers drop DTR again when the port is closed; use --hold to keep
the port open until Ctrl+C.

Examples:
  serialctl dtr /dev/ttyUSB0 high
  serialctl dtr /dev/ttyUSB0 low
  serialctl dtr /dev/ttyUSB0 on --hold

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		hold, _ := cmd.Flags().GetBool("hold")
		runSetLine("DTR", args[0], args[1], hold, (*native.Registry).WriteDataTerminalReady)
	},
}

// runSetLine drives one output line and reports the level read back
func runSetLine(name, portPath, stateArg string, hold bool, set func(*native.Registry, native.HandleID, bool) error) {
	state, err := parseSignalState(stateArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := mustOpen(portPath)
	defer s.Close()

	if err := set(s.reg, s.id, state); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting %s: %v\n", name, err)
		os.Exit(1)
	}

	// Verify the state was set
	current := state
	signals, err := s.reg.ModemSignals(s.id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not verify %s state: %v\n", name, err)
	} else if name == "DTR" {
		current = signals.DTR
	} else {
		current = signals.RTS
	}

	fmt.Printf("%s set to %s on %s\n", name, formatSignalState(current), portPath)

	if hold {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Println("Holding port open, press Ctrl+C to release")
		<-ctx.Done()
	}
}

func init() {
	rootCmd.AddCommand(dtrCmd)
	dtrCmd.ValidArgsFunction = completePorts(0)

	dtrCmd.Flags().Bool("hold", false, "Keep the port open until interrupted")
}
