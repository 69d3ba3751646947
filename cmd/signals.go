/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/allbin/serialhost"
	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <port>",
	Short: "Display current modem signal states",
	Long: `Display the current state of all modem control signals.

Shows the state of CTS, DSR, RI, DCD, RTS, and DTR signals for the specified port.
With --watch the input lines are sampled repeatedly and every change is printed
until Ctrl+C.

Examples:
  serialctl signals /dev/ttyUSB0
  serialctl signals /dev/ttyUSB0 --watch --lines cts,dsr
  serialctl signals /dev/ttyUSB0 --watch --interval 10ms

Signal meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)
  RTS - Request To Send (output)
  DTR - Data Terminal Ready (output)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		watch, _ := cmd.Flags().GetBool("watch")
		lines, _ := cmd.Flags().GetStringSlice("lines")
		interval, _ := cmd.Flags().GetDuration("interval")

		mask, err := parseSignalMask(lines)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing signals: %v\n", err)
			os.Exit(1)
		}
		if interval <= 0 {
			fmt.Fprintln(os.Stderr, "Error: interval must be positive")
			os.Exit(1)
		}

		s := mustOpen(portPath)
		defer s.Close()

		signals, err := s.reg.ModemSignals(s.id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading modem signals: %v\n", err)
			os.Exit(1)
		}

		if !watch {
			fmt.Printf("Modem Signals for %s:\n\n", portPath)
			fmt.Printf("  CTS (Clear To Send):       %s\n", formatSignalState(signals.CTS))
			fmt.Printf("  DSR (Data Set Ready):      %s\n", formatSignalState(signals.DSR))
			fmt.Printf("  RI  (Ring Indicator):      %s\n", formatSignalState(signals.RI))
			fmt.Printf("  DCD (Data Carrier Detect): %s\n", formatSignalState(signals.DCD))
			fmt.Printf("  RTS (Request To Send):     %s\n", formatSignalState(signals.RTS))
			fmt.Printf("  DTR (Data Terminal Ready): %s\n", formatSignalState(signals.DTR))
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching signals on %s (signals: %s)\n", portPath, strings.Join(lines, ", "))
		fmt.Println("Press Ctrl+C to stop")
		fmt.Print(describeSignals("Initial state", signals, mask))

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		prev := signals
		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nStopping monitor...")
				return
			case <-ticker.C:
				cur, err := s.reg.ModemSignals(s.id)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading modem signals: %v\n", err)
					return
				}
				if changed := cur.Changed(prev) & mask; changed != 0 {
					fmt.Print(describeSignals("Signal change detected", cur, changed))
				}
				prev = cur
			}
		}
	},
}

func formatSignalState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}

func parseSignalMask(signalNames []string) (serial.SignalMask, error) {
	if len(signalNames) == 0 {
		return serial.SignalAll, nil
	}

	var mask serial.SignalMask
	for _, name := range signalNames {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "cts":
			mask |= serial.SignalCTS
		case "dsr":
			mask |= serial.SignalDSR
		case "ri":
			mask |= serial.SignalRI
		case "dcd", "cd":
			mask |= serial.SignalDCD
		default:
			return 0, fmt.Errorf("unknown signal: %s (valid: cts, dsr, ri, dcd)", name)
		}
	}
	return mask, nil
}

// describeSignals renders the input lines selected by mask under a timestamped heading
func describeSignals(heading string, signals serial.ModemSignals, mask serial.SignalMask) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s:\n", time.Now().Format("15:04:05.000"), heading)
	if mask&serial.SignalCTS != 0 {
		fmt.Fprintf(&b, "  CTS: %s\n", formatSignalState(signals.CTS))
	}
	if mask&serial.SignalDSR != 0 {
		fmt.Fprintf(&b, "  DSR: %s\n", formatSignalState(signals.DSR))
	}
	if mask&serial.SignalRI != 0 {
		fmt.Fprintf(&b, "  RI:  %s\n", formatSignalState(signals.RI))
	}
	if mask&serial.SignalDCD != 0 {
		fmt.Fprintf(&b, "  DCD: %s\n", formatSignalState(signals.DCD))
	}
	b.WriteString("\n")
	return b.String()
}

func init() {
	rootCmd.AddCommand(signalsCmd)
	signalsCmd.ValidArgsFunction = completePorts(0)

	signalsCmd.Flags().BoolP("watch", "w", false, "Keep sampling and print every change")
	signalsCmd.Flags().StringSliceP("lines", "l", []string{"cts", "dsr", "ri", "dcd"},
		"Signals to watch (comma-separated: cts,dsr,ri,dcd)")
	signalsCmd.Flags().Duration("interval", 50*time.Millisecond, "Sampling interval for --watch")
}
