/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/allbin/serialhost"
	"github.com/allbin/serialhost/internal/tui/components"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port.

Data can be provided as:
- Command line argument: send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | serialctl send /dev/ttyUSB0
- Interactive mode: serialctl send /dev/ttyUSB0 (prompts for input)

The whole buffer is written even when the driver accepts it in pieces.
With --wait the command also waits until the output queue has drained.

Example usage:
  serialctl send "Hello World" /dev/ttyUSB0
  serialctl send "AT+GMR" /dev/ttyUSB0 --newline
  serialctl send "48 65 6c 6c 6f" /dev/ttyUSB0 --hex
  echo "test" | serialctl send /dev/ttyUSB0 --wait`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var portPath string

		// Parse arguments: either "send data port" or "send port"
		if len(args) == 1 {
			portPath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portPath = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		wait, _ := cmd.Flags().GetBool("wait")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		payload := []byte(data)
		if hexMode {
			decoded, err := components.ParseHex(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			payload = decoded
		}

		if addNewline && !hexMode {
			payload = append(payload, '\n')
		}

		if err := sendData(portPath, payload, wait, timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.ValidArgsFunction = completePorts(1)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().Bool("wait", false, "Wait for the output queue to drain before closing")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "How long --wait may take")
}

func promptForData() string {
	fmt.Print(infoStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

// printable replaces control bytes so data can be previewed on a terminal
func printable(data []byte, limit int) string {
	preview := string(data)
	if limit > 0 && len(data) > limit {
		preview = string(data[:limit]) + "..."
	}
	return strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, preview)
}

// drainWithin waits for the output queue to empty. On timeout the queued
// output is discarded, which releases the pending drain before the port closes.
func drainWithin(s *session, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- s.reg.Drain(s.id) }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		queued, _ := s.reg.BytesToWrite(s.id)
		s.reg.Clear(s.id, serial.ClearOutput)
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		return fmt.Errorf("%d bytes still queued after %v, discarded", queued, timeout)
	}
}

func sendData(portPath string, data []byte, wait bool, timeout time.Duration) error {
	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

	s, err := openSession(portPath)
	if err != nil {
		return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
	}
	defer s.Close()

	fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))
	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(data))

	n, err := s.reg.WriteAll(s.id, data)
	if err != nil {
		return fmt.Errorf("%s failed to send data: %v", errorStyle.Render("✗"), err)
	}

	if wait {
		if err := drainWithin(s, timeout); err != nil {
			return fmt.Errorf("%s %v", errorStyle.Render("✗"), err)
		}
	}

	fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), n)
	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), printable(data, 50))

	return nil
}
