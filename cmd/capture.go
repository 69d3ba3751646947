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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file for later parsing.

Reads data from the specified serial port and writes it directly to
the output file. Runs continuously until interrupted (Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data. Reads wake up at least once per read
timeout, so a shorter --read-timeout makes Ctrl+C respond faster.

Example usage:
  serialctl capture /dev/ttyUSB0 data.log
  serialctl capture /dev/ttyUSB0 output.txt --baud 115200
  serialctl capture /dev/ttyUSB0 capture.log --console --read-timeout 200ms`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		bufferSize, _ := cmd.Flags().GetInt("buffer")
		showConsole, _ := cmd.Flags().GetBool("console")

		if err := runCapture(args[0], args[1], bufferSize, showConsole); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.ValidArgsFunction = completePorts(0)

	captureCmd.Flags().Int("buffer", 4096, "Read buffer size")
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
}

func runCapture(portPath, outputPath string, bufferSize int, showConsole bool) error {
	if bufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive")
	}

	s, err := openSession(portPath)
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}
	defer s.Close()

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Capturing data from %s to %s\n", portPath, outputPath)
	if showConsole {
		fmt.Fprintf(os.Stderr, "Console display enabled\n")
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	bytesWritten := int64(0)
	startTime := time.Now()

	for ctx.Err() == nil {
		data, err := s.reg.Read(s.id, bufferSize)
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		if len(data) == 0 {
			if viper.GetDuration("read-timeout") == 0 {
				time.Sleep(10 * time.Millisecond)
			}
			continue
		}

		written, err := file.Write(data)
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		bytesWritten += int64(written)

		if showConsole {
			os.Stdout.Write(data)
		}
	}

	duration := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n", bytesWritten, duration.Round(time.Millisecond))
	return nil
}
