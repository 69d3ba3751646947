/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/allbin/serialhost"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port|serial>",
	Short: "Reset a USB serial device",
	Long: `Perform a USB-level reset on a serial device. This can recover devices
that are hung or unresponsive without physically unplugging them.

The device will re-enumerate after reset, which may cause the port path
to change (e.g., /dev/ttyUSB0 might become /dev/ttyUSB1). With --wait the
command watches for the device to come back, matched by its USB serial
number, and prints the new path.

Requirements:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  sudo serialctl reset /dev/ttyUSB0
  sudo serialctl reset --serial NC7ILXW1 --wait`,
	Args: func(cmd *cobra.Command, args []string) error {
		serialFlag, _ := cmd.Flags().GetString("serial")
		if serialFlag == "" && len(args) != 1 {
			return errors.New("requires either a port path argument or --serial flag")
		}
		if serialFlag != "" && len(args) > 0 {
			return errors.New("cannot specify both port path and --serial flag")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if !serial.IsUSBResetAvailable() {
			fmt.Fprintln(os.Stderr, "Error: usbreset utility not available")
			fmt.Fprintln(os.Stderr, "Install with: sudo apt-get install usbutils")
			os.Exit(1)
		}

		serialFlag, _ := cmd.Flags().GetString("serial")
		wait, _ := cmd.Flags().GetBool("wait")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		serialNumber := serialFlag
		var err error
		if serialFlag != "" {
			fmt.Printf("Resetting USB device with serial: %s\n", serialFlag)
			err = serial.ResetUSBDeviceBySerial(serialFlag)
		} else {
			portPath := args[0]
			if info, infoErr := serial.GetPortInfo(portPath); infoErr == nil && info.USB != nil {
				serialNumber = info.USB.SerialNumber
			}
			fmt.Printf("Resetting USB device: %s\n", portPath)
			err = serial.ResetUSBDevice(portPath)
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, serial.ErrUSBInfoNotAvailable) {
				fmt.Fprintln(os.Stderr, "This device does not appear to be a USB device")
			}
			os.Exit(1)
		}

		fmt.Println("USB device reset successfully")

		if !wait {
			fmt.Println("Device will re-enumerate (port path may change)")
			fmt.Println("\nUse 'serialctl list --table' to see updated device list")
			return
		}
		if serialNumber == "" {
			fmt.Fprintln(os.Stderr, "Error: device has no USB serial number to wait for")
			os.Exit(1)
		}

		path, err := waitForSerial(serialNumber, timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Device is back at %s\n", path)
	},
}

// waitForSerial blocks until a port with the given USB serial number is present
func waitForSerial(serialNumber string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	updates, err := serial.WatchPorts(ctx, 500*time.Millisecond)
	if err != nil {
		return "", err
	}

	for ports := range updates {
		for _, p := range ports {
			if p.USB != nil && p.USB.SerialNumber == serialNumber {
				cancel()
				for range updates {
				}
				return p.Name, nil
			}
		}
	}
	return "", fmt.Errorf("device with serial %s did not reappear within %v", serialNumber, timeout)
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.ValidArgsFunction = completePorts(0)

	resetCmd.Flags().StringP("serial", "s", "", "Reset device by serial number")
	resetCmd.Flags().BoolP("wait", "w", false, "Wait for the device to re-enumerate")
	resetCmd.Flags().Duration("timeout", 10*time.Second, "How long --wait may take")
}
