/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/serialhost"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  serialctl info /dev/ttyUSB0
  serialctl info /dev/ttyACM0

For USB devices, this displays vendor/product IDs, serial numbers, interface
numbers, and other USB-specific metadata. Bus and device numbers are only
available on Linux.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		info, err := serial.GetPortInfo(portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Port Information: %s\n\n", info.Name)
		fmt.Printf("  Type:        %s (%d)\n", info.Type, int(info.Type))
		fmt.Printf("  Description: %s\n", info.Description)

		if usb := info.USB; usb != nil {
			fmt.Println("\nUSB Device Information:")
			fmt.Printf("  Vendor ID:    %04x\n", usb.VendorID)
			fmt.Printf("  Product ID:   %04x\n", usb.ProductID)
			printIfSet("Serial", usb.SerialNumber)
			printIfSet("Interface", usb.InterfaceNumber)
			printIfSet("Bus", usb.BusNumber)
			printIfSet("Device", usb.DeviceNumber)
			printIfSet("Manufacturer", usb.Manufacturer)
			printIfSet("Product", usb.Product)
		}
	},
}

func printIfSet(label, value string) {
	if value != "" {
		fmt.Printf("  %-13s %s\n", label+":", value)
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.ValidArgsFunction = completePorts(0)
}
