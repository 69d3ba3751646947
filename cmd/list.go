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
	"github.com/allbin/serialhost/native"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

Ports are reported with their connection type (usb, pci, bluetooth or
unknown) and, for USB adapters, vendor and product identification.

Output formats:
  default   one device path per line
  --table   styled table with type and USB details
  --json    the JSON document handed to the scripting runtime
  --watch   keep running and reprint the list whenever ports come or go

Examples:
  serialctl list
  serialctl list --table --filter usb
  serialctl list --json
  serialctl list --watch`,
	Run: func(cmd *cobra.Command, args []string) {
		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")
		jsonFormat, _ := cmd.Flags().GetBool("json")
		watch, _ := cmd.Flags().GetBool("watch")

		if jsonFormat {
			out, err := native.NewOps(native.NewRegistry()).AvailablePorts()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(out))
			return
		}

		render := renderSimple
		if tableFormat {
			render = renderTable
		}

		if watch {
			if err := watchPorts(filterType, render); err != nil {
				fmt.Fprintf(os.Stderr, "Error watching ports: %v\n", err)
				os.Exit(1)
			}
			return
		}

		ports, err := serial.AvailablePorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filtered, err := filterPorts(ports, filterType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		render(filtered)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, pci, bluetooth, unknown, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
	listCmd.Flags().BoolP("json", "j", false, "Print the port list as JSON")
	listCmd.Flags().BoolP("watch", "w", false, "Reprint the list whenever ports are added or removed")
}

// filterPorts keeps the ports of the named type
func filterPorts(ports []serial.PortDescriptor, filterType string) ([]serial.PortDescriptor, error) {
	filterType = strings.ToLower(filterType)
	if filterType == "" || filterType == "all" {
		return ports, nil
	}

	var want serial.PortType
	switch filterType {
	case "usb":
		want = serial.PortTypeUSB
	case "pci":
		want = serial.PortTypePCI
	case "bluetooth", "bt":
		want = serial.PortTypeBluetooth
	case "unknown":
		want = serial.PortTypeUnknown
	default:
		return nil, fmt.Errorf("unknown filter: %s (valid: usb, pci, bluetooth, unknown, all)", filterType)
	}

	filtered := make([]serial.PortDescriptor, 0, len(ports))
	for _, p := range ports {
		if p.Type == want {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func watchPorts(filterType string, render func([]serial.PortDescriptor)) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates, err := serial.WatchPorts(ctx, time.Second)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Watching for port changes, press Ctrl+C to stop")
	for ports := range updates {
		filtered, err := filterPorts(ports, filterType)
		if err != nil {
			return err
		}
		fmt.Printf("\n[%s] %d port(s)\n", time.Now().Format("15:04:05"), len(filtered))
		render(filtered)
	}
	return nil
}

const (
	columnKeyPort     = "port"
	columnKeyType     = "type"
	columnKeyVIDPID   = "vidpid"
	columnKeySerial   = "serial"
	columnKeyDesc     = "description"
	columnWidthPort   = 20
	columnWidthType   = 10
	columnWidthVIDPID = 10
	columnWidthSerial = 16
	columnWidthDesc   = 30
)

// renderTable renders the port list as a static bubble-table
func renderTable(ports []serial.PortDescriptor) {
	fmt.Printf("Found %d serial port(s):\n\n", len(ports))
	fmt.Println(portTable(ports).View())
}

func portTable(ports []serial.PortDescriptor) table.Model {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", columnWidthPort),
		table.NewColumn(columnKeyType, "Type", columnWidthType),
		table.NewColumn(columnKeyVIDPID, "VID:PID", columnWidthVIDPID),
		table.NewColumn(columnKeySerial, "Serial", columnWidthSerial),
		table.NewColumn(columnKeyDesc, "Description", columnWidthDesc),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		vidpid, serialNumber := "-", "-"
		if p.USB != nil {
			vidpid = fmt.Sprintf("%04x:%04x", p.USB.VendorID, p.USB.ProductID)
			if p.USB.SerialNumber != "" {
				serialNumber = p.USB.SerialNumber
			}
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:   p.Name,
			columnKeyType:   p.Type.String(),
			columnKeyVIDPID: vidpid,
			columnKeySerial: serialNumber,
			columnKeyDesc:   p.Description,
		}))
	}

	return table.New(columns).
		WithRows(rows).
		HeaderStyle(headerStyle).
		BorderRounded().
		WithBaseStyle(lipgloss.NewStyle().
			BorderForeground(lipgloss.Color("240")).
			Align(lipgloss.Left))
}

// renderSimple renders the port list in simple text format
func renderSimple(ports []serial.PortDescriptor) {
	for _, p := range ports {
		fmt.Println(p.Name)
	}
}
