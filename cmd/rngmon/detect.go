package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thiagojm/rosc_serial_rng/hostserial"
	"github.com/Thiagojm/rosc_serial_rng/usbprobe"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "List attached devices and their serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := identity()

		ok, devices, err := usbprobe.IsConnected(id.VendorID, id.ProductID)
		if err != nil {
			logger.Warn("usb enumeration failed", "err", err)
		}
		if ok {
			for i, d := range devices {
				fmt.Printf("Device %d:\n", i+1)
				if d.FriendlyName != "" {
					fmt.Printf("  Name: %s\n", d.FriendlyName)
				}
				if d.DevicePath != "" {
					fmt.Printf("  Path: %s\n", d.DevicePath)
				}
				for _, h := range d.HardwareIDs {
					fmt.Printf("  HWID: %s\n", h)
				}
			}
		}

		ports, err := hostserial.Matcher{Identity: id}.List()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Printf("No serial port found for %s\n", id.VIDPID())
			return nil
		}
		for _, p := range ports {
			fmt.Printf("Port %s  (%s:%s, product %q, serial %q)\n", p.Name, p.VID, p.PID, p.Product, p.SerialNumber)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
