package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thiagojm/rosc_serial_rng/usbprobe"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Read USB descriptors and compare them with the firmware identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		want := identity()
		descs, err := usbprobe.Probe(want)
		if err != nil {
			return err
		}
		if len(descs) == 0 {
			return fmt.Errorf("no device with %s attached", want.VIDPID())
		}

		good := 0
		for _, d := range descs {
			fmt.Printf("bus %d addr %d (%s): %s %q %q serial %q class 0x%02x\n",
				d.Bus, d.Address, d.Speed, d.Identity.VIDPID(), d.Identity.Manufacturer,
				d.Identity.Product, d.Identity.SerialNumber, d.Identity.Class)
			if d.OK() {
				good++
				fmt.Println("  identity OK")
				continue
			}
			for _, m := range d.Mismatches {
				fmt.Printf("  mismatch: %s\n", m)
			}
		}
		if good == 0 {
			return errors.New("no device matched the expected identity")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
