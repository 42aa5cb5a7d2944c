//go:build !windows

package usbprobe

import (
	"fmt"

	"github.com/google/gousb"
)

// listDevices enumerates device descriptors through libusb without opening
// anything, so it needs no extra permissions.
func listDevices(vendorID, productID uint16) ([]DeviceInfo, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var results []DeviceInfo
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor == gousb.ID(vendorID) && desc.Product == gousb.ID(productID) {
			results = append(results, DeviceInfo{
				DevicePath:  fmt.Sprintf("bus %d addr %d", desc.Bus, desc.Address),
				HardwareIDs: []string{fmt.Sprintf("USB\\VID_%04X&PID_%04X", vendorID, productID)},
			})
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating USB devices: %w", err)
	}
	return results, nil
}
