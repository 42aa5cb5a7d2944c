package usbprobe

import (
	"fmt"
	"strings"
)

// DeviceInfo is an attached device found during detection. Fields may be
// empty when the platform does not expose them.
type DeviceInfo struct {
	// DevicePath is a system path, e.g. \\?\usb#vid_16c0&pid_27dd#... on
	// Windows or "bus 1 addr 7" elsewhere.
	DevicePath string
	// HardwareIDs are registry hardware IDs, e.g. "USB\VID_16C0&PID_27DD".
	HardwareIDs  []string
	FriendlyName string
}

// IsConnected returns whether a device with the given VID/PID is attached,
// together with what is known about each one.
func IsConnected(vendorID, productID uint16) (bool, []DeviceInfo, error) {
	devices, err := listDevices(vendorID, productID)
	if err != nil {
		return false, nil, err
	}
	return len(devices) > 0, devices, nil
}

func hasVIDPID(ids []string, vid, pid uint16) bool {
	for _, s := range ids {
		if containsVIDPID(s, vid, pid) {
			return true
		}
	}
	return false
}

func containsVIDPID(s string, vid, pid uint16) bool {
	upper := strings.ToUpper(s)
	return strings.Contains(upper, fmt.Sprintf("VID_%04X", vid)) &&
		strings.Contains(upper, fmt.Sprintf("PID_%04X", pid))
}
