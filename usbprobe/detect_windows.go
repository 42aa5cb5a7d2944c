//go:build windows

package usbprobe

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// listDevices walks the present USB devices through SetupAPI. It needs no
// libusb driver, so it works even when the device is bound to usbser.sys.
func listDevices(vendorID, productID uint16) ([]DeviceInfo, error) {
	set, err := windows.SetupDiGetClassDevsEx(nil, "USB", 0, windows.DIGCF_PRESENT|windows.DIGCF_ALLCLASSES, 0, "")
	if err != nil {
		return nil, fmt.Errorf("SetupDiGetClassDevsEx: %w", err)
	}
	defer set.Close()

	var results []DeviceInfo
	for i := 0; ; i++ {
		data, err := set.EnumDeviceInfo(i)
		if err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_ITEMS) {
				break
			}
			return nil, fmt.Errorf("SetupDiEnumDeviceInfo at index %d: %w", i, err)
		}

		path, _ := set.DeviceInstanceID(data)
		hwIDs := registryStrings(set, data, windows.SPDRP_HARDWAREID)
		if !hasVIDPID(hwIDs, vendorID, productID) && !containsVIDPID(path, vendorID, productID) {
			continue
		}

		friendly := registryString(set, data, windows.SPDRP_FRIENDLYNAME)
		if friendly == "" {
			friendly = registryString(set, data, windows.SPDRP_DEVICEDESC)
		}
		results = append(results, DeviceInfo{
			DevicePath:   path,
			HardwareIDs:  hwIDs,
			FriendlyName: friendly,
		})
	}
	return results, nil
}

func registryStrings(set windows.DevInfo, data *windows.DevInfoData, prop windows.SPDRP) []string {
	v, err := set.DeviceRegistryProperty(data, prop)
	if err != nil {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case string:
		return []string{t}
	}
	return nil
}

func registryString(set windows.DevInfo, data *windows.DevInfoData, prop windows.SPDRP) string {
	if s := registryStrings(set, data, prop); len(s) > 0 {
		return s[0]
	}
	return ""
}
