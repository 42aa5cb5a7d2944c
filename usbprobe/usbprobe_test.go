package usbprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Thiagojm/rosc_serial_rng/usbcdc"
)

func TestContainsVIDPID(t *testing.T) {
	assert.True(t, containsVIDPID(`\\?\usb#vid_16c0&pid_27dd#TEST#{a5dcbf10}`, 0x16c0, 0x27dd))
	assert.True(t, containsVIDPID(`USB\VID_16C0&PID_27DD&REV_0100`, 0x16c0, 0x27dd))
	assert.False(t, containsVIDPID(`USB\VID_0403&PID_7840`, 0x16c0, 0x27dd))
}

func TestHasVIDPID(t *testing.T) {
	ids := []string{`USB\VID_0403&PID_7840`, `USB\VID_16C0&PID_27DD`}
	assert.True(t, hasVIDPID(ids, usbcdc.VendorID, usbcdc.ProductID))
	assert.False(t, hasVIDPID(ids[:1], usbcdc.VendorID, usbcdc.ProductID))
	assert.False(t, hasVIDPID(nil, usbcdc.VendorID, usbcdc.ProductID))
}

func TestDescriptorOK(t *testing.T) {
	d := Descriptor{Identity: usbcdc.DefaultIdentity}
	assert.True(t, d.OK())

	d.Identity.Manufacturer = "Other"
	d.Mismatches = usbcdc.DefaultIdentity.Mismatches(d.Identity)
	assert.False(t, d.OK())
}
