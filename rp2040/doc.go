// Package rp2040 binds the pipeline to RP2040 hardware under TinyGo: the
// ring oscillator as a bit source, the 1 MHz system timer, and the USB
// CDC-ACM serial port.
//
// Everything except this comment is built only with
// `tinygo build -target=pico`.
package rp2040
