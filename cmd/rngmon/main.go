// rngmon is the host companion of the roscrng firmware: it finds the device,
// checks its USB identity, captures its value stream, exports statistics
// and can run the firmware loop on the host for comparison.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Thiagojm/rosc_serial_rng/config"
	"github.com/Thiagojm/rosc_serial_rng/logging"
	"github.com/Thiagojm/rosc_serial_rng/usbcdc"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "rngmon",
	Short:         "Capture and inspect the ring-oscillator random number stream",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		logger = logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigPath(), "path to the YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "override the configured log level (debug, info, warn, error)")
}

// identity is the device identity with the configured VID/PID.
func identity() usbcdc.Identity {
	id := usbcdc.DefaultIdentity
	id.VendorID = cfg.Device.VendorID
	id.ProductID = cfg.Device.ProductID
	return id
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
