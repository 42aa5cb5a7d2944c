package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Thiagojm/rosc_serial_rng/hostserial"
	"github.com/Thiagojm/rosc_serial_rng/naming"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record the device's value stream to CSV (and optionally SQLite)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Device.Port = port
		}

		portName := cfg.Device.Port
		if portName == "" {
			var err error
			portName, err = hostserial.Matcher{Identity: identity()}.FindPort()
			if err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sink, err := newCaptureSink(ctx, naming.SourceDevice)
		if err != nil {
			return err
		}
		defer sink.Close()

		logger.Info("capturing", "port", portName, "count", count)
		var recErr error
		err = hostserial.CollectPort(ctx, portName, func(r hostserial.Reading) {
			if recErr != nil {
				return
			}
			if recErr = sink.Record(ctx, r); recErr != nil {
				cancel()
				return
			}
			if sink.frames%1000 == 0 && r.Err == nil {
				logger.Debug("progress", "frames", sink.frames, "last", r.Value)
			}
			if count > 0 && sink.frames >= count {
				cancel()
			}
		})
		if recErr != nil {
			return recErr
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	captureCmd.Flags().String("port", "", "serial port name (default: auto-detect)")
	captureCmd.Flags().Int("count", 0, "stop after this many frames (0: until Ctrl+C)")
	rootCmd.AddCommand(captureCmd)
}
