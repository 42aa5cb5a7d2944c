package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thiagojm/rosc_serial_rng/entropy"
	"github.com/Thiagojm/rosc_serial_rng/naming"
	"github.com/Thiagojm/rosc_serial_rng/scheduler"
	"github.com/Thiagojm/rosc_serial_rng/usbcdc"
)

// wallTimer counts microseconds since it was created, like the RP2040 timer.
type wallTimer struct {
	start time.Time
}

func (w wallTimer) Ticks() uint64 {
	return uint64(time.Since(w.start).Microseconds())
}

func newBitSource(name string, seed uint64) (entropy.BitSource, error) {
	switch strings.ToLower(name) {
	case "pseudo":
		return entropy.NewPseudo(seed)
	case "jitter":
		return entropy.Jitter{}, nil
	default:
		return nil, fmt.Errorf("unknown source %q", name)
	}
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the firmware loop on this machine with a software bit source",
	Long: "Runs the same scheduler as the firmware against an in-memory USB link.\n" +
		"Frames go to stdout, or to a capture session with --capture.\n" +
		"--stall-after stops the host side from reading to show the drain stall.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetDuration("duration")
		stallAfter, _ := cmd.Flags().GetDuration("stall-after")
		capture, _ := cmd.Flags().GetBool("capture")
		sc := cfg.Simulate

		src, err := newBitSource(sc.Source, sc.Seed)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, duration)
			defer cancel()
		}

		var host io.Writer = os.Stdout
		if capture {
			sink, err := newCaptureSink(ctx, naming.SourceSimulated)
			if err != nil {
				return err
			}
			defer sink.Close()
			host = sink
		}

		link := usbcdc.NewLoopback(host, sc.TxBuffer)
		if stallAfter > 0 {
			t := time.AfterFunc(stallAfter, func() {
				logger.Warn("host stopped reading", "after", stallAfter)
				link.SetHostReading(false)
			})
			defer t.Stop()
		}

		s := scheduler.New(src, usbcdc.NewService(link, link), wallTimer{start: time.Now()},
			scheduler.WithInterval(sc.Interval), scheduler.WithDrainLimit(sc.DrainLimit))
		logger.Info("simulating", "source", sc.Source, "interval_us", sc.Interval, "tx_buffer", sc.TxBuffer)

		err = s.Run(ctx)
		st := s.Stats()
		logger.Info("simulation stopped", "state", s.State().String(), "frames", st.Frames,
			"flush_attempts", st.FlushAttempts, "drain_timeouts", st.DrainTimeouts,
			"bytes_sent", link.Sent(), "buffered", link.Buffered())
		if lerr := link.Err(); lerr != nil {
			return lerr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	},
}

func init() {
	simulateCmd.Flags().Duration("duration", 0, "stop after this long (0: until Ctrl+C)")
	simulateCmd.Flags().Duration("stall-after", 0, "stop reading on the host side after this long")
	simulateCmd.Flags().Bool("capture", false, "record frames as a simulated capture session instead of printing")
	rootCmd.AddCommand(simulateCmd)
}
