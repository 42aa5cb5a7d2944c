package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/Thiagojm/rosc_serial_rng/entropy"
	"github.com/Thiagojm/rosc_serial_rng/export"
	"github.com/Thiagojm/rosc_serial_rng/naming"
	"github.com/Thiagojm/rosc_serial_rng/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [capture.csv]",
	Short: "Write z-score, histogram and bias statistics of a capture to .xlsx",
	Long: "Reads a capture CSV, or a session from the SQLite store with --session,\n" +
		"and writes an Excel workbook next to it.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionFlag, _ := cmd.Flags().GetString("session")

		var (
			rows   []export.Row
			header string
			out    string
			title  string
		)
		switch {
		case len(args) == 1:
			path := args[0]
			if _, err := naming.ParseName(path); err != nil {
				logger.Warn("file name does not follow the capture convention", "err", err)
			}
			var err error
			if rows, err = export.ReadCSVFile(path); err != nil {
				return err
			}
			header, out, title = "time", export.WorkbookPath(path), filepath.Base(path)
		case sessionFlag != "":
			if cfg.Capture.SQLite == "" {
				return errors.New("--session needs capture.sqlite (or RNGMON_SQLITE)")
			}
			id, err := xid.FromString(sessionFlag)
			if err != nil {
				return fmt.Errorf("session id: %w", err)
			}
			db, err := store.Open(cmd.Context(), cfg.Capture.SQLite)
			if err != nil {
				return err
			}
			defer db.Close()
			values, err := db.Values(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows = export.RowsFromValues(values)
			header = "sample"
			out = filepath.Join(cfg.Capture.OutDir, id.String()+".xlsx")
			title = id.String()
		default:
			return errors.New("give a capture CSV or --session")
		}

		model := entropy.Model()
		rows = export.CalculateZTest(rows, model)
		summary, err := export.Summarize(rows, model)
		if err != nil {
			return err
		}
		buckets, err := export.Histogram(rows, cfg.Capture.Bins, model)
		if err != nil {
			return err
		}
		rep := export.Report{Title: title, Rows: rows, Buckets: buckets, Summary: summary, FirstColumnHeader: header}
		if err := export.WriteWorkbook(rep, out); err != nil {
			return err
		}
		logger.Info("workbook written", "path", out, "frames", summary.Count,
			"final_z", summary.FinalZ, "low_share", summary.LowShare, "low_share_z", summary.LowShareZ)
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List capture sessions stored in SQLite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Capture.SQLite == "" {
			return errors.New("no capture.sqlite configured")
		}
		db, err := store.Open(cmd.Context(), cfg.Capture.SQLite)
		if err != nil {
			return err
		}
		defer db.Close()

		sessions, err := db.Sessions(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range sessions {
			fmt.Printf("%s  %s .. %s  frames=%d invalid=%d\n", s.Session, s.First.Format("2006-01-02 15:04:05"),
				s.Last.Format("15:04:05"), s.Frames, s.Errors)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("session", "", "export a session from the SQLite store instead of a CSV")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sessionsCmd)
}
