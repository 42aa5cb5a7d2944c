package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/xid"

	"github.com/Thiagojm/rosc_serial_rng/entropy"
	"github.com/Thiagojm/rosc_serial_rng/frame"
	"github.com/Thiagojm/rosc_serial_rng/hostserial"
	"github.com/Thiagojm/rosc_serial_rng/naming"
	"github.com/Thiagojm/rosc_serial_rng/store"
)

// captureSink writes readings to the raw and CSV files of one session and,
// when configured, to the SQLite store.
type captureSink struct {
	session xid.ID
	paths   naming.CapturePaths
	rawFile *os.File
	csvFile *os.File
	raw     *bufio.Writer
	csv     *bufio.Writer
	db      *store.Store

	frames  int
	invalid int
	dec     frame.Decoder
}

func newCaptureSink(ctx context.Context, source naming.Source) (*captureSink, error) {
	if err := os.MkdirAll(cfg.Capture.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating outdir: %w", err)
	}
	s := &captureSink{session: xid.New()}
	paths, err := naming.BuildCapturePaths(cfg.Capture.OutDir, time.Now(), source, s.session)
	if err != nil {
		return nil, err
	}
	s.paths = paths

	if s.rawFile, err = os.OpenFile(paths.Raw, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644); err != nil {
		return nil, fmt.Errorf("open raw file: %w", err)
	}
	if s.csvFile, err = os.OpenFile(paths.CSV, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644); err != nil {
		_ = s.rawFile.Close()
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	s.raw = bufio.NewWriter(s.rawFile)
	s.csv = bufio.NewWriter(s.csvFile)

	if cfg.Capture.SQLite != "" {
		if s.db, err = store.Open(ctx, cfg.Capture.SQLite); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	logger.Info("capture session started", "session", s.session.String(), "csv", paths.CSV, "raw", paths.Raw)
	return s, nil
}

// Record stores one reading. Frames that failed to decode go to the raw
// file only.
func (s *captureSink) Record(ctx context.Context, r hostserial.Reading) error {
	if _, err := s.raw.WriteString(r.Raw + frame.Terminator); err != nil {
		return fmt.Errorf("write raw: %w", err)
	}
	if r.Err != nil {
		s.invalid++
		logger.Warn("undecodable frame", "raw", r.Raw, "err", r.Err)
	} else {
		s.frames++
		if _, err := fmt.Fprintf(s.csv, "%s,%d\n", r.Timestamp.Format(time.RFC3339Nano), r.Value); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if s.db != nil {
		rec := store.Reading{Session: s.session, Timestamp: r.Timestamp, Value: r.Value, Raw: r.Raw}
		if r.Err != nil {
			rec.Err = r.Err.Error()
		}
		if err := s.db.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Write decodes a raw byte stream, so the sink can stand in for the host
// end of a simulated link.
func (s *captureSink) Write(p []byte) (int, error) {
	var err error
	s.dec.Feed(p, func(tok []byte) {
		if err != nil {
			return
		}
		v, perr := frame.ParseValue(tok, entropy.Modulus)
		err = s.Record(context.Background(), hostserial.Reading{
			Timestamp: time.Now(), Value: uint16(v), Raw: string(tok), Err: perr,
		})
	})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close flushes and closes everything the sink opened.
func (s *captureSink) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if s.raw != nil {
		keep(s.raw.Flush())
	}
	if s.csv != nil {
		keep(s.csv.Flush())
	}
	if s.rawFile != nil {
		keep(s.rawFile.Close())
	}
	if s.csvFile != nil {
		keep(s.csvFile.Close())
	}
	if s.db != nil {
		keep(s.db.Close())
	}
	logger.Info("capture session closed", "session", s.session.String(), "frames", s.frames, "invalid", s.invalid)
	return first
}
