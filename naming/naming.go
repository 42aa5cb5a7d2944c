// Package naming builds and parses capture file names.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/xid"
)

// Source identifies where captured values came from.
// Allowed values are: "rosc" (the device) and "sim" (host simulation).
type Source string

const (
	SourceDevice    Source = "rosc"
	SourceSimulated Source = "sim"
)

// Validate checks whether s is one of the allowed source identifiers.
func (s Source) Validate() error {
	if s == SourceDevice || s == SourceSimulated {
		return nil
	}
	return fmt.Errorf("invalid source: %q (allowed: rosc, sim)", string(s))
}

const stampLayout = "20060102T150405"

// BuildBaseName builds the base filename using the convention:
//
//	YYYYMMDDTHHMMSS_{source}_{session}
//
// where session is the capture's xid. The timestamp comes from now.
func BuildBaseName(now time.Time, source Source, session xid.ID) (string, error) {
	if err := source.Validate(); err != nil {
		return "", err
	}
	if session.IsNil() {
		return "", errors.New("session id must be set")
	}
	return fmt.Sprintf("%s_%s_%s", now.Format(stampLayout), string(source), session.String()), nil
}

// WithExt appends an extension to a base name. A leading dot on ext is
// optional. Empty ext returns base.
func WithExt(base string, ext string) string {
	if ext == "" {
		return base
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}

// JoinDir joins an optional directory with the filename.
func JoinDir(dir string, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// CapturePaths are the files one capture session writes.
type CapturePaths struct {
	// Raw holds frames exactly as received.
	Raw string
	// CSV holds timestamp,value rows.
	CSV string
}

// BuildCapturePaths builds the raw .txt and .csv paths inside dir (dir may be empty).
func BuildCapturePaths(dir string, now time.Time, source Source, session xid.ID) (CapturePaths, error) {
	base, err := BuildBaseName(now, source, session)
	if err != nil {
		return CapturePaths{}, err
	}
	return CapturePaths{
		Raw: JoinDir(dir, WithExt(base, ".txt")),
		CSV: JoinDir(dir, WithExt(base, ".csv")),
	}, nil
}

var baseNameRe = regexp.MustCompile(`(\d{8}T\d{6})_([a-z]+)_([0-9a-v]{20})`)

// Parsed is what ParseName recovered from a file name.
type Parsed struct {
	Started time.Time
	Source  Source
	Session xid.ID
}

// ParseName recovers the fields of a capture file name. Directories and
// extensions are ignored.
func ParseName(path string) (Parsed, error) {
	m := baseNameRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return Parsed{}, fmt.Errorf("not a capture file name: %s", filepath.Base(path))
	}
	started, err := time.ParseInLocation(stampLayout, m[1], time.Local)
	if err != nil {
		return Parsed{}, err
	}
	src := Source(m[2])
	if err := src.Validate(); err != nil {
		return Parsed{}, err
	}
	id, err := xid.FromString(m[3])
	if err != nil {
		return Parsed{}, fmt.Errorf("session id: %w", err)
	}
	return Parsed{Started: started, Source: src, Session: id}, nil
}
