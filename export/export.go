// Package export turns capture files into statistics and Excel workbooks.
//
// Every row's cumulative mean is compared against the exact mean of the
// reduced distribution (see entropy.Model), giving a running z-score:
//
//	z_i = (cum_mean_i - model_mean) / (model_std_dev / sqrt(i+1))
//
// A healthy source hovers around zero. The share of values below the modulo
// split is reported as well, since that is where a broken reduction shows.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Thiagojm/rosc_serial_rng/entropy"
)

// Row is one captured value with its running statistics.
type Row struct {
	Label          string
	Value          uint16
	CumulativeMean float64
	ZScore         float64
}

// ReadCSV reads a capture CSV with two columns, timestamp and value, and no
// header. Labels become HH:MM:SS.mmm when the timestamp parses.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		s := strings.TrimSpace(rec[1])
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil || v >= entropy.Modulus {
			return nil, fmt.Errorf("invalid value '%s' on row %d", s, len(rows)+1)
		}
		rows = append(rows, Row{Label: formatTimeLabel(strings.TrimSpace(rec[0])), Value: uint16(v)})
	}
	return rows, nil
}

// ReadCSVFile is ReadCSV on a file path.
func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// RowsFromValues labels values by their position, starting at 1.
func RowsFromValues(values []uint16) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{Label: strconv.Itoa(i + 1), Value: v}
	}
	return rows
}

func formatTimeLabel(s string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05.000")
		}
	}
	return s
}

// CalculateZTest fills in CumulativeMean and ZScore against model.
func CalculateZTest(rows []Row, model entropy.Distribution) []Row {
	stdDev := math.Sqrt(model.Variance)
	if stdDev == 0 {
		return rows
	}
	sum := 0.0
	for i := range rows {
		sum += float64(rows[i].Value)
		n := float64(i + 1)
		cumMean := sum / n
		rows[i].CumulativeMean = cumMean
		rows[i].ZScore = (cumMean - model.Mean) / (stdDev / math.Sqrt(n))
	}
	return rows
}

// Summary condenses a capture.
type Summary struct {
	Count int
	Mean  float64
	// FinalZ is the last row's z-score.
	FinalZ float64
	// LowShare is the observed fraction of values below the model's split;
	// ExpectedLowShare is what the model predicts.
	LowShare         float64
	ExpectedLowShare float64
	// LowShareZ is the binomial z-score of LowShare.
	LowShareZ float64
	Min, Max  uint16
}

// Summarize computes a Summary of rows, which must have been through
// CalculateZTest.
func Summarize(rows []Row, model entropy.Distribution) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, errors.New("no data to summarize")
	}
	s := Summary{Count: len(rows), ExpectedLowShare: model.LowShare(), Min: math.MaxUint16}
	low := 0
	for _, r := range rows {
		if r.Value < model.Split {
			low++
		}
		if r.Value < s.Min {
			s.Min = r.Value
		}
		if r.Value > s.Max {
			s.Max = r.Value
		}
	}
	last := rows[len(rows)-1]
	s.Mean = last.CumulativeMean
	s.FinalZ = last.ZScore

	n := float64(len(rows))
	p := s.ExpectedLowShare
	s.LowShare = float64(low) / n
	s.LowShareZ = (s.LowShare - p) / math.Sqrt(p*(1-p)/n)
	return s, nil
}

// Bucket is one histogram bin covering [Lo, Hi).
type Bucket struct {
	Lo, Hi   int
	Count    int
	Expected float64
}

// Histogram bins rows into bins equal-width buckets over [0, Modulus) and
// attaches the count the model expects for each.
func Histogram(rows []Row, bins int, model entropy.Distribution) ([]Bucket, error) {
	if bins <= 0 || entropy.Modulus%bins != 0 {
		return nil, fmt.Errorf("bins must divide %d", entropy.Modulus)
	}
	width := entropy.Modulus / bins
	out := make([]Bucket, bins)
	for i := range out {
		out[i].Lo = i * width
		out[i].Hi = (i + 1) * width
		p := 0.0
		for v := out[i].Lo; v < out[i].Hi; v++ {
			p += model.Probability(uint16(v))
		}
		out[i].Expected = p * float64(len(rows))
	}
	for _, r := range rows {
		out[int(r.Value)/width].Count++
	}
	return out, nil
}
