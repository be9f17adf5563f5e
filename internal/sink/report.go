package sink

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CoverageRow is one line of the completeness report: how many notices the
// local harvest holds for a country versus what the API claims to have.
type CoverageRow struct {
	Country    string
	TotalAPI   int
	LocalCount int
	Missing    int
	Coverage   float64 // percent, one decimal
}

var reportHeader = []string{"country", "total_api", "local_count", "missing", "coverage_percent"}

// WriteReport writes the coverage report CSV.
func WriteReport(path string, rows []CoverageRow) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Country,
			strconv.Itoa(r.TotalAPI),
			strconv.Itoa(r.LocalCount),
			strconv.Itoa(r.Missing),
			strconv.FormatFloat(r.Coverage, 'f', 1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}

// ReadReport loads a coverage report written by WriteReport.
func ReadReport(path string) ([]CoverageRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	idx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		idx[col] = i
	}
	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	out := make([]CoverageRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		total, _ := strconv.Atoi(get(row, "total_api"))
		local, _ := strconv.Atoi(get(row, "local_count"))
		missing, _ := strconv.Atoi(get(row, "missing"))
		cov, _ := strconv.ParseFloat(get(row, "coverage_percent"), 64)
		out = append(out, CoverageRow{
			Country:    get(row, "country"),
			TotalAPI:   total,
			LocalCount: local,
			Missing:    missing,
			Coverage:   cov,
		})
	}
	return out, nil
}
