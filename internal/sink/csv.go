package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"interpol-harvester/internal/model"
)

type csvSink struct {
	path string
}

// NewCSV returns a sink that writes the full record set as CSV with the
// canonical header.
func NewCSV(path string) Sink {
	return &csvSink{path: path}
}

func (s *csvSink) Name() string { return "csv" }

func (s *csvSink) Write(ctx context.Context, notices []model.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(model.Columns()); err != nil {
		return err
	}
	for i := range notices {
		if err := w.Write(notices[i].Row()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return writeAtomic(s.path, buf.Bytes())
}

// ReadNotices loads a harvest CSV back into records, mapping columns by
// header name so files from older runs stay readable.
func ReadNotices(path string) ([]model.Notice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	out := make([]model.Notice, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, model.FromRow(header, row))
	}
	return out, nil
}
