package sink

import (
	"context"
	"encoding/json"

	"interpol-harvester/internal/model"
)

type jsonSink struct {
	path string
}

// NewJSON returns a sink that writes the full record set as an indented
// JSON array.
func NewJSON(path string) Sink {
	return &jsonSink{path: path}
}

func (s *jsonSink) Name() string { return "json" }

func (s *jsonSink) Write(ctx context.Context, notices []model.Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if notices == nil {
		notices = []model.Notice{}
	}
	b, err := json.MarshalIndent(notices, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(s.path, append(b, '\n'))
}
