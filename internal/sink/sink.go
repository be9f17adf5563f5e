package sink

import (
	"context"
	"os"
	"path/filepath"

	"interpol-harvester/internal/model"
)

// Sink persists a full snapshot of the harvested records. Checkpoints rewrite
// the whole file each time, so a crash never leaves a half-written output.
type Sink interface {
	Name() string
	Write(ctx context.Context, notices []model.Notice) error
}

// writeAtomic writes b to path via a temp file in the same directory.
func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
