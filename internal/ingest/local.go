package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalSource reads event files from <root>/<COIN>/YYYYMMDD-HH.jsonl on
// the local filesystem. This is the default event source (events.source:
// local); S3Source is used when configured.
type LocalSource struct {
	Root string
}

func NewLocalSource(root string) *LocalSource {
	return &LocalSource{Root: root}
}

func (s *LocalSource) ReadHour(_ context.Context, coin, date string, hour int) ([]byte, error) {
	path := filepath.Join(s.Root, coin, fmt.Sprintf("%s-%02d.jsonl", date, hour))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ingest: reading %s: %w", path, err)
	}
	return data, nil
}
