package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"perpsim/internal/perps"
	"perpsim/internal/validate"
)

// FileSource is anything that can read one hour's raw JSONL bytes for a
// coin (local filesystem, or an S3-compatible bucket). LocalSource and
// S3Source implement this.
type FileSource interface {
	// ReadHour returns the raw bytes of <coin>/<YYYYMMDD-HH>.jsonl, or
	// ErrNotFound if that hour has no file.
	ReadHour(ctx context.Context, coin string, date string, hour int) ([]byte, error)
}

// ErrNotFound is returned by a FileSource when an hour's file does not
// exist; LoadRange logs the missing hour at debug level and skips it, it is
// not a fatal error.
var ErrNotFound = fmt.Errorf("ingest: event file not found")

// hourFile names one (coin, date, hour) file-loading unit, carrying its
// position in the requested sequence so ties in ts_ms break by file-order
// of appearance, not by whichever goroutine finishes first.
type hourFile struct {
	date  string
	hour  int
	index int
}

// LoadRange loads every per-hour event file for coin covering
// [startDate,endDate] (inclusive, YYYYMMDD), decodes each JSONL line, and
// returns all events merged and sorted by ts_ms (ties broken by file-order).
// Files are read concurrently up to ioConcurrency — the one ingest
// collaborator permitted to run in parallel; the decode and merge
// step itself is sequential.
func LoadRange(ctx context.Context, src FileSource, coin, startDate, endDate string, ioConcurrency int, log *zap.Logger) ([]perps.Event, error) {
	if err := validate.Coin(coin); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if ioConcurrency <= 0 {
		ioConcurrency = 1
	}

	files, err := enumerateHours(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("ingest: date range %s..%s yields no hour files", startDate, endDate)
	}

	results := make([][]perps.Event, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	tokens := make(chan struct{}, ioConcurrency)

	for _, f := range files {
		f := f
		group.Go(func() error {
			select {
			case tokens <- struct{}{}:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
			defer func() { <-tokens }()

			raw, err := src.ReadHour(groupCtx, coin, f.date, f.hour)
			if err != nil {
				if err == ErrNotFound {
					log.Debug("no event file for hour", zap.String("coin", coin), zap.String("date", f.date), zap.Int("hour", f.hour))
					return nil
				}
				log.Warn("skipping unreadable event file",
					zap.String("coin", coin), zap.String("date", f.date), zap.Int("hour", f.hour), zap.Error(err))
				return nil
			}

			events, skipped := decodeJSONL(raw)
			if skipped > 0 {
				log.Warn("skipped corrupt event lines",
					zap.String("coin", coin), zap.String("date", f.date), zap.Int("hour", f.hour), zap.Int("skipped", skipped))
			}
			results[f.index] = events
			log.Debug("loaded event file",
				zap.String("coin", coin), zap.String("date", f.date), zap.Int("hour", f.hour), zap.Int("events", len(events)))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("ingest: loading event files: %w", err)
	}

	var merged []perps.Event
	var order []int // file index each merged event came from, parallel to merged
	for idx, batch := range results {
		for range batch {
			order = append(order, idx)
		}
		merged = append(merged, batch...)
	}
	if len(merged) == 0 {
		return nil, fmt.Errorf("ingest: zero events loaded for %s in %s..%s", coin, startDate, endDate)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].TsMs != merged[j].TsMs {
			return merged[i].TsMs < merged[j].TsMs
		}
		return order[i] < order[j]
	})

	log.Info("events loaded", zap.String("coin", coin), zap.Int("count", len(merged)),
		zap.String("start_date", startDate), zap.String("end_date", endDate))
	return merged, nil
}

func decodeJSONL(raw []byte) ([]perps.Event, int) {
	var events []perps.Event
	skipped := 0
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i < len(raw) && raw[i] != '\n' {
			continue
		}
		line := raw[start:i]
		start = i + 1
		trimmed := trimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		ev, err := decodeLine(trimmed)
		if err != nil {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	return events, skipped
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\r') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func enumerateHours(startDate, endDate string) ([]hourFile, error) {
	start, err := time.Parse("20060102", startDate)
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid start_date %q: %w", startDate, err)
	}
	end, err := time.Parse("20060102", endDate)
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid end_date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("ingest: end_date %q before start_date %q", endDate, startDate)
	}

	var files []hourFile
	idx := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format("20060102")
		for hour := 0; hour < 24; hour++ {
			files = append(files, hourFile{date: date, hour: hour, index: idx})
			idx++
		}
	}
	return files, nil
}
