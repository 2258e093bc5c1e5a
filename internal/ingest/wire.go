// Package ingest loads and decodes the per-hour L2 snapshot files the
// perps engine consumes, from either a local filesystem root or an
// S3-compatible bucket, bounded and merged deterministically.
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/yanun0323/decimal"

	"perpsim/internal/orderbook"
	"perpsim/internal/perps"
)

// wireLevel is one decimal-string (px, sz, n) level.
type wireLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  uint32 `json:"n"`
}

// wireEvent is the canonical on-disk shape: one JSON object per line,
// levels[0] bids descending, levels[1] asks ascending.
type wireEvent struct {
	TsMs   int64         `json:"ts_ms"`
	Levels [][]wireLevel `json:"levels"`
}

// rawS3Event is original_source's alternate S3-object shape
// (`{"time":..,"raw":{"data":{"time":..,"levels":[...]}}}`), supported as a
// fallback decode alongside the simplified JSONL shape above.
type rawS3Event struct {
	Time int64 `json:"time"`
	Raw  struct {
		Data struct {
			Time   int64         `json:"time"`
			Levels [][]wireLevel `json:"levels"`
		} `json:"data"`
	} `json:"raw"`
}

// decodeLine parses one JSONL line into a perps.Event, trying the canonical
// wire shape first and falling back to the raw S3-object shape. Decimal
// px/sz strings are parsed with yanun0323/decimal rather than strconv, so a
// corrupt or overly precise decimal string surfaces as a decode error
// instead of a silently truncated float.
func decodeLine(line []byte) (perps.Event, error) {
	var we wireEvent
	if err := json.Unmarshal(line, &we); err == nil && we.TsMs != 0 && len(we.Levels) >= 2 {
		return toEvent(we.TsMs, we.Levels)
	}

	var raw rawS3Event
	if err := json.Unmarshal(line, &raw); err != nil {
		return perps.Event{}, fmt.Errorf("ingest: decoding event line: %w", err)
	}
	ts := raw.Raw.Data.Time
	if ts == 0 {
		ts = raw.Time
	}
	if ts == 0 || len(raw.Raw.Data.Levels) < 2 {
		return perps.Event{}, fmt.Errorf("ingest: event line matches neither known wire shape")
	}
	return toEvent(ts, raw.Raw.Data.Levels)
}

func toEvent(tsMs int64, levels [][]wireLevel) (perps.Event, error) {
	bids, err := toInputLevels(levels[0])
	if err != nil {
		return perps.Event{}, fmt.Errorf("ingest: decoding bids: %w", err)
	}
	asks, err := toInputLevels(levels[1])
	if err != nil {
		return perps.Event{}, fmt.Errorf("ingest: decoding asks: %w", err)
	}
	return perps.Event{TsMs: tsMs, Bids: bids, Asks: asks}, nil
}

func toInputLevels(levels []wireLevel) ([]orderbook.InputLevel, error) {
	out := make([]orderbook.InputLevel, 0, len(levels))
	for _, l := range levels {
		px, err := decimal.NewFromString(l.Px)
		if err != nil {
			return nil, fmt.Errorf("parsing px %q: %w", l.Px, err)
		}
		sz, err := decimal.NewFromString(l.Sz)
		if err != nil {
			return nil, fmt.Errorf("parsing sz %q: %w", l.Sz, err)
		}
		out = append(out, orderbook.InputLevel{Px: px.InexactFloat64(), Sz: sz.InexactFloat64()})
	}
	return out, nil
}
