package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	files map[string][]byte
}

func (f *fakeSource) ReadHour(_ context.Context, coin, date string, hour int) ([]byte, error) {
	key := fmt.Sprintf("%s/%s-%02d", coin, date, hour)
	data, ok := f.files[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func line(tsMs int64) string {
	return fmt.Sprintf(`{"ts_ms":%d,"levels":[[{"px":"1","sz":"1"}],[{"px":"2","sz":"1"}]]}`, tsMs)
}

func TestLoadRangeMergesAndSorts(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"BTC/20240101-00": []byte(line(200) + "\n" + line(100) + "\n"),
		"BTC/20240101-01": []byte(line(150) + "\n"),
	}}

	events, err := LoadRange(context.Background(), src, "BTC", "20240101", "20240101", 2, nil)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqualf(t, events[i].TsMs, events[i-1].TsMs, "events not sorted: %+v", events)
	}
}

func TestLoadRangeSkipsMissingHours(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"BTC/20240101-00": []byte(line(100) + "\n"),
	}}

	events, err := LoadRange(context.Background(), src, "BTC", "20240101", "20240101", 4, nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestLoadRangeRejectsInvalidCoin(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{}}
	_, err := LoadRange(context.Background(), src, "../etc", "20240101", "20240101", 1, nil)
	require.Error(t, err)
}

func TestLoadRangeZeroEventsIsFatal(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{}}
	_, err := LoadRange(context.Background(), src, "BTC", "20240101", "20240101", 1, nil)
	require.Error(t, err)
}
