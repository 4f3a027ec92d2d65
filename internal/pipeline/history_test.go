package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fplstats/internal/fpl"
)

func fakeHistory(id, rounds int) []fpl.HistoryEntry {
	entries := make([]fpl.HistoryEntry, 0, rounds)
	for r := 1; r <= rounds; r++ {
		entries = append(entries, fpl.HistoryEntry{
			Element:      id,
			Round:        r,
			OpponentTeam: 1,
			TotalPoints:  id + r,
		})
	}
	return entries
}

func TestCollectHistory_PreservesInputOrder(t *testing.T) {
	ref := sampleReference(t)
	ids := []int{3, 2, 1}

	fetch := func(ctx context.Context, id int) ([]fpl.HistoryEntry, error) {
		// First id finishes last: ordering must come from the input, not
		// from completion order.
		if id == 3 {
			time.Sleep(20 * time.Millisecond)
		}
		return fakeHistory(id, 2), nil
	}

	table, err := CollectHistory(context.Background(), ids, ref, fetch, HistoryOptions{Workers: 3}, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 6)

	var got []int
	for _, row := range table.Rows {
		got = append(got, row["element"].(int))
	}
	assert.Equal(t, []int{3, 3, 2, 2, 1, 1}, got)

	// Within one player, fetched round order is preserved.
	assert.Equal(t, 1, table.Rows[0]["round"])
	assert.Equal(t, 2, table.Rows[1]["round"])
}

func TestCollectHistory_AnnotatesNamesAndOpponents(t *testing.T) {
	ref := sampleReference(t)

	fetch := func(ctx context.Context, id int) ([]fpl.HistoryEntry, error) {
		return []fpl.HistoryEntry{{Element: id, Round: 1, OpponentTeam: 11, TotalPoints: 9}}, nil
	}

	table, err := CollectHistory(context.Background(), []int{2}, ref, fetch, HistoryOptions{}, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, "Saka", row["player"])
	assert.Equal(t, "MCI", row["opponent"])
	assert.Equal(t, 9, row["total_points"])
}

func TestCollectHistory_UnknownOpponentIsNull(t *testing.T) {
	ref := sampleReference(t)

	fetch := func(ctx context.Context, id int) ([]fpl.HistoryEntry, error) {
		return []fpl.HistoryEntry{{Element: id, Round: 1, OpponentTeam: 42}}, nil
	}

	table, err := CollectHistory(context.Background(), []int{1}, ref, fetch, HistoryOptions{}, nil)
	require.NoError(t, err)
	assert.Nil(t, table.Rows[0]["opponent"])
}

func TestCollectHistory_RetriesTransientFailures(t *testing.T) {
	ref := sampleReference(t)
	var calls atomic.Int32

	fetch := func(ctx context.Context, id int) ([]fpl.HistoryEntry, error) {
		if calls.Add(1) <= 2 {
			return nil, &fpl.TransientError{Endpoint: "/element-summary", Err: errors.New("timeout")}
		}
		return fakeHistory(id, 1), nil
	}

	opts := HistoryOptions{Retries: 2, Backoff: time.Millisecond}
	table, err := CollectHistory(context.Background(), []int{1}, ref, fetch, opts, nil)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCollectHistory_ExhaustedRetriesAbort(t *testing.T) {
	ref := sampleReference(t)
	var calls atomic.Int32

	fetch := func(ctx context.Context, id int) ([]fpl.HistoryEntry, error) {
		calls.Add(1)
		return nil, &fpl.TransientError{Endpoint: "/element-summary", Err: errors.New("timeout")}
	}

	opts := HistoryOptions{Retries: 1, Backoff: time.Millisecond}
	_, err := CollectHistory(context.Background(), []int{1}, ref, fetch, opts, nil)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())

	var transient *fpl.TransientError
	assert.True(t, errors.As(err, &transient))
}

func TestCollectHistory_NonTransientFailsImmediately(t *testing.T) {
	ref := sampleReference(t)
	var calls atomic.Int32

	fetch := func(ctx context.Context, id int) ([]fpl.HistoryEntry, error) {
		calls.Add(1)
		return nil, fmt.Errorf("element %d not found", id)
	}

	opts := HistoryOptions{Retries: 3, Backoff: time.Millisecond}
	_, err := CollectHistory(context.Background(), []int{1}, ref, fetch, opts, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCollectHistory_SkipOnError(t *testing.T) {
	ref := sampleReference(t)

	fetch := func(ctx context.Context, id int) ([]fpl.HistoryEntry, error) {
		if id == 2 {
			return nil, &fpl.TransientError{Endpoint: "/element-summary", Err: errors.New("refused")}
		}
		return fakeHistory(id, 1), nil
	}

	opts := HistoryOptions{Retries: 0, SkipOnError: true, Backoff: time.Millisecond}
	table, err := CollectHistory(context.Background(), []int{1, 2, 3}, ref, fetch, opts, nil)
	require.NoError(t, err)

	var got []int
	for _, row := range table.Rows {
		got = append(got, row["element"].(int))
	}
	assert.Equal(t, []int{1, 3}, got)
}

func TestCollectHistory_EmptyIDs(t *testing.T) {
	ref := sampleReference(t)
	fetch := func(ctx context.Context, id int) ([]fpl.HistoryEntry, error) {
		t.Fatal("fetch should not be called")
		return nil, nil
	}

	table, err := CollectHistory(context.Background(), nil, ref, fetch, HistoryOptions{}, nil)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}
