package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForEachIndexAddressed(t *testing.T) {
	results, errs := ForEach(context.Background(), 50, 8, func(_ context.Context, i int) (int, error) {
		return i * i, nil
	})

	require.Len(t, results, 50)
	for i, r := range results {
		require.NoError(t, errs[i])
		require.Equal(t, i*i, r)
	}
}

func TestForEachIsolatesFailures(t *testing.T) {
	sentinel := errors.New("boom")
	results, errs := ForEach(context.Background(), 5, 2, func(_ context.Context, i int) (int, error) {
		if i == 2 {
			return 0, sentinel
		}
		return i, nil
	})

	for i := range results {
		if i == 2 {
			require.ErrorIs(t, errs[i], sentinel)
			continue
		}
		require.NoError(t, errs[i])
		require.Equal(t, i, results[i])
	}
}

func TestForEachCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := ForEach(ctx, 4, 1, func(ctx context.Context, i int) (int, error) {
		return i, ctx.Err()
	})

	// every slot reports an error; none is silently dropped
	for _, err := range errs {
		require.Error(t, err)
	}
}

func TestForEachZeroTotal(t *testing.T) {
	results, errs := ForEach(context.Background(), 0, 4, func(_ context.Context, i int) (int, error) {
		t.Fatal("task must not run")
		return 0, nil
	})
	require.Empty(t, results)
	require.Empty(t, errs)
}
