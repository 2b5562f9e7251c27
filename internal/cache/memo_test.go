package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoFillsOncePerKey(t *testing.T) {
	t.Parallel()

	memo := NewMemo[string, int]()
	var calls atomic.Int32
	fill := func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := memo.Get(ctx, "123", fill)
		require.NoError(t, err)
		require.Equal(t, 42, v)
	}
	require.EqualValues(t, 1, calls.Load())

	_, err := memo.Get(ctx, "456", fill)
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
	require.Equal(t, 2, memo.Len())
}

func TestMemoDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	memo := NewMemo[string, int]()
	boom := errors.New("boom")
	_, err := memo.Get(context.Background(), "k", func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, memo.Len())

	v, err := memo.Get(context.Background(), "k", func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestMemoInvalidate(t *testing.T) {
	t.Parallel()

	memo := NewMemo[string, int]()
	var calls atomic.Int32
	fill := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	ctx := context.Background()
	first, _ := memo.Get(ctx, "k", fill)
	memo.Invalidate("k")
	second, _ := memo.Get(ctx, "k", fill)
	require.Equal(t, 1, first)
	require.Equal(t, 2, second)

	memo.Reset()
	_, ok := memo.Peek("k")
	require.False(t, ok)
}

func TestMemoConcurrentCallersShareFill(t *testing.T) {
	t.Parallel()

	memo := NewMemo[int, string]()
	var calls atomic.Int32
	release := make(chan struct{})
	fill := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "done", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = memo.Get(context.Background(), 1, fill)
		}(i)
	}
	close(release)
	wg.Wait()

	for _, r := range results {
		require.Equal(t, "done", r)
	}
	require.EqualValues(t, 1, calls.Load())
	_, ok := memo.Peek(1)
	require.True(t, ok)
}

func TestValueInvalidate(t *testing.T) {
	t.Parallel()

	v := NewValue[string]()
	require.False(t, v.Loaded())

	got, err := v.Get(context.Background(), func(context.Context) (string, error) { return "a", nil })
	require.NoError(t, err)
	require.Equal(t, "a", got)
	require.True(t, v.Loaded())

	v.Invalidate()
	require.False(t, v.Loaded())
}

func TestMemoInvalidateDuringFillDropsStaleValue(t *testing.T) {
	t.Parallel()

	memo := NewMemo[string, int]()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int)

	go func() {
		v, _ := memo.Get(context.Background(), "k", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()

	<-started
	memo.Invalidate("k")
	close(release)
	require.Equal(t, 1, <-done)

	_, ok := memo.Peek("k")
	require.False(t, ok)

	v, err := memo.Get(context.Background(), "k", func(context.Context) (int, error) {
		return 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestValueInvalidateDuringFillDropsStaleValue(t *testing.T) {
	t.Parallel()

	slot := NewValue[string]()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = slot.Get(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	slot.Invalidate()
	close(release)
	<-done

	require.False(t, slot.Loaded())
}
