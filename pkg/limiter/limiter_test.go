package limiter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduleRespectsCeiling(t *testing.T) {
	l := New(2)
	gate := make(chan struct{})
	errBoom := errors.New("boom")

	var running, peak atomic.Int32
	task := func(i int) func() (int, error) {
		return func() (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-gate
			running.Add(-1)
			if i == 2 {
				return 0, errBoom
			}
			return i * 10, nil
		}
	}

	futures := make([]*Future[int], 5)
	for i := range futures {
		futures[i] = Schedule(l, task(i))
	}

	require.Eventually(t, func() bool {
		return l.Active() == 2 && l.Pending() == 3
	}, time.Second, 5*time.Millisecond)
	require.EqualValues(t, 2, running.Load())

	close(gate)

	for i, f := range futures {
		got, err := f.Result()
		if i == 2 {
			require.ErrorIs(t, err, errBoom)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, i*10, got)
	}
	require.LessOrEqual(t, peak.Load(), int32(2))
	require.Eventually(t, func() bool { return l.Active() == 0 }, time.Second, 5*time.Millisecond)
	require.Zero(t, l.Pending())
}

func TestScheduleStartsQueuedTasksInOrder(t *testing.T) {
	l := New(1)
	gate := make(chan struct{})

	var (
		mu    sync.Mutex
		order []int
	)
	first := Schedule(l, func() (int, error) {
		<-gate
		return 0, nil
	})

	futures := []*Future[int]{first}
	for i := 1; i <= 4; i++ {
		futures = append(futures, Schedule(l, func() (int, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		}))
	}
	require.Equal(t, 4, l.Pending())
	close(gate)

	for _, f := range futures {
		_, err := f.Result()
		require.NoError(t, err)
	}
	require.Equal(t, []int{1, 2, 3, 4}, order)
}

func TestSchedulePanicReleasesSlot(t *testing.T) {
	l := New(1)
	bad := Schedule(l, func() (string, error) {
		panic("kaboom")
	})
	good := Schedule(l, func() (string, error) {
		return "ok", nil
	})

	_, err := bad.Result()
	require.ErrorIs(t, err, ErrPanic)

	got, err := good.Result()
	require.NoError(t, err)
	require.Equal(t, "ok", got)
}

func TestFutureWaitHonoursContext(t *testing.T) {
	l := New(1)
	gate := make(chan struct{})
	defer close(gate)
	f := Schedule(l, func() (int, error) {
		<-gate
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClampsCeiling(t *testing.T) {
	require.Equal(t, 1, New(0).Ceiling())
	require.Equal(t, 1, New(-3).Ceiling())
	require.Equal(t, 4, New(4).Ceiling())
}
