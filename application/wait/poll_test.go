package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"e2e_automation/domain/errs"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fakeWaiter(timeout, interval time.Duration) (Waiter, *FakeClock) {
	clock := NewFakeClock(epoch)
	return Waiter{Timeout: timeout, Interval: interval, Clock: clock}, clock
}

func TestUntil_AlreadyTrueDoesNotSleep(t *testing.T) {
	w, clock := fakeWaiter(time.Second, 100*time.Millisecond)
	calls := 0

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		calls++
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.Sleeps())
}

func TestUntil_NeverTrueHonorsTimeoutExactly(t *testing.T) {
	w, clock := fakeWaiter(time.Second, 300*time.Millisecond)
	calls := 0

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Second, clock.Now().Sub(epoch))
	// 0, 300, 600, 900 and the final evaluation at the deadline
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{
		300 * time.Millisecond,
		300 * time.Millisecond,
		300 * time.Millisecond,
		100 * time.Millisecond,
	}, clock.Sleeps())
}

func TestUntil_FatalErrorStopsImmediately(t *testing.T) {
	w, clock := fakeWaiter(time.Second, 100*time.Millisecond)
	boom := errors.New("session deleted")

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		return false, boom
	})

	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, clock.Sleeps())
}

func TestUntil_NotFoundIsRetried(t *testing.T) {
	w, _ := fakeWaiter(time.Second, 100*time.Millisecond)
	calls := 0

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		calls++
		switch {
		case calls == 1:
			return false, errs.New(errs.ElementNotFound, "missing")
		case calls == 2:
			return false, errs.New(errs.StaleElement, "stale")
		}
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, calls)
}

func TestUntil_NotFoundUntilDeadlineIsTimeout(t *testing.T) {
	w, _ := fakeWaiter(500*time.Millisecond, 100*time.Millisecond)

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		return false, errs.New(errs.ElementNotFound, "missing")
	})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUntil_CustomIgnore(t *testing.T) {
	w, _ := fakeWaiter(time.Second, 100*time.Millisecond)
	w.Ignore = func(error) bool { return false }

	_, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		return false, errs.New(errs.ElementNotFound, "missing")
	})
	assert.True(t, errs.Is(err, errs.ElementNotFound))
}

func TestUntil_NegativeTimeoutEvaluatesOnce(t *testing.T) {
	w, clock := fakeWaiter(-1, 100*time.Millisecond)
	calls := 0

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.Sleeps())
}

func TestWaiter_Defaults(t *testing.T) {
	var w Waiter
	assert.Equal(t, DefaultTimeout, w.timeout())
	assert.Equal(t, DefaultInterval, w.interval())
	assert.Equal(t, RealClock, w.clock())

	w = w.WithTimeout(3 * time.Second).WithInterval(50 * time.Millisecond)
	assert.Equal(t, 3*time.Second, w.timeout())
	assert.Equal(t, 50*time.Millisecond, w.interval())

	w = w.WithTimeout(0).WithInterval(0)
	assert.Equal(t, 3*time.Second, w.timeout(), "zero keeps the current timeout")
	assert.Equal(t, 50*time.Millisecond, w.interval(), "zero keeps the current interval")
}

func TestRequire_TimeoutIsCodedError(t *testing.T) {
	w, _ := fakeWaiter(200*time.Millisecond, 100*time.Millisecond)

	err := w.Require(context.Background(), "landing marker", func(context.Context) (bool, error) {
		return false, nil
	})

	require.Error(t, err)
	assert.Equal(t, errs.Timeout, errs.CodeOf(err))
	assert.Contains(t, err.Error(), "landing marker")

	require.NoError(t, w.Require(context.Background(), "ready", func(context.Context) (bool, error) {
		return true, nil
	}))
}

func TestValue_ReturnsProducedValue(t *testing.T) {
	w, _ := fakeWaiter(time.Second, 100*time.Millisecond)
	n := 0

	got, ok, err := Value(context.Background(), w, func(context.Context) (int, bool, error) {
		n++
		return n * 10, n == 3, nil
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30, got)
}

func TestRequireValue(t *testing.T) {
	w, _ := fakeWaiter(100*time.Millisecond, 50*time.Millisecond)

	got, err := RequireValue(context.Background(), w, "token", func(context.Context) (string, bool, error) {
		return "partial", false, nil
	})
	assert.Equal(t, "", got, "timeout yields the zero value")
	assert.Equal(t, errs.Timeout, errs.CodeOf(err))

	got, err = RequireValue(context.Background(), w, "token", func(context.Context) (string, bool, error) {
		return "abc", true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestUntil_RealClock(t *testing.T) {
	w := New(60*time.Millisecond, 10*time.Millisecond)
	start := time.Now()

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		return false, nil
	})

	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func testDetectionWithinInterval_Properties(t *rapid.T) {
	timeout := time.Duration(rapid.Int64Range(2, 10_000).Draw(t, "timeoutMS")) * time.Millisecond
	interval := time.Duration(rapid.Int64Range(1, int64(timeout/time.Millisecond)-1).Draw(t, "intervalMS")) * time.Millisecond
	trueAt := time.Duration(rapid.Int64Range(0, int64(timeout)-1).Draw(t, "trueAtNS"))

	clock := NewFakeClock(epoch)
	w := Waiter{Timeout: timeout, Interval: interval, Clock: clock}

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		return !clock.Now().Before(epoch.Add(trueAt)), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("condition true at %s was never detected (timeout %s)", trueAt, timeout)
	}
	detectedAt := clock.Now().Sub(epoch)
	if detectedAt < trueAt || detectedAt > trueAt+interval {
		t.Fatalf("detected at %s, want within [%s, %s]", detectedAt, trueAt, trueAt+interval)
	}
}

func TestUntil_DetectionWithinInterval_Properties(t *testing.T) {
	rapid.Check(t, testDetectionWithinInterval_Properties)
}

func FuzzUntil_DetectionWithinInterval_Properties(f *testing.F) {
	f.Fuzz(rapid.MakeFuzz(testDetectionWithinInterval_Properties))
}

func testNeverTrueBounds_Properties(t *rapid.T) {
	timeout := time.Duration(rapid.Int64Range(1, 10_000).Draw(t, "timeoutMS")) * time.Millisecond
	interval := time.Duration(rapid.Int64Range(1, 20_000).Draw(t, "intervalMS")) * time.Millisecond

	clock := NewFakeClock(epoch)
	w := Waiter{Timeout: timeout, Interval: interval, Clock: clock}

	ok, err := w.Until(context.Background(), func(context.Context) (bool, error) {
		return false, nil
	})
	if err != nil || ok {
		t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
	}
	elapsed := clock.Now().Sub(epoch)
	if elapsed < timeout || elapsed > timeout+interval {
		t.Fatalf("returned after %s, want within [%s, %s]", elapsed, timeout, timeout+interval)
	}
	for _, d := range clock.Sleeps() {
		if d > interval {
			t.Fatalf("slept %s, longer than interval %s", d, interval)
		}
	}
}

func TestUntil_NeverTrueBounds_Properties(t *testing.T) {
	rapid.Check(t, testNeverTrueBounds_Properties)
}
