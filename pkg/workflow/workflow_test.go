package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tickrflow/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(maxRetries int) (*Engine, *MemoryStore) {
	store := NewMemoryStore()
	engine := NewEngine(store, RetryPolicy{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		BackoffFactor:   2.0,
	}, logger.NewNop())
	return engine, store
}

func TestStepExecutesAndCheckpoints(t *testing.T) {
	engine, store := newTestEngine(0)
	run := engine.NewRun("run-1")

	calls := 0
	out, err := Step(context.Background(), run, "fetch", func(context.Context) (string, error) {
		calls++
		return "hello", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, calls)

	raw, found, err := store.Get(context.Background(), "run-1", "fetch")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `"hello"`, string(raw))
}

func TestStepRestoresFromCheckpoint(t *testing.T) {
	engine, _ := newTestEngine(0)

	calls := 0
	fn := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	first, err := Step(context.Background(), engine.NewRun("run-2"), "compute", fn)
	require.NoError(t, err)

	second, err := Step(context.Background(), engine.NewRun("run-2"), "compute", fn)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "a checkpointed step must not re-execute")
}

func TestStepCheckpointsAreScopedPerRunAndName(t *testing.T) {
	engine, _ := newTestEngine(0)

	counter := 0
	fn := func(context.Context) (int, error) {
		counter++
		return counter, nil
	}

	a, err := Step(context.Background(), engine.NewRun("run-a"), "step", fn)
	require.NoError(t, err)
	b, err := Step(context.Background(), engine.NewRun("run-b"), "step", fn)
	require.NoError(t, err)
	c, err := Step(context.Background(), engine.NewRun("run-a"), "other", fn)
	require.NoError(t, err)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 3, c)
}

func TestStepRetriesUntilSuccess(t *testing.T) {
	engine, _ := newTestEngine(3)
	run := engine.NewRun("run-3")

	calls := 0
	out, err := Step(context.Background(), run, "flaky", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, calls)
}

func TestStepFailsAfterRetriesExhausted(t *testing.T) {
	engine, store := newTestEngine(2)
	run := engine.NewRun("run-4")

	calls := 0
	_, err := Step(context.Background(), run, "broken", func(context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("permanent")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
	assert.Contains(t, err.Error(), "step broken failed after 3 attempts")
	assert.ErrorContains(t, err, "permanent")

	_, found, getErr := store.Get(context.Background(), "run-4", "broken")
	require.NoError(t, getErr)
	assert.False(t, found, "a failed step must leave no checkpoint")
}

func TestStepHonorsContextCancellationBetweenRetries(t *testing.T) {
	store := NewMemoryStore()
	engine := NewEngine(store, RetryPolicy{
		MaxRetries:      5,
		InitialInterval: time.Minute,
		BackoffFactor:   2.0,
	}, logger.NewNop())
	run := engine.NewRun("run-5")

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Step(ctx, run, "slow", func(context.Context) (string, error) {
			calls++
			return "", fmt.Errorf("transient")
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("step did not return after context cancellation")
	}
}

func TestStepStructOutputRoundTrips(t *testing.T) {
	type payload struct {
		Emails []string `json:"emails"`
		Count  int      `json:"count"`
	}

	engine, _ := newTestEngine(0)

	want := payload{Emails: []string{"a@b.io", "c@d.io"}, Count: 2}
	_, err := Step(context.Background(), engine.NewRun("run-6"), "collect", func(context.Context) (payload, error) {
		return want, nil
	})
	require.NoError(t, err)

	got, err := Step(context.Background(), engine.NewRun("run-6"), "collect", func(context.Context) (payload, error) {
		t.Fatal("must not re-execute")
		return payload{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "r", "s")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "r", "s", []byte(`{"ok":true}`)))

	val, found, err := store.Get(ctx, "r", "s")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte(`{"ok":true}`), val)
}
