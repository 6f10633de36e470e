package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workforce-service/internal/observability"
)

type memoryLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released []string
}

func (l *memoryLocker) AcquireLock(_ context.Context, key, token string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.held == nil {
		l.held = map[string]string{}
	}
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = token
	return true, nil
}

func (l *memoryLocker) ReleaseLock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.released = append(l.released, key)
	}
	return nil
}

func newRunner(locker Locker) *PeriodicJobs {
	return NewPeriodicJobs(PeriodicDependencies{
		Locker:  locker,
		LockTTL: time.Minute,
		Metrics: observability.NewMetrics(),
	})
}

func TestRunOnceOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		run      func(context.Context) error
		expected string
	}{
		{name: "success", run: func(context.Context) error { return nil }, expected: OutcomeSuccess},
		{name: "error is swallowed", run: func(context.Context) error { return errors.New("db down") }, expected: OutcomeFailure},
		{name: "panic is recovered", run: func(context.Context) error { panic("bad run") }, expected: OutcomePanic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locker := &memoryLocker{}
			runner := newRunner(locker)

			var outcome string
			require.NotPanics(t, func() {
				outcome = runner.RunOnce(context.Background(), Job{Name: "refresh", Run: tt.run})
			})
			assert.Equal(t, tt.expected, outcome)
			assert.Equal(t, []string{lockPrefix + "refresh"}, locker.released)
			assert.Empty(t, locker.held)
		})
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	locker := &memoryLocker{held: map[string]string{lockPrefix + "refresh": "other-replica"}}
	runner := newRunner(locker)
	ran := false

	outcome := runner.RunOnce(context.Background(), Job{Name: "refresh", Run: func(context.Context) error {
		ran = true
		return nil
	}})

	assert.Equal(t, OutcomeSkipped, outcome)
	assert.False(t, ran)
	assert.Equal(t, "other-replica", locker.held[lockPrefix+"refresh"])
}

func TestRunOnceSkipsWhenLockerFails(t *testing.T) {
	runner := newRunner(&memoryLocker{err: errors.New("redis unreachable")})
	outcome := runner.RunOnce(context.Background(), Job{Name: "refresh", Run: func(context.Context) error { return nil }})
	assert.Equal(t, OutcomeSkipped, outcome)
}

func TestRunOnceWithoutLocker(t *testing.T) {
	runner := newRunner(nil)
	outcome := runner.RunOnce(context.Background(), Job{Name: "refresh", Run: func(context.Context) error { return nil }})
	assert.Equal(t, OutcomeSuccess, outcome)
}

func TestRunOnceAppliesTimeout(t *testing.T) {
	runner := NewPeriodicJobs(PeriodicDependencies{Timeout: 10 * time.Millisecond})
	outcome := runner.RunOnce(context.Background(), Job{Name: "slow", Run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	assert.Equal(t, OutcomeFailure, outcome)
}

func TestRegisterValidatesSpec(t *testing.T) {
	runner := newRunner(nil)
	assert.Error(t, runner.Register(Job{Name: "bad", Spec: "every now and then", Run: func(context.Context) error { return nil }}))
	assert.Error(t, runner.Register(Job{Name: "empty", Spec: "0 * * * *"}))
	assert.NoError(t, runner.Register(Job{Name: "hourly", Spec: "0 * * * *", Run: func(context.Context) error { return nil }}))

	runner.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	runner.Stop(ctx)
}
