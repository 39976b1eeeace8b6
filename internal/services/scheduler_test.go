package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordedRun struct {
	task   string
	fields map[string]float64
}

type memoryRecorder struct {
	mu   sync.Mutex
	runs []recordedRun
}

func (r *memoryRecorder) RecordJob(task string, _ time.Duration, fields map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, recordedRun{task: task, fields: fields})
}

func TestSchedulerRunNow(t *testing.T) {
	recorder := &memoryRecorder{}
	s := NewScheduler(recorder, zaptest.NewLogger(t))

	require.NoError(t, s.Add("group__record_group_stats", "0 * * * *", func(context.Context) (map[string]float64, error) {
		return map[string]float64{"groups_recorded": 3}, nil
	}))

	fields, err := s.RunNow(context.Background(), "group__record_group_stats")
	require.NoError(t, err)
	assert.Equal(t, 3.0, fields["groups_recorded"])

	require.Len(t, recorder.runs, 1)
	assert.Equal(t, "group__record_group_stats", recorder.runs[0].task)

	_, err = s.RunNow(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestSchedulerRejectsBadRegistrations(t *testing.T) {
	s := NewScheduler(nil, zaptest.NewLogger(t))
	noop := func(context.Context) (map[string]float64, error) { return nil, nil }

	assert.Error(t, s.Add("job", "not a schedule", noop))
	require.NoError(t, s.Add("job", "@hourly", noop))
	assert.Error(t, s.Add("job", "@daily", noop))
	assert.Equal(t, map[string]string{"job": "@hourly"}, s.Jobs())
	assert.Equal(t, []string{"job"}, s.Names())
}

func TestSchedulerDoesNotOverlapRuns(t *testing.T) {
	s := NewScheduler(nil, zaptest.NewLogger(t))
	started := make(chan struct{})
	release := make(chan struct{})

	require.NoError(t, s.Add("slow", "@hourly", func(context.Context) (map[string]float64, error) {
		close(started)
		<-release
		return nil, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), "slow")
		done <- err
	}()
	<-started

	_, err := s.RunNow(context.Background(), "slow")
	assert.ErrorIs(t, err, ErrJobRunning)

	close(release)
	assert.NoError(t, <-done)
}

func TestSchedulerRecoversPanicsAndRecordsFailures(t *testing.T) {
	recorder := &memoryRecorder{}
	s := NewScheduler(recorder, zaptest.NewLogger(t))
	boom := errors.New("database down")

	require.NoError(t, s.Add("failing", "@hourly", func(context.Context) (map[string]float64, error) {
		return map[string]float64{"count_users_flagged_inactive": 1}, boom
	}))
	require.NoError(t, s.Add("panicking", "@hourly", func(context.Context) (map[string]float64, error) {
		panic("nil map")
	}))

	_, err := s.RunNow(context.Background(), "failing")
	assert.ErrorIs(t, err, boom)

	assert.NotPanics(t, func() {
		_, err = s.RunNow(context.Background(), "panicking")
	})
	assert.ErrorContains(t, err, "panicked")

	assert.Len(t, recorder.runs, 2)
	assert.Equal(t, 1.0, recorder.runs[0].fields["count_users_flagged_inactive"])
}

func TestSchedulerRunStopsWithContext(t *testing.T) {
	s := NewScheduler(nil, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
