//go:build !integration

package sched

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"emby-cdk-manager/internal/config"
	"emby-cdk-manager/internal/infra/scheduler"
	"emby-cdk-manager/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconcile struct {
	sweeps  atomic.Int32
	resyncs atomic.Int32
	err     error
}

func (f *fakeReconcile) SweepExpired(ctx context.Context) (usecase.SweepReport, error) {
	f.sweeps.Add(1)
	return usecase.SweepReport{Scanned: 2, Succeeded: 1, Failed: 1}, f.err
}

func (f *fakeReconcile) ResyncRemote(ctx context.Context) (usecase.ResyncReport, error) {
	f.resyncs.Add(1)
	return usecase.ResyncReport{}, f.err
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestWorkers_PropagateUseCaseErrors(t *testing.T) {
	uc := &fakeReconcile{err: errors.New("db down")}
	logger := newTestLogger()

	assert.Error(t, NewExpiryWorker(uc, logger).Run(context.Background()))
	assert.Error(t, NewResyncReconciler(uc, logger).Run(context.Background()))
	assert.Equal(t, int32(1), uc.sweeps.Load())
	assert.Equal(t, int32(1), uc.resyncs.Load())
}

func TestRegister(t *testing.T) {
	t.Run("should register both jobs under stable names", func(t *testing.T) {
		// --- Arrange ---
		uc := &fakeReconcile{}
		logger := newTestLogger()
		s := scheduler.NewScheduler(time.Second, logger)
		off := false
		cfg := config.SchedulerConfig{
			ExpirySchedules: []string{"0 * * * *", "0 3 * * *"},
			RunOnStart:      &off,
			ResyncInterval:  time.Minute,
		}

		// --- Act ---
		err := Register(s, cfg, NewExpiryWorker(uc, logger), NewResyncReconciler(uc, logger))

		// --- Assert ---
		require.NoError(t, err)
		require.NoError(t, s.Trigger(context.Background(), JobExpirySweep))
		require.NoError(t, s.Trigger(context.Background(), JobRemoteResync))
		assert.Equal(t, int32(1), uc.sweeps.Load())
		assert.Equal(t, int32(1), uc.resyncs.Load())
	})

	t.Run("should run the sweep once after start", func(t *testing.T) {
		uc := &fakeReconcile{}
		logger := newTestLogger()
		s := scheduler.NewScheduler(time.Second, logger)
		cfg := config.SchedulerConfig{
			ExpirySchedules: []string{"0 3 * * *"},
			StartupDelay:    10 * time.Millisecond,
			ResyncInterval:  time.Hour,
		}
		require.NoError(t, Register(s, cfg, NewExpiryWorker(uc, logger), NewResyncReconciler(uc, logger)))

		s.Start()
		defer func() { _ = s.Stop(context.Background()) }()

		assert.Eventually(t, func() bool { return uc.sweeps.Load() == 1 }, time.Second, 5*time.Millisecond)
	})

	t.Run("should reject a bad schedule", func(t *testing.T) {
		uc := &fakeReconcile{}
		logger := newTestLogger()
		s := scheduler.NewScheduler(0, logger)
		cfg := config.SchedulerConfig{ExpirySchedules: []string{"every hour"}, ResyncInterval: time.Minute}

		assert.Error(t, Register(s, cfg, NewExpiryWorker(uc, logger), NewResyncReconciler(uc, logger)))
	})
}
