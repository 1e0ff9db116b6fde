package scheduler

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls int32
}

func (r *countingRefresher) RefreshSilent(ctx context.Context) {
	atomic.AddInt32(&r.calls, 1)
}

type staticAuth bool

func (a staticAuth) Active() bool                     { return bool(a) }
func (a staticAuth) Restore(ctx context.Context) bool { return false }

// laterLogin has no session until one is remembered elsewhere
type laterLogin struct {
	remembered atomic.Bool
	active     atomic.Bool
	restores   int32
}

func (l *laterLogin) Active() bool { return l.active.Load() }

func (l *laterLogin) Restore(ctx context.Context) bool {
	atomic.AddInt32(&l.restores, 1)
	if l.remembered.Load() {
		l.active.Store(true)
	}
	return l.active.Load()
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStartRunsInitialRefresh(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewScheduler("@every 1h", refresher, staticAuth(true), quietLogger())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&refresher.calls) == 1 }, time.Second, 5*time.Millisecond)
}

func TestRefreshSkippedWithoutSession(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewScheduler("@every 1h", refresher, staticAuth(false), quietLogger())

	s.runRefresh()

	assert.Zero(t, atomic.LoadInt32(&refresher.calls))
}

func TestInvalidSchedule(t *testing.T) {
	s := NewScheduler("not a schedule", &countingRefresher{}, staticAuth(true), quietLogger())

	assert.Error(t, s.Start())
}

func TestRefreshPicksUpLaterLogin(t *testing.T) {
	refresher := &countingRefresher{}
	auth := &laterLogin{}
	s := NewScheduler("@every 1h", refresher, auth, quietLogger())

	s.runRefresh()
	assert.Zero(t, atomic.LoadInt32(&refresher.calls))

	auth.remembered.Store(true)
	s.runRefresh()
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.calls))

	s.runRefresh()
	assert.Equal(t, int32(2), atomic.LoadInt32(&refresher.calls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&auth.restores))
}
