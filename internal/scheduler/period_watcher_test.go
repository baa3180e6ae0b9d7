package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helloSanmi/e-vote/internal/entity"
	notification "github.com/helloSanmi/e-vote/internal/modules/notification/service"
	"github.com/helloSanmi/e-vote/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPeriods struct {
	period *entity.VotingPeriod
	err    error
}

func (s *stubPeriods) Latest(context.Context) (*entity.VotingPeriod, error) {
	return s.period, s.err
}

func TestPeriodWatcher_AnnouncesNaturalEndOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	periods := &stubPeriods{period: &entity.VotingPeriod{ID: 7, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(time.Hour)}}
	events := &testutil.Recorder{}
	w := NewPeriodWatcher(periods, events, nil, "@every 1m")
	w.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, w.Run(ctx))
	assert.Empty(t, events.Events(), "still open")

	now = now.Add(2 * time.Hour)
	require.NoError(t, w.Run(ctx))
	require.NoError(t, w.Run(ctx))

	got := events.Events()
	require.Len(t, got, 1)
	assert.Equal(t, notification.VotingEnded(7), got[0])
}

func TestPeriodWatcher_IgnoresForcedOrPublished(t *testing.T) {
	now := time.Now()
	events := &testutil.Recorder{}
	periods := &stubPeriods{period: &entity.VotingPeriod{ID: 1, EndTime: now.Add(-time.Hour), ForcedEnded: true}}
	w := NewPeriodWatcher(periods, events, nil, "")

	require.NoError(t, w.Run(context.Background()))
	periods.period = &entity.VotingPeriod{ID: 2, EndTime: now.Add(-time.Hour), ResultsPublished: true}
	require.NoError(t, w.Run(context.Background()))
	periods.period = nil
	require.NoError(t, w.Run(context.Background()))

	assert.Empty(t, events.Events())
}

func TestPeriodWatcher_PropagatesLookupError(t *testing.T) {
	w := NewPeriodWatcher(&stubPeriods{err: errors.New("db down")}, &testutil.Recorder{}, nil, "")
	assert.Error(t, w.Run(context.Background()))
}

func TestScheduler_RegisterAndRunByName(t *testing.T) {
	now := time.Now()
	events := &testutil.Recorder{}
	w := NewPeriodWatcher(&stubPeriods{period: &entity.VotingPeriod{ID: 3, EndTime: now.Add(-time.Minute)}}, events, nil, "@every 1h")

	s := NewScheduler()
	require.NoError(t, s.Register(w))
	assert.Equal(t, []string{"period-watcher"}, s.Jobs())

	require.NoError(t, s.RunByName(context.Background(), "period-watcher"))
	assert.Len(t, events.Events(), 1)
	assert.NoError(t, s.RunByName(context.Background(), "missing"))

	s.Start()
	s.Stop()
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler()
	err := s.Register(NewPeriodWatcher(&stubPeriods{}, &testutil.Recorder{}, nil, "not a cron schedule"))
	assert.Error(t, err)
}
