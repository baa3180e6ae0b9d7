package ballot

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/helloSanmi/e-vote/internal/entity"
	"github.com/helloSanmi/e-vote/internal/modules/ballot/repository"
	notification "github.com/helloSanmi/e-vote/internal/modules/notification/service"
	"github.com/helloSanmi/e-vote/internal/testutil"
	"github.com/helloSanmi/e-vote/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	svc       BallotService
	events    *testutil.Recorder
	period    *entity.VotingPeriod
	candidate *entity.Candidate
	voter     *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{db: db, events: &testutil.Recorder{}}
	f.candidate = testutil.CreateStagedCandidate(t, db, "Ada", "Ikeja")
	f.period = testutil.CreatePeriod(t, db, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, db.First(f.candidate, f.candidate.ID).Error)
	f.voter = testutil.CreateUser(t, db, "voter")
	f.svc = NewBallotService(repository.NewBallotRepository(db), f.events, nil, Options{
		Now: func() time.Time { return now },
	})
	return f
}

func (f *fixture) tally(t *testing.T) int64 {
	t.Helper()
	var c entity.Candidate
	require.NoError(t, f.db.First(&c, f.candidate.ID).Error)
	return c.Votes
}

func (f *fixture) voteRows(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&entity.Vote{}).Where("user_id = ?", f.voter.ID).Count(&count).Error)
	return count
}

func TestCastVote_ThenDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CastVote(ctx, f.voter.ID, nil, f.candidate.ID))
	assert.Equal(t, int64(1), f.tally(t))

	var user entity.User
	require.NoError(t, f.db.First(&user, "id = ?", f.voter.ID).Error)
	assert.True(t, user.HasVoted)

	err := f.svc.CastVote(ctx, f.voter.ID, nil, f.candidate.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "User already voted")
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	assert.Equal(t, int64(1), f.tally(t))
	assert.Equal(t, int64(1), f.voteRows(t))

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notification.EventVoteCast, events[0].Name)
	assert.Equal(t, notification.VotePayload{PeriodID: f.period.ID, CandidateID: f.candidate.ID}, events[0].Payload)
}

func TestCastVote_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.svc.CastVote(context.Background(), f.voter.ID, nil, f.candidate.ID)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.EqualError(t, err, "User already voted")
		assert.ErrorIs(t, err, apperror.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), f.tally(t))
	assert.Equal(t, int64(1), f.voteRows(t))
}

func TestCastVote_ManyVotersTallyMatchesRows(t *testing.T) {
	f := newFixture(t)

	const voters = 10
	users := make([]*entity.User, voters)
	for i := range users {
		users[i] = testutil.CreateUser(t, f.db, "voter"+uuid.NewString()[:8])
	}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, f.svc.CastVote(context.Background(), id, nil, f.candidate.ID))
		}(u.ID)
	}
	wg.Wait()

	var rows int64
	require.NoError(t, f.db.Model(&entity.Vote{}).Where("candidate_id = ?", f.candidate.ID).Count(&rows).Error)
	assert.Equal(t, int64(voters), rows)
	assert.Equal(t, rows, f.tally(t))
}

func TestCastVote_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := uuid.New()

	err := f.svc.CastVote(ctx, f.voter.ID, &other, f.candidate.ID)
	assert.EqualError(t, err, "User mismatch")
	assert.Equal(t, http.StatusForbidden, apperror.MapErrorToStatus(err))

	err = f.svc.CastVote(ctx, f.voter.ID, &f.voter.ID, 0)
	assert.EqualError(t, err, "candidateId is required")

	err = f.svc.CastVote(ctx, f.voter.ID, nil, 9999)
	assert.EqualError(t, err, "Candidate not available for this period")

	staged := testutil.CreateStagedCandidate(t, f.db, "Bola", "Epe")
	err = f.svc.CastVote(ctx, f.voter.ID, nil, staged.ID)
	assert.EqualError(t, err, "Candidate not available for this period")

	assert.Zero(t, f.voteRows(t))
	assert.Empty(t, f.events.Events())
}

func TestCastVote_NoPeriod(t *testing.T) {
	db := testutil.NewDB(t)
	voter := testutil.CreateUser(t, db, "voter")
	svc := NewBallotService(repository.NewBallotRepository(db), nil, nil, Options{})

	err := svc.CastVote(context.Background(), voter.ID, nil, 1)
	assert.EqualError(t, err, "No voting period")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestCastVote_ClosedWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(f.period).Update("forced_ended", true).Error)
	err := f.svc.CastVote(ctx, f.voter.ID, nil, f.candidate.ID)
	assert.EqualError(t, err, "Voting is not currently open")

	require.NoError(t, f.db.Model(f.period).Update("forced_ended", false).Error)
	late := NewBallotService(repository.NewBallotRepository(f.db), nil, nil, Options{
		Now: func() time.Time { return now.Add(2 * time.Hour) },
	})
	err = late.CastVote(ctx, f.voter.ID, nil, f.candidate.ID)
	assert.EqualError(t, err, "Voting is not currently open")

	early := NewBallotService(repository.NewBallotRepository(f.db), nil, nil, Options{
		Now: func() time.Time { return now.Add(-2 * time.Hour) },
	})
	err = early.CastVote(ctx, f.voter.ID, nil, f.candidate.ID)
	assert.EqualError(t, err, "Voting is not currently open")

	assert.Equal(t, int64(0), f.tally(t))
}

func TestCastVote_CandidateFromEarlierPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(f.period).Update("forced_ended", true).Error)
	testutil.CreateStagedCandidate(t, f.db, "Bola", "Epe")
	testutil.CreatePeriod(t, f.db, now.Add(-time.Minute), now.Add(time.Hour))

	err := f.svc.CastVote(ctx, f.voter.ID, nil, f.candidate.ID)
	assert.EqualError(t, err, "Candidate not available for this period")
}

func TestUserVote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.UserVote(ctx, f.voter.ID, f.period.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.CandidateID)

	require.NoError(t, f.svc.CastVote(ctx, f.voter.ID, &f.voter.ID, f.candidate.ID))

	got, err := f.svc.UserVote(ctx, f.voter.ID, f.period.ID)
	require.NoError(t, err)
	assert.Equal(t, f.candidate.ID, got.CandidateID)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "Ikeja", got.LGA)

	_, err = f.svc.UserVote(ctx, uuid.Nil, f.period.ID)
	assert.EqualError(t, err, "userId and periodId are required")
}
