package candidate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/helloSanmi/e-vote/internal/entity"
	"github.com/helloSanmi/e-vote/internal/modules/candidate/dto"
	"github.com/helloSanmi/e-vote/internal/modules/candidate/repository"
	notification "github.com/helloSanmi/e-vote/internal/modules/notification/service"
	search "github.com/helloSanmi/e-vote/internal/modules/search/service"
	"github.com/helloSanmi/e-vote/internal/testutil"
	"github.com/helloSanmi/e-vote/pkg/apperror"
	commonDto "github.com/helloSanmi/e-vote/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "/uploads/" + folder + "-" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeIndex struct {
	indexed []uint
	removed []uint
	hits    []search.CandidateDoc
	query   string
	limit   int
}

func (f *fakeIndex) IndexCandidates(_ context.Context, candidates []*entity.Candidate) error {
	for _, c := range candidates {
		f.indexed = append(f.indexed, c.ID)
	}
	return errors.New("index unavailable")
}

func (f *fakeIndex) RemoveCandidates(_ context.Context, ids []uint) error {
	f.removed = append(f.removed, ids...)
	return nil
}

func (f *fakeIndex) SearchCandidates(_ context.Context, query string, limit int) ([]search.CandidateDoc, error) {
	f.query, f.limit = query, limit
	return f.hits, nil
}

type fixture struct {
	db      *gorm.DB
	svc     CandidateService
	storage *fakeStorage
	index   *fakeIndex
	events  *testutil.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:      testutil.NewDB(t),
		storage: &fakeStorage{},
		index:   &fakeIndex{},
		events:  &testutil.Recorder{},
	}
	f.svc = NewCandidateService(repository.NewCandidateRepository(f.db), f.storage, f.index, f.events)
	return f
}

func TestAddCandidate_SanitisesAndStages(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.AddCandidate(context.Background(), dto.CreateCandidateRequest{
		Name:     "  <b>Ada</b> Obi ",
		LGA:      "Ikeja<script>alert(1)</script>",
		PhotoURL: "img/ada.png",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", res.Name)
	assert.Equal(t, "Ikeja", res.LGA)
	require.NotNil(t, res.PhotoURL)
	assert.Equal(t, "/img/ada.png", *res.PhotoURL)
	assert.Nil(t, res.PeriodID)
	assert.False(t, res.Published)
	assert.Zero(t, res.Votes)

	// Indexing failures never fail the request.
	assert.Equal(t, []uint{res.ID}, f.index.indexed)
	assert.Equal(t, []string{notification.EventCandidatesUpdated}, f.events.Names())
}

func TestAddCandidate_RequiresNameAndLGA(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddCandidate(context.Background(), dto.CreateCandidateRequest{Name: "<i></i>", LGA: "Epe"}, nil)
	require.Error(t, err)
	assert.EqualError(t, err, "Candidate name and LGA are required")
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
}

func TestAddCandidate_UploadsPhoto(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.AddCandidate(context.Background(), dto.CreateCandidateRequest{
		Name:     "Ada",
		LGA:      "Ikeja",
		PhotoURL: "ignored.png",
	}, &commonDto.PhotoFile{Reader: strings.NewReader("png"), FileName: "ada.PNG"})
	require.NoError(t, err)
	require.NotNil(t, res.PhotoURL)
	assert.Equal(t, "/uploads/candidates-ada.PNG", *res.PhotoURL)
	assert.Len(t, f.storage.uploaded, 1)
}

func TestAddCandidate_RejectsNonImage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddCandidate(context.Background(), dto.CreateCandidateRequest{Name: "Ada", LGA: "Ikeja"},
		&commonDto.PhotoFile{Reader: strings.NewReader("x"), FileName: "ada.exe"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Empty(t, f.storage.uploaded)
}

func TestRemoveCandidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	photo := "/uploads/ada.png"
	staged := &entity.Candidate{Name: "Ada", LGA: "Ikeja", PhotoURL: &photo}
	require.NoError(t, f.db.Create(staged).Error)

	require.NoError(t, f.svc.RemoveCandidate(ctx, staged.ID))
	assert.Equal(t, []string{photo}, f.storage.deleted)
	assert.Equal(t, []uint{staged.ID}, f.index.removed)

	err := f.svc.RemoveCandidate(ctx, staged.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "Candidate not found or already published")
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestRemoveCandidate_PublishedIsProtected(t *testing.T) {
	f := newFixture(t)
	published := testutil.CreateStagedCandidate(t, f.db, "Ada", "Ikeja")
	testutil.CreatePeriod(t, f.db, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))

	err := f.svc.RemoveCandidate(context.Background(), published.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))

	var count int64
	require.NoError(t, f.db.Model(&entity.Candidate{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	none, err := f.svc.PublishedCandidates(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	zed := testutil.CreateStagedCandidate(t, f.db, "Zed", "Epe")
	ada := testutil.CreateStagedCandidate(t, f.db, "Ada", "Ikeja")
	period := testutil.CreatePeriod(t, f.db, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, f.db.Model(zed).Update("votes", 3).Error)
	staged := testutil.CreateStagedCandidate(t, f.db, "New", "Badagry")

	published, err := f.svc.PublishedCandidates(ctx, nil)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, ada.ID, published[0].ID)
	assert.Equal(t, zed.ID, published[1].ID)

	byPeriod, err := f.svc.PeriodCandidates(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, byPeriod, 2)
	assert.Equal(t, zed.ID, byPeriod[0].ID)

	admin, err := f.svc.AdminCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, admin, 3)
	assert.Equal(t, staged.ID, admin[0].ID)
}

func TestSearchCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.index.hits = []search.CandidateDoc{{ID: 1, Name: "Ada"}}

	empty, err := f.svc.SearchCandidates(ctx, dto.SearchQuery{Q: "  "})
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Empty(t, f.index.query)

	hits, err := f.svc.SearchCandidates(ctx, dto.SearchQuery{Q: " ada "})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
	assert.Equal(t, "ada", f.index.query)
	assert.Equal(t, defaultSearchLimit, f.index.limit)
}

func TestSearchCandidates_Disabled(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCandidateService(repository.NewCandidateRepository(db), nil, nil, nil)

	hits, err := svc.SearchCandidates(context.Background(), dto.SearchQuery{Q: "ada"})
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}
