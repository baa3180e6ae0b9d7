// Package testutil builds throwaway databases and fakes for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/helloSanmi/e-vote/internal/bootstrap"
	"github.com/helloSanmi/e-vote/internal/entity"
	notification "github.com/helloSanmi/e-vote/internal/modules/notification/service"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in a temp dir. One connection keeps
// concurrent callers serialized the way row locks would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "evote.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedRoles(db))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *entity.User {
	t.Helper()
	user := &entity.User{
		FullName:     username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateStagedCandidate(t *testing.T, db *gorm.DB, name, lga string) *entity.Candidate {
	t.Helper()
	candidate := &entity.Candidate{Name: name, LGA: lga}
	require.NoError(t, db.Create(candidate).Error)
	return candidate
}

// CreatePeriod inserts a period directly, bypassing lifecycle checks, and
// moves every staged candidate onto it.
func CreatePeriod(t *testing.T, db *gorm.DB, start, end time.Time) *entity.VotingPeriod {
	t.Helper()
	period := &entity.VotingPeriod{StartTime: start.UTC(), EndTime: end.UTC()}
	require.NoError(t, db.Create(period).Error)
	require.NoError(t, db.Model(&entity.Candidate{}).
		Where("period_id IS NULL").
		Updates(map[string]interface{}{"period_id": period.ID, "published": true}).Error)
	return period
}

// Recorder is a Publisher that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *Recorder) Publish(_ context.Context, event notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []notification.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Names() []string {
	var names []string
	for _, e := range r.Events() {
		names = append(names, e.Name)
	}
	return names
}
