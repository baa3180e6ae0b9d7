package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/helloSanmi/e-vote/internal/entity"
	notification "github.com/helloSanmi/e-vote/internal/modules/notification/service"
	"github.com/helloSanmi/e-vote/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
)

const closedMarkerTTL = 7 * 24 * time.Hour

// LatestPeriodFinder is satisfied by the period repository.
type LatestPeriodFinder interface {
	Latest(ctx context.Context) (*entity.VotingPeriod, error)
}

// PeriodWatcher announces votingEnded once for a period whose end time
// passed without an admin ending it.
type PeriodWatcher struct {
	periods     LatestPeriodFinder
	publisher   notification.Publisher
	redisClient *redis.Client
	schedule    string
	now         func() time.Time

	mu        sync.Mutex
	announced map[uint]bool
}

func NewPeriodWatcher(periods LatestPeriodFinder, publisher notification.Publisher, redisClient *redis.Client, schedule string) *PeriodWatcher {
	return &PeriodWatcher{
		periods:     periods,
		publisher:   publisher,
		redisClient: redisClient,
		schedule:    schedule,
		now:         time.Now,
		announced:   make(map[uint]bool),
	}
}

func (w *PeriodWatcher) Name() string     { return "period-watcher" }
func (w *PeriodWatcher) Schedule() string { return w.schedule }

func (w *PeriodWatcher) Run(ctx context.Context) error {
	period, err := w.periods.Latest(ctx)
	if err != nil {
		return fmt.Errorf("load latest period: %w", err)
	}
	if period == nil || !period.EndedNaturally(w.now()) {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.announced[period.ID] {
		return nil
	}

	first, err := ratelimit.Once(ctx, w.redisClient, fmt.Sprintf("period_closed:%d", period.ID), closedMarkerTTL)
	if err != nil {
		return err
	}
	w.announced[period.ID] = true
	if !first {
		// Another instance announced it.
		return nil
	}

	log.Printf("[Scheduler] voting period %d ended at %s", period.ID, period.EndTime.Format(time.RFC3339))
	w.publisher.Publish(ctx, notification.VotingEnded(period.ID))
	return nil
}
