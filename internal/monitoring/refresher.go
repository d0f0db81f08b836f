package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/clinique-espoir-be/internal/moderation"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Refresher keeps the moderation board close to the store between admin
// actions by re-listing it on a cron schedule.
type Refresher struct {
	board    *moderation.Board
	metrics  *Metrics
	schedule cron.Schedule
	timeout  time.Duration
	now      func() time.Time
	done     chan struct{}
	stopped  chan struct{}
}

// NewRefresher parses spec with the standard cron parser, which also accepts
// descriptors such as "@every 1m". timeout bounds each refresh.
func NewRefresher(board *moderation.Board, metrics *Metrics, spec string, timeout time.Duration) (*Refresher, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return &Refresher{
		board:    board,
		metrics:  metrics,
		schedule: schedule,
		timeout:  timeout,
		now:      time.Now,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Run refreshes once immediately, then at every scheduled time until Stop.
func (r *Refresher) Run() {
	log.Info().Msg("Starting board refresher")
	defer close(r.stopped)

	r.refresh()
	for {
		wait := time.NewTimer(time.Until(r.schedule.Next(r.now())))
		select {
		case <-r.done:
			wait.Stop()
			log.Info().Msg("Stopping board refresher")
			return
		case <-wait.C:
			r.refresh()
		}
	}
}

// Stop halts the refresher and waits for the loop to exit.
func (r *Refresher) Stop() {
	close(r.done)
	<-r.stopped
}

func (r *Refresher) refresh() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := r.board.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("Board refresh failed")
		r.metrics.ObserveRefresh("error")
		return
	}
	r.metrics.ObserveRefresh("ok")
	r.metrics.ObserveBoard(r.board.View(moderation.Query{}).Counters)
}
