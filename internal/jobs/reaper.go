// Package jobs hosts background maintenance tasks that run alongside the HTTP
// server. The only scheduled job today is the session reaper, which deletes
// expired session rows so the sessions table does not grow without bound.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SessionSweeper deletes sessions whose expiry has passed and reports how many
// rows were removed.
type SessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Reaper periodically sweeps expired sessions on a fixed interval.
type Reaper struct {
	cron     *cron.Cron
	sweeper  SessionSweeper
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// NewReaper builds a reaper that sweeps every interval. Intervals below one
// second are clamped; cron.Every has the same floor.
func NewReaper(sweeper SessionSweeper, interval time.Duration, log zerolog.Logger) *Reaper {
	if interval < time.Second {
		interval = time.Second
	}
	return &Reaper{
		cron:     cron.New(),
		sweeper:  sweeper,
		interval: interval,
		timeout:  30 * time.Second,
		log:      log,
	}
}

// Start schedules the sweep and starts the cron runner. Safe to call once.
func (r *Reaper) Start() {
	if r.sweeper == nil {
		return
	}
	r.cron.Schedule(cron.Every(r.interval), cron.FuncJob(r.sweep))
	r.cron.Start()
}

// Stop halts scheduling and waits briefly for a running sweep to finish.
func (r *Reaper) Stop() {
	ctx := r.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		r.log.Warn().Msg("session reaper stop timed out")
	}
}

func (r *Reaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	n, err := r.sweeper.SweepExpired(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if n > 0 {
		r.log.Info().Int64("removed", n).Msg("swept expired sessions")
	}
}
