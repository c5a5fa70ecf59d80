// Package poller runs the background synchronizer that keeps the dashboard
// state converging on the inventory server.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"inventario/internal/domain/count"
	"inventario/internal/domain/session"
	"inventario/pkg/logger"
)

// DefaultInterval matches the refresh cadence operators expect on the
// status board.
const DefaultInterval = 3 * time.Second

var (
	pollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_poll_total",
		Help: "Synchronizer ticks by result.",
	}, []string{"result"})

	pollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventario_poll_duration_seconds",
		Help:    "Duration of one synchronizer tick.",
		Buckets: prometheus.DefBuckets,
	})
)

// Poller periodically pulls the server state and fans it out to the cycle
// controller, the status board and the notifier. Ticks never overlap; a
// slow upstream stretches the effective interval instead of piling up.
type Poller struct {
	gw       session.Gateway
	ctrl     *session.Controller
	board    *count.Board
	notifier *Notifier
	interval time.Duration

	scheduler *gocron.Scheduler

	mu   sync.RWMutex
	last session.Poll
	ok   bool
}

// New creates a Poller. Zero interval uses DefaultInterval.
func New(gw session.Gateway, ctrl *session.Controller, board *count.Board, notifier *Notifier, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		gw:        gw,
		ctrl:      ctrl,
		board:     board,
		notifier:  notifier,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start launches the poll loop in the background.
func (p *Poller) Start(ctx context.Context) error {
	_, err := p.scheduler.Every(p.interval).SingletonMode().Do(func() {
		p.tick(ctx)
	})
	if err != nil {
		return err
	}
	p.scheduler.StartAsync()
	logger.Info(ctx, "synchronizer started", "interval", p.interval.String())
	return nil
}

// Stop halts the poll loop and waits for a running tick.
func (p *Poller) Stop() {
	p.scheduler.Stop()
}

// LastPoll returns the most recent successful observation.
func (p *Poller) LastPoll() (session.Poll, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.ok
}

func (p *Poller) tick(ctx context.Context) {
	start := time.Now()
	tickCtx, cancel := context.WithTimeout(ctx, p.interval*20)
	defer cancel()

	poll, err := p.gw.FetchSession(tickCtx)
	pollDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		pollTotal.WithLabelValues("error").Inc()
		// A failed tick keeps the previous state; the next tick retries.
		logger.Warn(ctx, "synchronizer tick failed", "error", err)
		return
	}
	pollTotal.WithLabelValues("ok").Inc()

	state, notify := p.ctrl.ApplyPoll(ctx, poll)
	if poll.Numero > 0 {
		p.board.Apply(poll.Numero, poll.Records)
		p.notifier.Observe(poll.Records)
	}
	if notify {
		logger.Info(ctx, "new counting cycle detected", "numero", state.Numero)
	}

	p.mu.Lock()
	p.last = poll
	p.ok = true
	p.mu.Unlock()
}
