package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ariavision/svnwatch/internal/journal"
	"github.com/ariavision/svnwatch/internal/ledger"
	"github.com/ariavision/svnwatch/internal/logging"
)

// StatsPoller periodically aggregates today's journal activity and
// broadcasts it, so a freshly connected client sees numbers without
// waiting for the next cycle.
type StatsPoller struct {
	db       *journal.DB
	server   *Server
	interval time.Duration
	log      logging.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatsPoller builds a poller; interval defaults to 15s.
func NewStatsPoller(db *journal.DB, server *Server, interval time.Duration, log logging.Logger) *StatsPoller {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &StatsPoller{db: db, server: server, interval: interval, log: log}
}

// Start launches the poll goroutine.
func (p *StatsPoller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
}

// Stop halts polling and waits for the goroutine.
func (p *StatsPoller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *StatsPoller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *StatsPoller) poll(ctx context.Context) {
	stats, err := p.db.Aggregate(ctx, ledger.StartOfDay(time.Now()))
	if err != nil {
		p.log.Warning("stats poll: %v", err)
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	p.server.Broadcast(Message{Type: TypeStats, Timestamp: time.Now(), Data: data})
}
