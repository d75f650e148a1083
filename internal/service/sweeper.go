package service

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often expired delete confirmations are dropped.
const DefaultSweepInterval = time.Minute

// ConfirmationSweeper periodically purges expired delete confirmations so an
// abandoned dialog does not hold its token forever.
type ConfirmationSweeper struct {
	flow     *DeleteFlow
	interval time.Duration
	logger   *slog.Logger

	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewConfirmationSweeper creates a sweeper. A zero interval uses DefaultSweepInterval.
func NewConfirmationSweeper(flow *DeleteFlow, interval time.Duration, logger *slog.Logger) *ConfirmationSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmationSweeper{
		flow:     flow,
		interval: interval,
		logger:   logger.With("component", "sweeper"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins sweeping in the background.
func (s *ConfirmationSweeper) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.ticker = time.NewTicker(s.interval)
	s.mu.Unlock()

	s.logger.Info("Sweeper started", "interval", s.interval)
	go s.run()
}

func (s *ConfirmationSweeper) run() {
	for {
		select {
		case <-s.ticker.C:
			s.RunNow()
		case <-s.stopCh:
			s.logger.Info("Sweeper stopped")
			return
		}
	}
}

// RunNow purges expired confirmations immediately.
func (s *ConfirmationSweeper) RunNow() int {
	removed := s.flow.Purge()
	if removed > 0 {
		s.logger.Debug("Purged expired delete confirmations", "count", removed)
	}
	return removed
}

// Stop stops the sweeper. It is safe to call more than once.
func (s *ConfirmationSweeper) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.isRunning = false
	})
}
