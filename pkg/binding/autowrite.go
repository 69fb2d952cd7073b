package binding

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultInterval is how often the auto writer fires when none is configured.
const DefaultInterval = 30 * time.Second

// AutoWriter periodically writes the active file node through the bridge.
// It only ever performs Auto writes, so it never prompts.
type AutoWriter struct {
	bridge   *Bridge
	active   func() string
	interval time.Duration
	logger   *logrus.Entry

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutoWriter creates a stopped auto writer. active returns the id of the
// active file node, or "" when there is none.
func NewAutoWriter(bridge *Bridge, active func() string, interval time.Duration) *AutoWriter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &AutoWriter{
		bridge:   bridge,
		active:   active,
		interval: interval,
		logger:   bridge.logger.WithField("sub-component", "autowrite"),
	}
}

// Start launches the timer. Starting a running writer does nothing.
func (a *AutoWriter) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.run(ctx, a.done)
}

func (a *AutoWriter) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick(ctx)
		}
	}
}

// Tick performs one auto write of the active node.
func (a *AutoWriter) Tick(ctx context.Context) {
	id := a.active()
	if id == "" {
		return
	}
	if err := a.bridge.Write(ctx, id, Auto); err != nil {
		a.logger.WithError(err).WithField("node", id).Warn("auto write failed")
	}
}

// Stop halts the timer and waits for an in-flight tick. Stopping a stopped
// writer does nothing.
func (a *AutoWriter) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the timer is active.
func (a *AutoWriter) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}
