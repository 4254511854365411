// Package monitor polls the profile API in the background and reports when
// it goes away or comes back.
package monitor

import (
	"context"
	"sync"
	"time"

	"gsweb/internal/logger"
)

// DefaultInterval is used when no heartbeat interval is configured.
const DefaultInterval = 3 * time.Second

// Pinger is anything that can check the API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor runs a heartbeat against a Pinger.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	logger   logger.Logger
	onChange func(connected bool)

	mutex     sync.RWMutex
	connected bool
	started   bool

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a monitor. onChange, if not nil, is called from the worker
// goroutine whenever the connectivity state flips.
func New(pinger Pinger, interval time.Duration, log logger.Logger, onChange func(connected bool)) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		pinger:    pinger,
		interval:  interval,
		logger:    log,
		onChange:  onChange,
		connected: true,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start begins the heartbeat worker. It is a no-op after the first call.
func (m *Monitor) Start() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.logger.Debugf("Starting heartbeat every %s", m.interval)
	go m.heartbeatWorker()
}

// Stop shuts the worker down and waits for it to exit.
func (m *Monitor) Stop() {
	m.cancel()
	m.mutex.RLock()
	started := m.started
	m.mutex.RUnlock()
	if started {
		<-m.done
	}
}

// Connected reports the result of the last heartbeat.
func (m *Monitor) Connected() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.connected
}

func (m *Monitor) heartbeatWorker() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Debugf("Heartbeat stopped.")
			return
		case <-ticker.C:
			m.beat()
		}
	}
}

func (m *Monitor) beat() {
	err := m.pinger.Ping(m.ctx)
	if m.ctx.Err() != nil {
		return
	}
	up := err == nil

	m.mutex.Lock()
	changed := up != m.connected
	m.connected = up
	m.mutex.Unlock()

	if !changed {
		return
	}
	if up {
		m.logger.Infof("Profile API reachable again")
	} else {
		m.logger.Warnf("Profile API unreachable: %v", err)
	}
	if m.onChange != nil {
		m.onChange(up)
	}
}
