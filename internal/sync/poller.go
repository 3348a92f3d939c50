// Package sync keeps the terminal UI informed about backend reachability.
package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/memoask/internal/logger"
)

// BackendState describes the last known reachability of the backend.
type BackendState int

const (
	BackendUnknown BackendState = iota
	BackendChecking
	BackendOnline
	BackendOffline
)

func (s BackendState) String() string {
	switch s {
	case BackendChecking:
		return "checking"
	case BackendOnline:
		return "online"
	case BackendOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Status holds the result of the latest check.
type Status struct {
	State     BackendState
	LastCheck time.Time
	Error     error
}

// StatusMsg is a tea.Msg sent after every check.
type StatusMsg struct {
	Status Status
}

// Pinger checks the backend. *ai.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = 30 * time.Second

// pingTimeout is the maximum time allowed for a single check.
const pingTimeout = 5 * time.Second

// Poller pings the backend in the background and reports each result to
// the Bubble Tea runtime.
type Poller struct {
	pinger    Pinger
	interval  time.Duration
	status    Status
	resultCh  chan StatusMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller checking p every interval.
func New(p Pinger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		pinger:    p,
		interval:  interval,
		resultCh:  make(chan StatusMsg, 4),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a command that waits
// for the first result. Calling Start twice is a no-op.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.WaitForNextResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate check.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// a check is already queued
	}
}

// Status returns the result of the latest check.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.check()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.check()
		case <-p.triggerCh:
			p.check()
		}
	}
}

// check pings once, records the outcome and publishes it.
func (p *Poller) check() {
	p.setState(BackendChecking, nil)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	err := p.pinger.Ping(ctx)
	if err != nil {
		prev := p.Status().State
		if prev != BackendOffline {
			logger.Warn("backend unreachable", logger.Err(err))
		}
		p.setState(BackendOffline, err)
	} else {
		if p.Status().State == BackendOffline {
			logger.Info("backend reachable again")
		}
		p.setState(BackendOnline, nil)
	}

	st := p.Status()
	logger.Debug("backend check", slog.String("state", st.State.String()))
	p.sendResult(StatusMsg{Status: st})
}

func (p *Poller) setState(state BackendState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Checking is transient; keep the last verdict visible while it runs.
	if state == BackendChecking {
		if p.status.State == BackendUnknown {
			p.status.State = BackendChecking
		}
		return
	}

	p.status.State = state
	p.status.Error = err
	p.status.LastCheck = time.Now()
}

// sendResult publishes msg without blocking the poller.
func (p *Poller) sendResult(msg StatusMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if nobody is listening
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next check.
// Call it again after each StatusMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.resultCh:
			return msg
		case <-p.stopCh:
			return nil
		}
	}
}
