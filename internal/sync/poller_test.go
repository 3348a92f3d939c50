package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPinger struct {
	mu    gosync.Mutex
	errs  []error
	calls int
}

func (s *scriptedPinger) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func nextStatus(t *testing.T, p *Poller) Status {
	t.Helper()

	done := make(chan StatusMsg, 1)
	go func() {
		msg, _ := p.WaitForNextResult()().(StatusMsg)
		done <- msg
	}()

	select {
	case msg := <-done:
		return msg.Status
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status")
		return Status{}
	}
}

func TestPollerReportsOnline(t *testing.T) {
	p := New(&scriptedPinger{}, time.Hour)
	cmd := p.Start()
	require.NotNil(t, cmd)
	defer p.Stop()

	msg, ok := cmd().(StatusMsg)
	require.True(t, ok)
	assert.Equal(t, BackendOnline, msg.Status.State)
	assert.NoError(t, msg.Status.Error)
	assert.False(t, msg.Status.LastCheck.IsZero())
}

func TestPollerRefreshAfterFailure(t *testing.T) {
	pinger := &scriptedPinger{errs: []error{errors.New("connection refused")}}
	p := New(pinger, time.Hour)
	p.Start()
	defer p.Stop()

	st := nextStatus(t, p)
	assert.Equal(t, BackendOffline, st.State)
	assert.EqualError(t, st.Error, "connection refused")
	assert.Equal(t, BackendOffline, p.Status().State)

	p.Refresh()
	st = nextStatus(t, p)
	assert.Equal(t, BackendOnline, st.State)
}

func TestStartTwiceIsNoop(t *testing.T) {
	p := New(&scriptedPinger{}, time.Hour)
	require.NotNil(t, p.Start())
	assert.Nil(t, p.Start())
	p.Stop()
	p.Stop()
}

func TestWaitReturnsNilAfterStop(t *testing.T) {
	p := New(&scriptedPinger{}, time.Hour)
	first := p.Start()
	_, ok := first().(StatusMsg)
	require.True(t, ok)
	p.Stop()

	assert.Nil(t, p.WaitForNextResult()())
}

func TestBackendStateString(t *testing.T) {
	assert.Equal(t, "online", BackendOnline.String())
	assert.Equal(t, "offline", BackendOffline.String())
	assert.Equal(t, "unknown", BackendUnknown.String())
}
