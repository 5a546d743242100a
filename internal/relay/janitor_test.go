package relay

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePurger struct {
	calls  atomic.Int32
	purged int64
	err    error
}

func (p *fakePurger) PurgeExpired(ctx context.Context) (int64, error) {
	p.calls.Add(1)
	return p.purged, p.err
}

func TestJanitorPurgesOnStart(t *testing.T) {
	purger := &fakePurger{purged: 5}
	janitor := NewJanitor(purger, 60, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return purger.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestJanitorStop(t *testing.T) {
	purger := &fakePurger{}
	janitor := NewJanitor(purger, 60, testLogger())

	done := make(chan struct{})
	go func() {
		janitor.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return purger.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	janitor.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestJanitorSurvivesPurgeError(t *testing.T) {
	purger := &fakePurger{err: errors.New("store down")}
	janitor := NewJanitor(purger, 60, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return purger.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestJanitorDefaultInterval(t *testing.T) {
	janitor := NewJanitor(&fakePurger{}, 0, testLogger())
	assert.Equal(t, 60, janitor.intervalMin)
}
