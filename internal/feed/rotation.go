package feed

import (
	"sync/atomic"
	"time"

	"hadiqa-backend/internal/models"
)

// Broadcaster receives rotation ticks for push to connected clients.
type Broadcaster interface {
	BroadcastAll(msgType string, payload interface{})
}

// Rotator owns the wall-clock rotation counter shared by every home
// section. It replaces the client's interval-driven re-render: the
// counter is the only state, and selection stays pure and testable.
type Rotator struct {
	counter  atomic.Int64
	interval time.Duration
	hub      Broadcaster
	stop     chan struct{}
	done     chan struct{}
}

func NewRotator(interval time.Duration, hub Broadcaster) *Rotator {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Rotator{
		interval: interval,
		hub:      hub,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *Rotator) Counter() int64 {
	return r.counter.Load()
}

// Advance increments the counter once; exported so tests can drive
// rotation without a real timer.
func (r *Rotator) Advance() int64 {
	return r.counter.Add(1)
}

func (r *Rotator) Start() {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				counter := r.Advance()
				if r.hub != nil {
					r.hub.BroadcastAll("rotation", models.RotationUpdate{Counter: counter})
				}
			}
		}
	}()
}

func (r *Rotator) Stop() {
	close(r.stop)
	<-r.done
}
