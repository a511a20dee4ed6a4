package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a point every interval while a check runs. A checker
// span that keeps seeing heartbeats without its end event is the one
// stuck on a pathological unit.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	started  time.Time
	stop     chan struct{}
	once     sync.Once
	done     sync.WaitGroup
}

// StartHeartbeat returns nil when tracing is off or interval is not positive;
// Stop accepts the nil value.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: tracer, interval: interval, started: time.Now(), stop: make(chan struct{})}
	h.done.Add(1)
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer h.done.Done()
	tick := time.NewTicker(h.interval)
	defer tick.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-h.stop:
			return
		case now := <-tick.C:
			h.tracer.Emit(&Event{
				Time:   now,
				Seq:    NextSeq(),
				Kind:   KindHeartbeat,
				Scope:  ScopeRun,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d after %s", beat, now.Sub(h.started).Round(time.Millisecond)),
			})
		}
	}
}

// Stop ends the loop and waits for it; calling it twice is fine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	h.done.Wait()
}
