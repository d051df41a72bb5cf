package interaction

import (
	"time"

	"github.com/oliver-os/canvas/internal/clock"
	"github.com/oliver-os/canvas/pkg/domain"
)

// cascadeTimer is one pending delayed activation: source fired it, target
// receives it.
type cascadeTimer struct {
	source string
	target string
	timer  clock.Timer
}

// scheduleCascadeLocked arms one timer per cascade target. Target k fires
// at delay*(k+1), so firing order follows declaration order with strictly
// increasing fire times. Caller holds g.mu.
func (g *Graph) scheduleCascadeLocked(source string, cascade *domain.Cascade) {
	delay := time.Duration(cascade.DelayMillis) * time.Millisecond
	for k, target := range cascade.Affects {
		ct := &cascadeTimer{source: source, target: target}
		fireIn := delay * time.Duration(k+1)
		ct.timer = g.clk.AfterFunc(fireIn, func() {
			g.fire(ct)
		})
		g.timers[source] = append(g.timers[source], ct)
	}
}

// cancelTimersLocked stops every pending timer owned by source. Timers
// from other sources that target the same objects are untouched. Caller
// holds g.mu.
func (g *Graph) cancelTimersLocked(source string) {
	for _, ct := range g.timers[source] {
		ct.timer.Stop()
	}
	delete(g.timers, source)
}

// fire runs when a cascade timer elapses: the target goes active and the
// timer record is retired. A timer no longer in the pending list was
// cancelled after its callback was already in flight (Stop returned false
// while fire was blocked on the lock); it must not activate anything.
func (g *Graph) fire(ct *cascadeTimer) {
	g.mu.Lock()

	// Drop the fired timer from the source's pending list.
	pending := g.timers[ct.source][:0]
	retired := false
	for _, other := range g.timers[ct.source] {
		if other == ct {
			retired = true
			continue
		}
		pending = append(pending, other)
	}
	if !retired {
		g.mu.Unlock()
		g.logger.Debug("cascade timer cancelled mid-flight", "source", ct.source, "target", ct.target)
		return
	}
	if len(pending) == 0 {
		delete(g.timers, ct.source)
	} else {
		g.timers[ct.source] = pending
	}

	obj, ok := g.objects[ct.target]
	if !ok {
		// Target deregistered while the timer was pending.
		g.mu.Unlock()
		g.logger.Debug("cascade target vanished", "source", ct.source, "target", ct.target)
		return
	}
	obj.active = true
	ev := &domain.ActivationEvent{
		Timestamp: g.clk.Now(),
		ObjectID:  ct.target,
		Active:    true,
		Cascaded:  true,
	}
	g.mu.Unlock()

	g.emit(ev)
}
