package sim

import (
	"log/slog"
	"sync"

	"github.com/Versifine/stride/internal/event"
	"github.com/Versifine/stride/internal/kcc"
)

// Recorder keeps every character event published on a bus.
type Recorder struct {
	mu     sync.Mutex
	log    *slog.Logger
	events []event.CharacterEvent
}

// NewRecorder subscribes to bus. A nil logger records silently.
func NewRecorder(bus *event.Bus, log *slog.Logger) *Recorder {
	r := &Recorder{log: log}
	bus.Subscribe(event.Wildcard, r.handle)
	return r
}

func (r *Recorder) handle(raw any) {
	e, ok := raw.(event.CharacterEvent)
	if !ok {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	if r.log != nil {
		r.log.Info("character event",
			"body", e.Body,
			"tick", e.Tick,
			"event", e.Kind.String(),
			"pos", e.Position,
		)
	}
}

func (r *Recorder) Events() []event.CharacterEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.CharacterEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Counts tallies events per body and kind.
func (r *Recorder) Counts() map[string]map[kcc.EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]map[kcc.EventKind]int)
	for _, e := range r.events {
		if counts[e.Body] == nil {
			counts[e.Body] = make(map[kcc.EventKind]int)
		}
		counts[e.Body][e.Kind]++
	}
	return counts
}
