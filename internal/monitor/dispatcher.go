package monitor

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Observer receives zone events. Errors are logged and counted by the
// dispatcher; they never reach the caller that reported the position.
type Observer interface {
	Notify(ev Event) error
}

type ObserverFunc func(ev Event) error

func (f ObserverFunc) Notify(ev Event) error { return f(ev) }

// Metrics is the subset of the service collector the core records into.
type Metrics interface {
	PositionReported(applied bool)
	ZoneEvent(kind EventKind)
	ObserverFailed(observer string)
}

type noopMetrics struct{}

func (noopMetrics) PositionReported(bool) {}
func (noopMetrics) ZoneEvent(EventKind) {}
func (noopMetrics) ObserverFailed(string) {}

type namedObserver struct {
	name string
	obs  Observer
}

// Dispatcher fans events out to observers in registration order.
type Dispatcher struct {
	log     zerolog.Logger
	metrics Metrics

	mu        sync.RWMutex
	observers []namedObserver
}

// NewDispatcher builds a dispatcher. m may be nil.
func NewDispatcher(log zerolog.Logger, m Metrics) *Dispatcher {
	if m == nil {
		m = noopMetrics{}
	}
	return &Dispatcher{log: log, metrics: m}
}

// Register adds an observer. The name labels its failures in logs and metrics.
func (d *Dispatcher) Register(name string, o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, namedObserver{name: name, obs: o})
}

// Dispatch delivers every event to every observer and returns the number of
// failed deliveries.
func (d *Dispatcher) Dispatch(events ...Event) int {
	if len(events) == 0 {
		return 0
	}
	d.mu.RLock()
	observers := make([]namedObserver, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	failed := 0
	for _, ev := range events {
		d.metrics.ZoneEvent(ev.Kind)
		for _, o := range observers {
			if err := deliver(o.obs, ev); err != nil {
				failed++
				d.metrics.ObserverFailed(o.name)
				d.log.Error().
					Err(err).
					Str("observer", o.name).
					Str("event", string(ev.Kind)).
					Str("entity", ev.EntityID).
					Str("zone", ev.ZoneID).
					Msg("Observer failed to handle zone event")
			}
		}
	}
	return failed
}

func deliver(o Observer, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return o.Notify(ev)
}
