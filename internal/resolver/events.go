package resolver

// Event names published by the orchestrator over a resolution's lifetime.
const (
	EventResolveStart    = "resolve.start"
	EventBackendLaunch   = "backend.launch"
	EventBackendResult   = "backend.result"
	EventHedgeLaunch     = "hedge.launch"
	EventHedgeSuppressed = "hedge.suppressed"
	EventResolveDone     = "resolve.done"
)

// Event represents a resolution lifecycle event.
// Minimal and stable: name + request ID and optional fields via key/values.
type Event struct {
	Name      string
	RequestID string
	Fields    map[string]any
}

// EventPublisher receives events from the orchestrator. Implementations
// should be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

type multiPublisher []EventPublisher

func (m multiPublisher) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}

// MultiPublisher fans one event out to several publishers, in order.
func MultiPublisher(pubs ...EventPublisher) EventPublisher {
	return multiPublisher(pubs)
}
