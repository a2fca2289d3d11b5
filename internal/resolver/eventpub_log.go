package resolver

import "github.com/rs/zerolog"

// LogPublisher forwards events to a zerolog logger at debug level.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(e Event) {
	ev := p.Log.Debug().Str("event", e.Name)
	if e.RequestID != "" {
		ev = ev.Str("request_id", e.RequestID)
	}
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg("resolver")
}
