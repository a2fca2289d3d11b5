package resolver

import "jukebot/pkg/types"

// OutcomeSink consumes the single ResolutionOutcome emitted per call.
// Implemented by the diagnostics recorder and the metrics bridge.
type OutcomeSink interface {
	Record(types.ResolutionOutcome)
}

// noopSink is the default; it drops outcomes.
type noopSink struct{}

func (noopSink) Record(types.ResolutionOutcome) {}

type multiSink []OutcomeSink

func (m multiSink) Record(o types.ResolutionOutcome) {
	for _, s := range m {
		if s != nil {
			s.Record(o)
		}
	}
}

// MultiSink fans one outcome out to several sinks, in order.
func MultiSink(sinks ...OutcomeSink) OutcomeSink {
	return multiSink(sinks)
}
