// Package sink holds the destinations monitoring events are delivered to.
package sink

import (
	"github.com/tejiriaustin/filemonitor/models"
	"github.com/tejiriaustin/filemonitor/monitoring"
)

// Multi delivers every event to each sink in turn, preserving emission order.
type Multi []monitoring.EventSink

var _ monitoring.EventSink = Multi(nil)

func NewMulti(sinks ...monitoring.EventSink) Multi {
	out := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m Multi) Emit(event models.Event) {
	for _, s := range m {
		s.Emit(event)
	}
}
