package buildpipeline

import "sync"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

// RecordingSink keeps every event; used by --ui=off summaries and tests.
type RecordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *RecordingSink) OnEvent(evt Event) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *RecordingSink) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Final returns the last terminal event per file.
func (r *RecordingSink) Final() map[string]Event {
	out := make(map[string]Event)
	for _, ev := range r.Events() {
		if ev.File != "" && ev.Status.Terminal() {
			out[ev.File] = ev
		}
	}
	return out
}
