// Package metrics provides the injected sink for process counters. Handlers
// receive a Sink instead of touching package-level state, so tests can run
// without process-wide side effects.
package metrics

import "sync/atomic"

// Sink records error occurrences and exposes the running count.
type Sink interface {
	IncError()
	ErrorCount() int64
}

type counterSink struct {
	errors atomic.Int64
}

// NewSink returns an in-process counter sink.
func NewSink() Sink {
	return &counterSink{}
}

func (s *counterSink) IncError() {
	s.errors.Add(1)
}

func (s *counterSink) ErrorCount() int64 {
	return s.errors.Load()
}
