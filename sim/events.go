// sim/events.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/vpsim/vpsim/log"
	"github.com/vpsim/vpsim/math"
)

type EventType int

const (
	ConflictOnsetEvent EventType = iota
	ManeuverStartEvent
	AlertingTimeExtendedEvent
	RestoredEvent
	NumEventTypes
)

func (t EventType) String() string {
	return [...]string{"ConflictOnset", "ManeuverStart", "AlertingTimeExtended", "Restored"}[t]
}

// Event records a change in a trial's conflict handling. Heading and
// VerticalSpeed are the ownship's air-relative values when it was posted.
type Event struct {
	Type          EventType
	Time          float64
	Heading       float64
	VerticalSpeed float64
	AlertingTime  float64
}

func (e Event) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", e.Type.String()),
		slog.Float64("time", e.Time),
		slog.Float64("hdg", math.Degrees(e.Heading)),
		slog.Float64("vs_fpm", math.MPSToFPM(e.VerticalSpeed)),
		slog.Float64("alerting_time", e.AlertingTime))
}

func (e Event) String() string {
	return fmt.Sprintf("%s t=%.0f hdg %.1f vs %.0f alert %.1f", e.Type, e.Time,
		math.Degrees(e.Heading), math.MPSToFPM(e.VerticalSpeed), e.AlertingTime)
}

// EventStream is a small pub/sub log of trial events. Events posted when
// nobody is subscribed are dropped; each subscriber sees the events posted
// after it subscribed.
type EventStream struct {
	mu            sync.Mutex
	events        []Event
	subscriptions map[*EventsSubscription]interface{}
	lg            *log.Logger
}

type EventsSubscription struct {
	stream *EventStream
	// offset is offset in the EventStream stream array up to which the
	// subscriber has consumed events so far.
	offset int
	source string
}

func NewEventStream(lg *log.Logger) *EventStream {
	return &EventStream{
		subscriptions: make(map[*EventsSubscription]interface{}),
		lg:            lg,
	}
}

// Subscribe registers a new subscriber to the stream.
func (e *EventStream) Subscribe() *EventsSubscription {
	// Record the subscriber's callsite, so that we can more easily debug
	// subscribers that aren't consuming events.
	_, fn, line, _ := runtime.Caller(1)

	e.mu.Lock()
	defer e.mu.Unlock()

	sub := &EventsSubscription{
		stream: e,
		offset: len(e.events),
		source: fmt.Sprintf("%s:%d", fn, line),
	}
	e.subscriptions[sub] = nil
	return sub
}

// Unsubscribe removes a subscriber from the subscriber list
func (s *EventsSubscription) Unsubscribe() {
	s.stream.mu.Lock()
	defer s.stream.mu.Unlock()

	if _, ok := s.stream.subscriptions[s]; !ok {
		s.stream.lg.Errorf("Attempted to unsubscribe invalid subscription: %s", s.source)
	}
	delete(s.stream.subscriptions, s)
	s.stream.compact()
}

// Post adds an event to the stream.
func (e *EventStream) Post(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lg.Debug("posted event", slog.Any("event", event))

	// Ignore the event if no one's paying attention.
	if len(e.subscriptions) > 0 {
		e.events = append(e.events, event)
	}
}

// Get returns all of the events posted since the last call to Get.
func (s *EventsSubscription) Get() []Event {
	s.stream.mu.Lock()
	defer s.stream.mu.Unlock()

	if _, ok := s.stream.subscriptions[s]; !ok {
		s.stream.lg.Errorf("Attempted to get with unregistered subscription: %s", s.source)
		return nil
	}

	events := slices.Clone(s.stream.events[s.offset:])
	s.offset = len(s.stream.events)
	s.stream.compact()

	return events
}

// compact drops the events that all subscribers have seen.
func (e *EventStream) compact() {
	minOffset := len(e.events)
	for sub := range e.subscriptions {
		minOffset = min(minOffset, sub.offset)
	}
	if minOffset == 0 {
		return
	}
	e.events = slices.Delete(e.events, 0, minOffset)
	for sub := range e.subscriptions {
		sub.offset -= minOffset
	}
}
