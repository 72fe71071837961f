// sim/events_test.go
// Copyright(c) 2025 vpsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/vpsim/vpsim/rand"
)

func TestEventStream(t *testing.T) {
	es := NewEventStream(nil)

	es.Post(Event{})
	sub := es.Subscribe()
	if len(sub.Get()) != 0 {
		t.Errorf("Returned non-empty slice")
	}

	es.Post(Event{Type: ManeuverStartEvent, Time: 3})
	es.Post(Event{Type: RestoredEvent, Time: 9})
	s := sub.Get()
	if len(s) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(s))
	}
	if s[0].Type != ManeuverStartEvent || s[0].Time != 3 {
		t.Errorf("Expected ManeuverStart at 3, got %v", s[0])
	}
	if s[1].Type != RestoredEvent || s[1].Time != 9 {
		t.Errorf("Expected Restored at 9, got %v", s[1])
	}

	if len(sub.Get()) != 0 {
		t.Errorf("Returned non-empty slice")
	}

	sub.Unsubscribe()
	es.Post(Event{Type: ConflictOnsetEvent})
	if len(es.events) != 0 {
		t.Errorf("Expected events to be dropped with no subscribers, have %d", len(es.events))
	}
}

func TestEventStreamCompact(t *testing.T) {
	es := NewEventStream(nil)
	r := rand.Make(1)

	// multiple consumers, at different offsets
	subs := [4]*EventsSubscription{es.Subscribe(), es.Subscribe(), es.Subscribe(), es.Subscribe()}
	// consume probability
	p := [4]float64{1, 0.75, 0.05, 0.5}
	// next value we expect to get from the stream
	var idx [4]int

	i, iter := 0, 0
	for i < 16384 {
		n := int(r.Float64() * 255)
		for j := 0; j < n; j++ {
			es.Post(Event{Type: EventType((i + j) % int(NumEventTypes))})
		}
		i += n

		if iter == 1 {
			subs[1].Unsubscribe()
		}

		for c, prob := range p {
			if r.Float64() > prob || (iter > 0 && c == 1) /* unsubscribed */ {
				continue
			}
			for _, ev := range subs[c].Get() {
				if idx[c] != int(ev.Type) {
					t.Errorf("expected %d, got %d for consumer %d", idx[c], int(ev.Type), c)
				}
				idx[c] = (idx[c] + 1) % int(NumEventTypes)
			}
		}
		iter++
	}

	for c, sub := range subs {
		if c != 1 {
			sub.Get()
		}
	}
	if len(es.events) != 0 {
		t.Errorf("Expected all events to be compacted away, have %d", len(es.events))
	}
}
