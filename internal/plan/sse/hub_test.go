package sse

import (
	"testing"
)

func TestHubPublishIsProjectScoped(t *testing.T) {
	h := NewHub(nil)
	a := &Client{ID: "a", ProjectID: "p1", Events: make(chan Event, 4)}
	b := &Client{ID: "b", ProjectID: "p2", Events: make(chan Event, 4)}
	h.Register(a)
	h.Register(b)

	h.Publish("p1", Event{EventType: "progress", Data: "40%"})

	select {
	case ev := <-a.Events:
		if ev.EventType != "progress" || ev.Data != "40%" {
			t.Errorf("got %+v", ev)
		}
	default:
		t.Fatal("subscribed client received nothing")
	}
	select {
	case ev := <-b.Events:
		t.Fatalf("client of another project received %+v", ev)
	default:
	}
}

func TestHubDropsWhenClientBufferFull(t *testing.T) {
	h := NewHub(nil)
	c := &Client{ID: "slow", ProjectID: "p1", Events: make(chan Event, 1)}
	h.Register(c)

	h.Publish("p1", Event{EventType: "progress", Data: "1"})
	// Must not block even though the buffer is full.
	h.Publish("p1", Event{EventType: "progress", Data: "2"})

	if ev := <-c.Events; ev.Data != "1" {
		t.Errorf("first event = %+v", ev)
	}
	select {
	case ev := <-c.Events:
		t.Fatalf("dropped event delivered: %+v", ev)
	default:
	}
}

func TestHubUnregisterClosesChannel(t *testing.T) {
	h := NewHub(nil)
	c := &Client{ID: "a", ProjectID: "p1", Events: make(chan Event, 1)}
	h.Register(c)
	h.Unregister("a")

	if _, open := <-c.Events; open {
		t.Fatal("channel still open after unregister")
	}
	// Publishing afterwards must not panic on the closed channel.
	h.Publish("p1", Event{EventType: "progress"})

	// Unregistering twice is a no-op.
	h.Unregister("a")
}

func TestHubPublishJSON(t *testing.T) {
	h := NewHub(nil)
	c := &Client{ID: "a", ProjectID: "p1", Events: make(chan Event, 1)}
	h.Register(c)

	h.PublishJSON("p1", "complete", map[string]int{"updates": 3})
	ev := <-c.Events
	if ev.EventType != "complete" {
		t.Errorf("event type = %q", ev.EventType)
	}
	if ev.Data != `{"updates":3}` {
		t.Errorf("data = %q", ev.Data)
	}
}
