package events

import (
	"testing"

	"github.com/jscyril/juke/api"
)

func TestPublishDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewEventBus()
	errs := bus.Subscribe(api.EventError, api.EventTrackSkipped)
	started := bus.Subscribe(api.EventTrackStarted)

	bus.Publish(api.AudioEvent{Type: api.EventTrackSkipped, Payload: "a.mp3"})

	select {
	case ev := <-errs:
		if ev.Type != api.EventTrackSkipped {
			t.Errorf("got event type %v, want %v", ev.Type, api.EventTrackSkipped)
		}
	default:
		t.Fatal("expected an event on the error subscription")
	}

	select {
	case ev := <-started:
		t.Errorf("unexpected event %v on track-started subscription", ev)
	default:
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe(api.EventStateChange)

	for i := 0; i < 100; i++ {
		bus.Publish(api.AudioEvent{Type: api.EventStateChange})
	}
	if got := len(ch); got != cap(ch) {
		t.Errorf("subscriber holds %d events, want %d", got, cap(ch))
	}
}

func TestCloseClosesSharedChannelOnce(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe(api.EventError, api.EventTrackEnded)

	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("expected closed channel")
	}
	bus.Publish(api.AudioEvent{Type: api.EventError})

	late := bus.Subscribe(api.EventError)
	if _, ok := <-late; ok {
		t.Error("subscription after Close should be closed")
	}
}

func TestNilBusPublish(t *testing.T) {
	var bus *EventBus
	bus.Publish(api.AudioEvent{Type: api.EventError})
}
