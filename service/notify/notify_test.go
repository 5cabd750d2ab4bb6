package notify

import (
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)

	h.Publish(Event{Topic: TopicInventoryChanged, PartID: 7, Type: "usage", Quantity: 3})

	select {
	case ev := <-ch:
		if ev.PartID != 7 || ev.Type != "usage" || ev.Quantity != 3 {
			t.Errorf("event = %+v", ev)
		}
		if ev.At.IsZero() {
			t.Error("event timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe()
	h.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
	if n := h.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	id, _ := h.Subscribe()
	defer h.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		// Channel buffer is 16; publish past it without a reader.
		for i := 0; i < 64; i++ {
			h.Publish(Event{Topic: TopicInventoryChanged})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on slow subscriber")
	}
}

func TestFanout(t *testing.T) {
	a := NewHub()
	b := NewHub()
	idA, chA := a.Subscribe()
	idB, chB := b.Subscribe()
	defer a.Unsubscribe(idA)
	defer b.Unsubscribe(idB)

	Fanout{a, b}.Publish(Event{Topic: TopicPurchaseOrderUpdated, POID: 4})

	for _, ch := range []<-chan Event{chA, chB} {
		select {
		case ev := <-ch:
			if ev.POID != 4 {
				t.Errorf("POID = %d, want 4", ev.POID)
			}
		case <-time.After(time.Second):
			t.Fatal("fanout missed a port")
		}
	}
}
