package hub

import (
	"testing"
	"time"

	"github.com/aisentinel/aisentinel/vessel"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	h := New(nil)
	_, ch := h.Subscribe()

	h.Publish(vessel.HistoryPoint{MMSI: 1})

	select {
	case pt := <-ch:
		if pt.MMSI != 1 {
			t.Errorf("received MMSI = %d, want 1", pt.MMSI)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the published point")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New(nil)
	id, ch := h.Subscribe()
	h.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Error("channel was not closed after Unsubscribe")
	}
}

func TestSlowSubscriberIsEvictedAfterCloseAfterFullSends(t *testing.T) {
	h := New(nil)
	_, ch := h.Subscribe()
	_ = ch // never drained, so the channel fills immediately

	for i := 0; i < ChannelCap+CloseAfter+1; i++ {
		h.Publish(vessel.HistoryPoint{MMSI: uint32(i)})
	}

	if h.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after a consistently-full subscriber is evicted", h.Count())
	}
}

func TestPublishDoesNotBlockWithNoSubscribers(t *testing.T) {
	h := New(nil)
	done := make(chan struct{})
	go func() {
		h.Publish(vessel.HistoryPoint{MMSI: 1})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers attached")
	}
}
