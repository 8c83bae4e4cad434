package broadcast

import (
	"testing"
	"time"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub(nil)

	_, first := hub.Subscribe()
	_, second := hub.Subscribe()

	hub.Publish(match.Report{ID: "report-1"})

	for i, ch := range []<-chan match.Report{first, second} {
		select {
		case report := <-ch:
			if report.ID != "report-1" {
				t.Fatalf("subscriber %d got %q", i, report.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)

	id, ch := hub.Subscribe()
	hub.Unsubscribe(id)

	if _, open := <-ch; open {
		t.Fatal("channel must be closed after unsubscribe")
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.SubscriberCount())
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub(nil)

	// Never drained; its buffer fills and further events are dropped.
	hub.Subscribe()
	_, healthy := hub.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+3; i++ {
			hub.Publish(match.Report{ID: "r"})
			<-healthy
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
