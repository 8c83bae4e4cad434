package broadcast

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/wcckavaliers/scorebook/internal/domain/match"
	"github.com/wcckavaliers/scorebook/internal/platform/logging"
)

const subscriberBuffer = 8

// Hub fans newly ingested match reports out to live stream subscribers. A
// subscriber whose buffer is full misses the event; the stream is a
// convenience feed, the list endpoint is the source of truth.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan match.Report
	logger      *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		subscribers: make(map[string]chan match.Report),
		logger:      logger,
	}
}

// Subscribe registers a new stream consumer and returns its ID and channel.
// The channel is closed by Unsubscribe.
func (h *Hub) Subscribe() (string, <-chan match.Report) {
	id := uuid.NewString()
	ch := make(chan match.Report, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	h.logger.Debug("stream subscriber joined", "subscriber_id", id)

	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	if ok {
		close(ch)
		h.logger.Debug("stream subscriber left", "subscriber_id", id)
	}
}

// Publish delivers the report to every subscriber concurrently without
// blocking the caller on any single one.
func (h *Hub) Publish(report match.Report) {
	h.mu.RLock()
	targets := make(map[string]chan match.Report, len(h.subscribers))
	for id, ch := range h.subscribers {
		targets[id] = ch
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var wg conc.WaitGroup
	for id, ch := range targets {
		id, ch := id, ch
		wg.Go(func() {
			select {
			case ch <- report:
			default:
				h.logger.Warn("stream subscriber too slow, event dropped", "subscriber_id", id, "report_id", report.ID)
			}
		})
	}
	wg.Wait()
}

// SubscriberCount reports the number of live stream consumers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
