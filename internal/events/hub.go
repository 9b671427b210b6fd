package events

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"velanspaces/pkg/metrics"
)

// Hub fans committed change events out to connected SSE subscribers.
// Subscribers register for a project id ("*" for the global scope a HEAD
// session watches) and receive every Change touching it. Slow subscribers
// drop events rather than block the hub; the client's snapshot re-fetch
// contract makes a dropped notification harmless once a later one lands.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	logger *zap.Logger
}

type Subscriber struct {
	projectID string
	ch        chan Change
}

// C is the subscriber's event channel.
func (s *Subscriber) C() <-chan Change {
	return s.ch
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		logger: logger,
	}
}

// Subscribe registers a listener for the given project id ("*" for all).
// The caller must Unsubscribe when it stops observing.
func (h *Hub) Subscribe(projectID string) *Subscriber {
	sub := &Subscriber{
		projectID: projectID,
		ch:        make(chan Change, 16),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	metrics.SSESubscribers.Inc()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
		metrics.SSESubscribers.Dec()
	}
	h.mu.Unlock()
}

// Broadcast delivers a change to every matching subscriber.
func (h *Hub) Broadcast(change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if sub.projectID != "*" && change.ProjectID != "" && sub.projectID != change.ProjectID {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			h.logger.Warn("Dropping event for slow subscriber",
				zap.String("collection", change.Collection),
				zap.String("project_id", change.ProjectID),
			)
		}
	}
}

// HandleMessage is the MQ consumer handler feeding the hub.
func (h *Hub) HandleMessage(ctx context.Context, data json.RawMessage) error {
	var change Change
	if err := json.Unmarshal(data, &change); err != nil {
		h.logger.Error("Failed to decode change event", zap.Error(err))
		// Malformed payloads are dropped, not requeued.
		return nil
	}

	h.Broadcast(change)
	return nil
}
