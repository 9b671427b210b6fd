package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoutingKey(t *testing.T) {
	c := Change{Collection: CollectionUpdates, ProjectID: "PRJ12345", EntityID: "u1", Action: "created"}
	assert.Equal(t, "project.PRJ12345.updates", c.RoutingKey())

	global := Change{Collection: CollectionWorkers, EntityID: "w1", Action: "created"}
	assert.Equal(t, "global.workers", global.RoutingKey())
}

func TestHubDeliversToMatchingSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe("PRJ12345")
	defer hub.Unsubscribe(sub)

	change := Change{Collection: CollectionRooms, ProjectID: "PRJ12345", Action: "updated"}
	hub.Broadcast(change)

	select {
	case got := <-sub.C():
		assert.Equal(t, change, got)
	default:
		t.Fatal("expected a delivered change")
	}
}

func TestHubFiltersOtherProjects(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe("PRJ12345")
	defer hub.Unsubscribe(sub)

	hub.Broadcast(Change{Collection: CollectionRooms, ProjectID: "PRJ99999", Action: "updated"})

	select {
	case got := <-sub.C():
		t.Fatalf("unexpected delivery: %+v", got)
	default:
	}
}

func TestHubWildcardSeesEverything(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe("*")
	defer hub.Unsubscribe(sub)

	hub.Broadcast(Change{Collection: CollectionProjects, ProjectID: "PRJ11111", Action: "created"})
	hub.Broadcast(Change{Collection: CollectionWorkers, Action: "created"})

	assert.Len(t, sub.C(), 2)
}

func TestHubGlobalChangesReachProjectSubscribers(t *testing.T) {
	// roster changes carry no project id and fan out to everyone
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe("PRJ12345")
	defer hub.Unsubscribe(sub)

	hub.Broadcast(Change{Collection: CollectionWorkers, EntityID: "w1", Action: "created"})
	assert.Len(t, sub.C(), 1)
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe("PRJ12345")
	defer hub.Unsubscribe(sub)

	for i := 0; i < 40; i++ {
		hub.Broadcast(Change{Collection: CollectionUpdates, ProjectID: "PRJ12345", Action: "created"})
	}
	// buffer caps out; the excess is dropped rather than blocking
	assert.Equal(t, cap(sub.ch), len(sub.C()))
}

func TestHandleMessage(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe("PRJ12345")
	defer hub.Unsubscribe(sub)

	payload, err := json.Marshal(Change{Collection: CollectionDesigns, ProjectID: "PRJ12345", Action: "created"})
	require.NoError(t, err)

	require.NoError(t, hub.HandleMessage(context.Background(), payload))
	assert.Len(t, sub.C(), 1)

	// malformed payloads are dropped without error so MQ never requeues them
	assert.NoError(t, hub.HandleMessage(context.Background(), json.RawMessage(`{`)))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sub := hub.Subscribe("PRJ12345")
	hub.Unsubscribe(sub)

	_, ok := <-sub.C()
	assert.False(t, ok)

	// double unsubscribe is harmless
	hub.Unsubscribe(sub)
}
