package service

import (
	"sync"
)

// EventType names a change published to subscribers.
type EventType string

const (
	EventNodeCreated      EventType = "node.created"
	EventNodeRenamed      EventType = "node.renamed"
	EventNodeDeleted      EventType = "node.deleted"
	EventNodeMoved        EventType = "node.moved"
	EventNodeUpdated      EventType = "node.updated"
	EventFolderToggled    EventType = "folder.toggled"
	EventTreeReorganized  EventType = "tree.reorganized"
	EventWorkspaceCreated EventType = "book.created"
	EventWorkspaceDeleted EventType = "book.deleted"
	EventWorkspaceUpdated EventType = "book.updated"
	EventWorkspaceSwitch  EventType = "book.switched"
	EventSessionChanged   EventType = "session.changed"
	EventReloaded         EventType = "state.reloaded"
)

// Event describes a change of the application state.
type Event struct {
	Type        EventType
	NodeID      string
	WorkspaceID string
}

// subscriberBuffer is the channel capacity per subscriber; events beyond it
// are dropped for that subscriber.
const subscriberBuffer = 64

type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[<-chan Event]chan Event
}

func newBroadcaster() *broadcaster {
	return &broadcaster{
		subscribers: make(map[<-chan Event]chan Event),
	}
}

func (b *broadcaster) subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = ch
	b.mu.Unlock()
	return ch
}

func (b *broadcaster) unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(c)
	}
}

// publish never blocks: a subscriber with a full buffer misses the event.
func (b *broadcaster) publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, ch := range b.subscribers {
		delete(b.subscribers, key)
		close(ch)
	}
}

// Subscribe returns a channel receiving every subsequent change. The caller
// must call Unsubscribe when done; Close closes all subscriptions.
func (s *Service) Subscribe() <-chan Event {
	return s.events.subscribe()
}

// Unsubscribe stops delivery to ch and closes it.
func (s *Service) Unsubscribe(ch <-chan Event) {
	s.events.unsubscribe(ch)
}

// Subscribers returns the number of active subscriptions.
func (s *Service) Subscribers() int {
	return s.events.count()
}
