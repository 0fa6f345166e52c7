// Package chat implements the per-course chat rooms.
package chat

import (
	"sync"

	"educa/logger"
)

// Event is the frame delivered to room members.
type Event struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	User     string `json:"user"`
	Datetime string `json:"datetime"`
}

// Envelope is an event addressed to one group, as it travels on the bus.
type Envelope struct {
	Group string `json:"group"`
	Event Event  `json:"event"`
}

const sendBuffer = 32

// Subscription is one member's view of a group.
type Subscription struct {
	C     <-chan Event
	ch    chan Event
	group string
	hub   *Hub
	once  sync.Once
}

// Close leaves the group. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

// Hub fans events out to the members of each group in this process.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Subscription]struct{}
	log    *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{groups: make(map[string]map[*Subscription]struct{}), log: log.With("component", "ChatHub")}
}

func (h *Hub) Subscribe(group string) *Subscription {
	ch := make(chan Event, sendBuffer)
	sub := &Subscription{C: ch, ch: ch, group: group, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Subscription]struct{})
		h.groups[group] = members
	}
	members[sub] = struct{}{}
	h.log.Debug("member joined", "group", group, "members", len(members))
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.groups[sub.group]
	if _, ok := members[sub]; !ok {
		return
	}
	delete(members, sub)
	close(sub.ch)
	if len(members) == 0 {
		delete(h.groups, sub.group)
	}
	h.log.Debug("member left", "group", sub.group, "members", len(members))
}

// Broadcast delivers ev to every member of group. A member whose buffer is
// full misses the event.
func (h *Hub) Broadcast(group string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.groups[group] {
		select {
		case sub.ch <- ev:
		default:
			h.log.Warn("dropping chat event for slow member", "group", group)
		}
	}
}

// Members returns the number of members of group.
func (h *Hub) Members(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
