package relay

import (
	"sort"
	"sync"
)

type binding struct {
	room string
	name string
}

// presenceTracker records which display name each connection is
// presenting as, per room. One entry per connection: the same name bound
// by two connections appears twice in the room's presence list.
type presenceTracker struct {
	mu       sync.RWMutex
	bindings map[*Client]binding
	byRoom   map[string]map[*Client]string
}

func newPresenceTracker() *presenceTracker {
	return &presenceTracker{
		bindings: make(map[*Client]binding),
		byRoom:   make(map[string]map[*Client]string),
	}
}

func (pt *presenceTracker) bind(room string, c *Client, name string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if prev, ok := pt.bindings[c]; ok {
		pt.removeLocked(c, prev.room)
	}

	pt.bindings[c] = binding{room: room, name: name}
	if pt.byRoom[room] == nil {
		pt.byRoom[room] = make(map[*Client]string)
	}
	pt.byRoom[room][c] = name
}

// unbind removes the connection's binding and returns what was removed,
// so a departure can be announced exactly once.
func (pt *presenceTracker) unbind(c *Client) (binding, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	b, ok := pt.bindings[c]
	if !ok {
		return binding{}, false
	}

	delete(pt.bindings, c)
	pt.removeLocked(c, b.room)

	return b, true
}

// get returns the connection's current binding without removing it.
func (pt *presenceTracker) get(c *Client) (binding, bool) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	b, ok := pt.bindings[c]
	return b, ok
}

// namesIn returns the room's presence list, one entry per bound
// connection, sorted for stable payloads.
func (pt *presenceTracker) namesIn(room string) []string {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	names := make([]string, 0, len(pt.byRoom[room]))
	for _, name := range pt.byRoom[room] {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (pt *presenceTracker) removeLocked(c *Client, room string) {
	if clients, ok := pt.byRoom[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(pt.byRoom, room)
		}
	}
}
