package relay

import "sync"

// roomRegistry maps room names to their member connections. Rooms are
// created on first join and dropped when their last member leaves.
type roomRegistry struct {
	mu           sync.RWMutex
	rooms        map[string]map[*Client]struct{}
	roomByClient map[*Client]string
}

func newRoomRegistry() *roomRegistry {
	return &roomRegistry{
		rooms:        make(map[string]map[*Client]struct{}),
		roomByClient: make(map[*Client]string),
	}
}

// join adds the client to the room's member set, creating the room if
// needed. It reports whether the room was created. Idempotent for a
// client already in the room.
func (rr *roomRegistry) join(c *Client, room string) bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	members, ok := rr.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		rr.rooms[room] = members
	}
	members[c] = struct{}{}
	rr.roomByClient[c] = room

	return !ok
}

// leave removes the client from the room. It reports whether the room
// became empty and was dropped. No-op if the client is not a member.
func (rr *roomRegistry) leave(c *Client, room string) bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	members, ok := rr.rooms[room]
	if !ok {
		return false
	}
	if _, ok := members[c]; !ok {
		return false
	}

	delete(members, c)
	if rr.roomByClient[c] == room {
		delete(rr.roomByClient, c)
	}

	if len(members) == 0 {
		delete(rr.rooms, room)
		return true
	}
	return false
}

// membersOf returns a snapshot of the room's members.
func (rr *roomRegistry) membersOf(room string) []*Client {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	members := make([]*Client, 0, len(rr.rooms[room]))
	for c := range rr.rooms[room] {
		members = append(members, c)
	}
	return members
}

// roomOf returns the room the client is currently a member of, if any.
func (rr *roomRegistry) roomOf(c *Client) (string, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	room, ok := rr.roomByClient[c]
	return room, ok
}
