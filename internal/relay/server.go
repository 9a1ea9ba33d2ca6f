package relay

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/npezzotti/go-chat-relay/internal/database"
	"github.com/npezzotti/go-chat-relay/internal/stats"
)

const (
	MetricActiveConnections = "ActiveConnections"
	MetricActiveRooms       = "ActiveRooms"
	MetricMessagesTotal     = "MessagesTotal"
	MetricImagesTotal       = "ImagesTotal"
	MetricStoreErrorsTotal  = "StoreErrorsTotal"
)

const defaultStoreTimeout = 5 * time.Second

// RelayServer is the broadcast engine. It owns the room registry and
// presence tracker and fans events out to the right connections.
type RelayServer struct {
	log      *log.Logger
	db       database.MessageRepository
	stats    stats.StatsProvider
	registry *roomRegistry
	presence *presenceTracker

	locksMu   sync.Mutex
	roomLocks map[string]*roomLock

	clients     map[*Client]struct{}
	clientsLock sync.Mutex

	storeTimeout time.Duration
	historyLimit int
}

// roomLock serializes compound registry/presence mutations for one room.
// Refcounted so entries for idle rooms can be dropped.
type roomLock struct {
	sync.Mutex
	refs int
}

func NewRelayServer(logger *log.Logger, db database.MessageRepository, su stats.StatsProvider, storeTimeout time.Duration, historyLimit int) (*RelayServer, error) {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}

	rs := &RelayServer{
		log:          logger,
		db:           db,
		stats:        su,
		registry:     newRoomRegistry(),
		presence:     newPresenceTracker(),
		roomLocks:    make(map[string]*roomLock),
		clients:      make(map[*Client]struct{}),
		storeTimeout: storeTimeout,
		historyLimit: historyLimit,
	}

	for _, name := range []string{
		MetricActiveConnections,
		MetricActiveRooms,
		MetricMessagesTotal,
		MetricImagesTotal,
		MetricStoreErrorsTotal,
	} {
		su.RegisterMetric(name)
	}

	return rs, nil
}

// handleEvent processes one event on behalf of its connection. Events
// from different connections run concurrently; per-room locks keep the
// registry and presence tracker consistent with each other.
func (rs *RelayServer) handleEvent(ev *ClientEvent) {
	c := ev.client
	switch {
	case ev.Join != nil:
		rs.handleJoin(c, ev.Join)
	case ev.Message != nil:
		rs.handlePublish(c, ev.Message)
	case ev.Image != nil:
		rs.handleImage(c, ev.Image)
	case ev.Typing != nil:
		rs.handleTyping(c, ev.Typing, true)
	case ev.StopTyping != nil:
		rs.handleTyping(c, ev.StopTyping, false)
	default:
		c.queueEvent(ErrInvalidEvent())
	}
}

func (rs *RelayServer) handleJoin(c *Client, ev *Join) {
	if ev.Username == "" || ev.Room == "" {
		c.queueEvent(ErrInvalidEvent())
		return
	}

	// at most one room per connection: a second join leaves the current
	// room first
	if b, ok := rs.presence.get(c); ok && b.room != ev.Room {
		rs.leaveRoom(c)
	}

	l := rs.lockRoom(ev.Room)
	created := rs.registry.join(c, ev.Room)
	rs.presence.bind(ev.Room, c, ev.Username)

	members := rs.registry.membersOf(ev.Room)
	rs.pushPresence(ev.Room, members)

	rs.replayHistory(c, ev.Room)

	announcement := &ServerEvent{
		Timestamp:        Now(),
		JoinAnnouncement: &Announcement{Room: ev.Room, Author: ev.Username},
	}
	for _, m := range members {
		m.queueEvent(announcement)
	}
	rs.unlockRoom(ev.Room, l)

	if created {
		rs.stats.Incr(MetricActiveRooms)
	}
}

func (rs *RelayServer) handlePublish(c *Client, ev *Publish) {
	if ev.Username == "" || ev.Room == "" || ev.Text == "" {
		c.queueEvent(ErrInvalidEvent())
		return
	}

	b, ok := rs.presence.get(c)
	if !ok {
		c.queueEvent(ErrNotJoined())
		return
	}

	// the server-side binding, not the event, decides room and author
	l := rs.lockRoom(b.room)
	rs.appendMessage(database.CreateMessageParams{Room: b.room, Author: b.name, Text: ev.Text})

	out := &ServerEvent{
		Timestamp:   Now(),
		ChatMessage: &ChatMessage{Room: b.room, Author: b.name, Text: ev.Text},
	}
	for _, m := range rs.registry.membersOf(b.room) {
		m.queueEvent(out)
	}
	rs.unlockRoom(b.room, l)

	rs.stats.Incr(MetricMessagesTotal)
}

func (rs *RelayServer) handleImage(c *Client, ev *Image) {
	if ev.Username == "" || ev.Room == "" || ev.Image == "" {
		c.queueEvent(ErrInvalidEvent())
		return
	}

	b, ok := rs.presence.get(c)
	if !ok {
		c.queueEvent(ErrNotJoined())
		return
	}

	l := rs.lockRoom(b.room)
	rs.appendMessage(database.CreateMessageParams{Room: b.room, Author: b.name, Image: ev.Image})

	out := &ServerEvent{
		Timestamp: Now(),
		ChatImage: &ChatImage{Room: b.room, Author: b.name, Image: ev.Image},
	}
	for _, m := range rs.registry.membersOf(b.room) {
		m.queueEvent(out)
	}
	rs.unlockRoom(b.room, l)

	rs.stats.Incr(MetricImagesTotal)
}

func (rs *RelayServer) handleTyping(c *Client, ev *Typing, started bool) {
	if ev.Username == "" || ev.Room == "" {
		c.queueEvent(ErrInvalidEvent())
		return
	}

	b, ok := rs.presence.get(c)
	if !ok {
		c.queueEvent(ErrNotJoined())
		return
	}

	notice := &TypingNotice{Room: b.room, Author: b.name}
	out := &ServerEvent{Timestamp: Now()}
	if started {
		out.TypingStarted = notice
	} else {
		out.TypingStopped = notice
	}

	// lossy-tolerant, never echoed back to the sender
	for _, m := range rs.registry.membersOf(b.room) {
		if m == c {
			continue
		}
		m.queueEvent(out)
	}
}

// handleDisconnect removes the connection from its room, if any, and
// announces the departure to the remaining members. Processing is
// idempotent; a connection that never joined produces no events.
func (rs *RelayServer) handleDisconnect(c *Client) {
	rs.leaveRoom(c)
}

func (rs *RelayServer) leaveRoom(c *Client) {
	room, ok := rs.registry.roomOf(c)
	if !ok {
		return
	}

	l := rs.lockRoom(room)
	emptied := rs.registry.leave(c, room)
	b, hadBinding := rs.presence.unbind(c)
	if hadBinding {
		members := rs.registry.membersOf(room)
		rs.pushPresence(room, members)

		announcement := &ServerEvent{
			Timestamp:         Now(),
			LeaveAnnouncement: &Announcement{Room: room, Author: b.name},
		}
		for _, m := range members {
			m.queueEvent(announcement)
		}
	}
	rs.unlockRoom(room, l)

	if emptied {
		rs.stats.Decr(MetricActiveRooms)
	}
}

func (rs *RelayServer) pushPresence(room string, members []*Client) {
	update := &ServerEvent{
		Timestamp:      Now(),
		PresenceUpdate: &PresenceUpdate{Room: room, Names: rs.presence.namesIn(room)},
	}
	for _, m := range members {
		m.queueEvent(update)
	}
}

// replayHistory pushes the room's persisted messages to the joining
// connection only, in store order.
func (rs *RelayServer) replayHistory(c *Client, room string) {
	ctx, cancel := context.WithTimeout(context.Background(), rs.storeTimeout)
	defer cancel()

	msgs, err := rs.db.MessagesByRoom(ctx, room, rs.historyLimit)
	if err != nil {
		rs.log.Println("MessagesByRoom:", err)
		rs.stats.Incr(MetricStoreErrorsTotal)
		return
	}

	for _, msg := range msgs {
		c.queueEvent(&ServerEvent{
			Timestamp: Now(),
			HistoryItem: &HistoryItem{
				Id:        msg.Id,
				Author:    msg.Author,
				Text:      msg.Text,
				Image:     msg.Image,
				Timestamp: msg.CreatedAt,
			},
		})
	}
}

// appendMessage is best-effort: a store failure is logged and counted
// but never blocks live delivery.
func (rs *RelayServer) appendMessage(params database.CreateMessageParams) {
	ctx, cancel := context.WithTimeout(context.Background(), rs.storeTimeout)
	defer cancel()

	if _, err := rs.db.CreateMessage(ctx, params); err != nil {
		rs.log.Println("CreateMessage:", err)
		rs.stats.Incr(MetricStoreErrorsTotal)
	}
}

func (rs *RelayServer) lockRoom(room string) *roomLock {
	rs.locksMu.Lock()
	l := rs.roomLocks[room]
	if l == nil {
		l = &roomLock{}
		rs.roomLocks[room] = l
	}
	l.refs++
	rs.locksMu.Unlock()

	l.Lock()
	return l
}

func (rs *RelayServer) unlockRoom(room string, l *roomLock) {
	l.Unlock()

	rs.locksMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(rs.roomLocks, room)
	}
	rs.locksMu.Unlock()
}

func (rs *RelayServer) RegisterClient(c *Client) {
	rs.clientsLock.Lock()
	rs.clients[c] = struct{}{}
	rs.clientsLock.Unlock()

	rs.stats.Incr(MetricActiveConnections)
}

func (rs *RelayServer) deregisterClient(c *Client) {
	rs.clientsLock.Lock()
	_, ok := rs.clients[c]
	delete(rs.clients, c)
	rs.clientsLock.Unlock()

	if ok {
		rs.stats.Decr(MetricActiveConnections)
	}
}

// Shutdown stops all connections and waits for them to deregister.
func (rs *RelayServer) Shutdown(ctx context.Context) error {
	rs.clientsLock.Lock()
	for c := range rs.clients {
		c.stopClient()
	}
	rs.clientsLock.Unlock()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		rs.clientsLock.Lock()
		remaining := len(rs.clients)
		rs.clientsLock.Unlock()
		if remaining == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
