package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	maxEventSize = 4096
)

// Client is one websocket connection. Its read pump processes one event
// at a time; the engine never outlives a client past disconnect.
type Client struct {
	id       string
	conn     *websocket.Conn
	relay    *RelayServer
	log      *log.Logger
	send     chan *ServerEvent
	stop     chan struct{}
	stopOnce sync.Once
}

func NewClient(id string, conn *websocket.Conn, rs *RelayServer, l *log.Logger) *Client {
	return &Client{
		id:    id,
		conn:  conn,
		relay: rs,
		log:   l,
		send:  make(chan *ServerEvent, 256),
		stop:  make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Printf("write exiting for %s", c.id)
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := serializeEvent(ev)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Printf("read exiting for %s", c.id)
	}()

	c.conn.SetReadLimit(maxEventSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var ev ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueEvent(ErrInvalidEvent())
			continue
		}

		ev.client = c
		c.dispatch(&ev)
	}
}

// dispatch isolates handler panics so a fault in one connection's event
// cannot affect any other connection's session.
func (c *Client) dispatch(ev *ClientEvent) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Printf("panic handling event from %s: %v", c.id, r)
			c.queueEvent(ErrInvalidEvent())
		}
	}()

	c.relay.handleEvent(ev)
}

func (c *Client) queueEvent(ev *ServerEvent) bool {
	select {
	case c.send <- ev:
	default:
		c.log.Printf("dropping event for %s, send channel full", c.id)
		return false
	}

	return true
}

func serializeEvent(ev *ServerEvent) ([]byte, error) {
	return json.Marshal(ev)
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.relay.handleDisconnect(c)
	c.relay.deregisterClient(c)
	c.stopClient()
}
