package relay

import (
	"testing"

	"github.com/npezzotti/go-chat-relay/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_queueEvent(t *testing.T) {
	t.Run("successful queue", func(t *testing.T) {
		c := &Client{
			send: make(chan *ServerEvent, 1),
			log:  testutil.TestLogger(t),
		}

		res := c.queueEvent(&ServerEvent{})
		assert.True(t, res, "expected queueEvent to return true when channel is not full")

		select {
		case ev := <-c.send:
			assert.NotNil(t, ev, "expected an event to be queued for the client")
		default:
			t.Error("expected an event to be queued for the client, but none was")
		}
	})
	t.Run("channel full", func(t *testing.T) {
		c := &Client{
			send: make(chan *ServerEvent, 1),
			log:  testutil.TestLogger(t),
		}

		c.send <- &ServerEvent{} // Pre-fill the send channel to simulate a full channel
		res := c.queueEvent(&ServerEvent{})
		assert.False(t, res, "expected queueEvent to return false when channel is full")
	})
}

func Test_stopClient(t *testing.T) {
	c := &Client{
		stop: make(chan struct{}),
	}

	c.stopClient()
	// a second stop must not panic on a closed channel
	c.stopClient()

	select {
	case <-c.stop:
		// Channel is closed as expected
	default:
		t.Error("expected stop channel to be closed")
	}
}

func Test_dispatchRecoversPanic(t *testing.T) {
	c := &Client{
		id:   "conn-a",
		send: make(chan *ServerEvent, 1),
		log:  testutil.TestLogger(t),
	}

	// a nil relay makes handleEvent panic; dispatch must contain it
	assert.NotPanics(t, func() {
		c.dispatch(&ClientEvent{client: c, Join: &Join{Username: "alice", Room: "r1"}})
	}, "expected dispatch to recover from handler panics")

	select {
	case ev := <-c.send:
		assert.NotNil(t, ev.Response, "expected an error response after a handler panic")
	default:
		t.Error("expected an error response to be queued after a handler panic")
	}
}
