package stream

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/energy-data-api/internal/models"
	"github.com/gorilla/websocket"
)

const clientBufferSize = 16

// Hub fans newly created energy records out to connected websocket
// clients. Clients that cannot keep up are dropped rather than allowed
// to block the writers.
type Hub struct {
	clients map[*Client]bool
	mux     sync.RWMutex
}

// Client is one websocket subscriber
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

// Register attaches a websocket connection to the hub and starts its
// read/write pumps. The read pump exists only to observe the close
// handshake; inbound messages are discarded.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, clientBufferSize),
	}

	h.mux.Lock()
	h.clients[client] = true
	h.mux.Unlock()

	go client.writePump()
	go client.readPump()
	return client
}

// Publish broadcasts a created record to every connected client
func (h *Hub) Publish(record models.EnergyRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		log.Printf("[Stream] Failed to marshal record: %v", err)
		return
	}

	// Sends happen under the read lock and channel close under the write
	// lock, so a send can never race a close.
	var slow []*Client
	h.mux.RLock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mux.RUnlock()

	// Slow consumers are disconnected rather than blocked on
	for _, c := range slow {
		c.close()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return len(h.clients)
}

func (c *Client) close() {
	c.once.Do(func() {
		c.hub.mux.Lock()
		delete(c.hub.clients, c)
		c.hub.mux.Unlock()
		close(c.send)
	})
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.close()
			return
		}
	}
}

func (c *Client) readPump() {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
