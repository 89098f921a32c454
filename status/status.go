// Package status broadcasts export progress to connected websocket clients.
package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Kind int

const (
	KindInfo Kind = iota
	KindError
	KindProgress
	KindDiagnostic
)

const (
	pingPeriod   = 30 * time.Second
	writeTimeout = 40 * time.Second
)

type Message struct {
	Message  string
	Time     time.Time
	Type     Kind
	Progress float32
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump only drains control frames; clients never send data.
func (c *client) readPump() {
	defer c.hub.unregister(c)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

// Hub fans messages out to its clients. A client that falls behind is
// disconnected rather than blocking the export.
type Hub struct {
	broadcast chan *Message

	mu      sync.Mutex
	clients map[*client]bool
	last    []byte
}

func NewHub() *Hub {
	h := &Hub{
		broadcast: make(chan *Message, 16),
		clients:   make(map[*client]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for msg := range h.broadcast {
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("[status] marshal error: %v", err)
			continue
		}
		h.mu.Lock()
		h.last = data
		for c := range h.clients {
			select {
			case c.send <- data:
			default:
				delete(h.clients, c)
				close(c.send)
			}
		}
		h.mu.Unlock()
	}
}

// Register starts serving conn and replays the last message to it.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{hub: h, conn: conn, send: make(chan []byte, 32)}
	h.mu.Lock()
	h.clients[c] = true
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Publish(kind Kind, progress float32, msg string) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	h.broadcast <- &Message{
		Message:  msg,
		Time:     time.Now(),
		Type:     kind,
		Progress: progress}
}

// Default is the hub the web service streams from.
var Default = NewHub()

func Info(format string, a ...interface{}) {
	Default.Publish(KindInfo, 0, fmt.Sprintf(format, a...))
}

func Error(format string, a ...interface{}) {
	Default.Publish(KindError, 0, fmt.Sprintf(format, a...))
}

func Progress(progress float32, format string, a ...interface{}) {
	Default.Publish(KindProgress, progress, fmt.Sprintf(format, a...))
}

func Diagnostic(format string, a ...interface{}) {
	Default.Publish(KindDiagnostic, 0, fmt.Sprintf(format, a...))
}
