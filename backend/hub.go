package main

import (
	"encoding/json"
	"sync"
)

// Hub fans engine events out to connected websocket clients. Slow clients
// drop messages rather than stall the broadcast loop.
type Hub struct {
	mu                 sync.Mutex
	clients            map[*Client]struct{}
	broadcastStatus    chan EngineStatus
	broadcastIteration chan IterationInfo
	broadcastResult    chan SearchResult
	broadcastSettings  chan Config
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:            make(map[*Client]struct{}),
		broadcastStatus:    make(chan EngineStatus, 32),
		broadcastIteration: make(chan IterationInfo, 64),
		broadcastResult:    make(chan SearchResult, 16),
		broadcastSettings:  make(chan Config, 8),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcastStatus:
			h.broadcast("status", payload)
		case payload := <-h.broadcastIteration:
			h.broadcast("iteration", payload)
		case payload := <-h.broadcastResult:
			h.broadcast("result", payload)
		case payload := <-h.broadcastSettings:
			h.broadcast("settings", payload)
		}
	}
}

func (h *Hub) broadcast(kind string, payload any) {
	h.mu.Lock()
	for client := range h.clients {
		client.sendJSON(wsMessage{Type: kind, Payload: mustMarshal(payload)})
	}
	h.mu.Unlock()
}

func (h *Hub) PublishIteration(info IterationInfo) {
	select {
	case h.broadcastIteration <- info:
	default:
	}
}

func (h *Hub) PublishResult(result SearchResult) {
	select {
	case h.broadcastResult <- result:
	default:
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
