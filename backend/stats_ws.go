package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const statsStreamInterval = 250 * time.Millisecond

type statsPayload struct {
	Searching bool          `json:"searching"`
	Stats     StatsSnapshot `json:"stats"`
	TT        TTStats       `json:"tt"`
	UpdatedAt int64         `json:"updated_at_ms"`
}

type StatsClient struct {
	hub  *StatsHub
	conn *websocket.Conn
	send chan []byte
}

// StatsHub streams live counter snapshots while a search runs. The ticker
// only samples when someone is listening.
type StatsHub struct {
	mu      sync.Mutex
	clients map[*StatsClient]struct{}
	engine  *EngineController
}

func NewStatsHub(engine *EngineController) *StatsHub {
	return &StatsHub{
		clients: make(map[*StatsClient]struct{}),
		engine:  engine,
	}
}

func (h *StatsHub) Run(done <-chan struct{}) {
	ticker := time.NewTicker(statsStreamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !h.HasClients() {
				continue
			}
			payload := statsPayload{
				Searching: h.engine.searching.Load(),
				Stats:     h.engine.Searcher().Stats().Snapshot(),
				TT:        h.engine.Searcher().Table().Stats(),
				UpdatedAt: time.Now().UnixMilli(),
			}
			h.mu.Lock()
			for client := range h.clients {
				client.sendJSON(wsMessage{Type: "stats", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *StatsHub) Register(c *StatsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *StatsHub) Unregister(c *StatsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *StatsHub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *StatsClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func serveStatsWS(hub *StatsHub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &StatsClient{hub: hub, conn: conn, send: make(chan []byte, 32)}
	hub.Register(client)

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}
