package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultBacklogDepth = 6

func main() {
	setupLogging()
	if path := os.Getenv("ENGINE_CONFIG"); path != "" {
		if err := LoadConfigFile(path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("config file rejected")
		}
	}
	cfg := GetConfig()

	engine := NewEngineController(cfg)
	if cfg.TTPersistEnabled && cfg.TTPersistPath != "" {
		if _, err := LoadTable(engine.Searcher().Table(), cfg.TTPersistPath); err != nil {
			log.Warn().Err(err).Msg("table snapshot load failed")
		}
	}

	var persistOnce sync.Once
	persistOnShutdown := func(reason string) {
		persistOnce.Do(func() {
			cfg := GetConfig()
			if !cfg.TTPersistEnabled || cfg.TTPersistPath == "" {
				return
			}
			log.Info().Str("reason", reason).Msg("persisting table")
			if err := SaveTable(engine.Searcher().Table(), cfg.TTPersistPath); err != nil {
				log.Error().Err(err).Msg("table snapshot save failed")
			}
		})
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error().Interface("panic", recovered).Msg("panic recovered in main")
			persistOnShutdown("panic")
		}
	}()
	defer persistOnShutdown("exit")

	hub := NewHub()
	statsHub := NewStatsHub(engine)
	backlog := NewAnalysisBacklog(engine, hub)
	engine.Searcher().OnIteration = hub.PublishIteration

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx.Done())
	go statsHub.Run(ctx.Done())
	go backlog.Run(ctx.Done())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Status())
	})

	r.Post("/api/position", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			FEN   string   `json:"fen"`
			Moves []string `json:"moves"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		fen := payload.FEN
		if fen == "" || fen == "startpos" {
			fen = startingFEN
		}
		if err := engine.SetPositionFEN(fen); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		for _, raw := range payload.Moves {
			if err := engine.ApplyMove(raw); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
		}
		status := engine.Status()
		writeJSON(w, http.StatusOK, status)
		hub.broadcastStatus <- status
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Move string `json:"move"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if err := engine.ApplyMove(payload.Move); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		status := engine.Status()
		writeJSON(w, http.StatusOK, status)
		hub.broadcastStatus <- status
	})

	r.Post("/api/search", func(w http.ResponseWriter, r *http.Request) {
		var params SearchParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		result, err := engine.Search(params)
		if err != nil {
			status := http.StatusConflict
			if errors.Is(err, errNoPosition) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
		hub.PublishResult(result)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		engine.RequestStop()
		backlog.RequestStop()
		writeJSON(w, http.StatusOK, map[string]bool{"stopping": true})
	})

	r.Post("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		backlog.RequestStop()
		engine.Reset()
		status := engine.Status()
		writeJSON(w, http.StatusOK, status)
		hub.broadcastStatus <- status
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})
	r.Post("/api/config", func(w http.ResponseWriter, r *http.Request) {
		var payload Config
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if err := configStore.Update(payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		hub.broadcastSettings <- GetConfig()
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Get("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Searcher().Stats().Snapshot())
	})

	r.Get("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Searcher().Table().Stats())
	})
	r.Delete("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		engine.Searcher().Table().Clear()
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
	})

	r.Get("/api/analysis/queue", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"queue": backlog.Snapshot(),
			"total": backlog.Len(),
		})
	})
	r.Post("/api/analysis/queue", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			FENs  []string `json:"fens"`
			Depth int      `json:"depth"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		depth := payload.Depth
		if depth <= 0 {
			depth = defaultBacklogDepth
		}
		if depth > 20 {
			depth = 20
		}
		accepted := 0
		for _, fen := range payload.FENs {
			if backlog.Enqueue(fen, depth) {
				accepted++
			}
		}
		writeJSON(w, http.StatusOK, map[string]int{"accepted": accepted, "total": backlog.Len()})
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, engine, w, r)
	})
	r.Get("/ws/stats", func(w http.ResponseWriter, r *http.Request) {
		serveStatsWS(statsHub, w, r)
	})

	addr := os.Getenv("ENGINE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info().Str("addr", addr).Msg("engine listening")
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}

	cancel()
	engine.RequestStop()
	backlog.RequestStop()
	persistOnShutdown("shutdown")
	if runErr != nil {
		log.Error().Err(runErr).Msg("exiting after server error")
	}
}

func serveWS(hub *Hub, engine *EngineController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(engine.Status())})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(engine.Status())})
		}
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
