package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// The trainer drives the engine backend over its HTTP API to play
// engine-vs-engine games between a champion search configuration and
// mutated challengers. The side to move always searches under its own
// config, so a game compares two parameter sets on equal hardware.

type trainer struct {
	client       *http.Client
	baseURL      string
	logger       *log.Logger
	rng          *rand.Rand
	gamesPerPair int
	moveTimeMs   int
	maxPlies     int
	mutation     float64
	generations  int
	population   int
}

type searchConfig map[string]any

type contender struct {
	id     string
	config searchConfig
	elo    float64
}

type statusResponse struct {
	FEN        string `json:"fen"`
	SideToMove string `json:"side_to_move"`
	InCheck    bool   `json:"in_check"`
	LegalMoves int    `json:"legal_moves"`
}

type searchResponse struct {
	HasMove bool   `json:"has_move"`
	Move    string `json:"move"`
	Score   int    `json:"score"`
	Depth   int    `json:"depth"`
}

func main() {
	baseURL := flag.String("backend", "http://localhost:8080", "engine backend base URL")
	gamesPerPair := flag.Int("games", 2, "games per pairing (colors are swapped)")
	moveTimeMs := flag.Int("movetime", 300, "time per move in milliseconds")
	maxPlies := flag.Int("max-plies", 200, "adjudicate a draw after this many plies")
	mutation := flag.Float64("mutation", 0.25, "relative mutation strength")
	generations := flag.Int("generations", 10, "tournament generations to run")
	population := flag.Int("population", 4, "challengers per generation")
	seed := flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	flag.Parse()

	t := &trainer{
		client:       &http.Client{Timeout: 2 * time.Minute},
		baseURL:      *baseURL,
		logger:       log.New(os.Stdout, "[trainer] ", log.LstdFlags),
		rng:          rand.New(rand.NewSource(*seed)),
		gamesPerPair: *gamesPerPair,
		moveTimeMs:   *moveTimeMs,
		maxPlies:     *maxPlies,
		mutation:     *mutation,
		generations:  *generations,
		population:   *population,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := t.waitBackendReady(ctx); err != nil {
		t.logger.Fatalf("backend not reachable: %v", err)
	}
	if err := t.run(ctx); err != nil && ctx.Err() == nil {
		t.logger.Fatalf("training aborted: %v", err)
	}
}

func (t *trainer) run(ctx context.Context) error {
	champion, err := t.fetchConfig()
	if err != nil {
		return fmt.Errorf("fetch base config: %w", err)
	}
	defer func() {
		if err := t.pushConfig(champion); err != nil {
			t.logger.Printf("failed to restore champion config: %v", err)
		}
	}()

	for gen := 1; gen <= t.generations; gen++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.logger.Printf("generation %d: champion vs %d challengers", gen, t.population)
		challengers := make([]contender, 0, t.population)
		for i := 0; i < t.population; i++ {
			challengers = append(challengers, contender{
				id:     fmt.Sprintf("g%d-c%d", gen, i),
				config: t.mutateConfig(champion),
				elo:    1500,
			})
		}
		champ := contender{id: fmt.Sprintf("g%d-champion", gen), config: champion, elo: 1500}

		for i := range challengers {
			score, err := t.playPair(ctx, &champ, &challengers[i])
			if err != nil {
				return err
			}
			t.logger.Printf("%s vs %s: challenger scored %.1f/%d (elo %.0f vs %.0f)",
				champ.id, challengers[i].id, score, t.gamesPerPair, champ.elo, challengers[i].elo)
		}

		best := &champ
		for i := range challengers {
			if challengers[i].elo > best.elo {
				best = &challengers[i]
			}
		}
		if best != &champ {
			t.logger.Printf("generation %d: challenger %s promoted (elo %.0f)", gen, best.id, best.elo)
			champion = best.config
		} else {
			t.logger.Printf("generation %d: champion holds", gen)
		}
	}
	t.logger.Printf("final champion config: %s", mustPretty(champion))
	return nil
}

// playPair plays gamesPerPair games between a and b, swapping colors each
// game. Returns b's total score. Elo is updated per game.
func (t *trainer) playPair(ctx context.Context, a, b *contender) (float64, error) {
	var bScore float64
	for game := 0; game < t.gamesPerPair; game++ {
		white, black := a, b
		if game%2 == 1 {
			white, black = b, a
		}
		result, err := t.playGame(ctx, white, black)
		if err != nil {
			return bScore, err
		}
		// result is white's score: 1, 0.5 or 0.
		var forB float64
		if white == b {
			forB = result
		} else {
			forB = 1 - result
		}
		bScore += forB
		updateElo(a, b, 1-forB, 32)
	}
	return bScore, nil
}

// playGame plays one game from the starting position and returns white's
// score. A side with no legal moves has lost when in check, otherwise the
// game is a stalemate draw; long games are adjudicated as draws.
func (t *trainer) playGame(ctx context.Context, white, black *contender) (float64, error) {
	if err := t.postJSON("/api/position", map[string]string{"fen": "startpos"}, nil); err != nil {
		return 0, fmt.Errorf("reset position: %w", err)
	}
	for ply := 0; ply < t.maxPlies; ply++ {
		if ctx.Err() != nil {
			return 0.5, ctx.Err()
		}
		status, err := t.fetchStatus()
		if err != nil {
			return 0, err
		}
		if status.LegalMoves == 0 {
			if !status.InCheck {
				return 0.5, nil
			}
			if status.SideToMove == "white" {
				return 0, nil
			}
			return 1, nil
		}
		mover := white
		if status.SideToMove == "black" {
			mover = black
		}
		if err := t.pushConfig(mover.config); err != nil {
			return 0, fmt.Errorf("push config for %s: %w", mover.id, err)
		}
		var result searchResponse
		if err := t.postJSON("/api/search", map[string]int{"move_time_ms": t.moveTimeMs}, &result); err != nil {
			return 0, fmt.Errorf("search: %w", err)
		}
		if !result.HasMove {
			return 0.5, nil
		}
		if err := t.postJSON("/api/move", map[string]string{"move": result.Move}, nil); err != nil {
			return 0, fmt.Errorf("apply move %s: %w", result.Move, err)
		}
	}
	return 0.5, nil
}

// tunableKeys are the config fields the mutation touches. Everything else
// rides along unchanged so challenger configs stay valid.
var tunableKeys = []string{
	"null_move_base_reduction",
	"null_verification_margin",
	"mate_threat_margin",
	"lmr_move_threshold",
	"lmr_research_margin_quiet",
	"lmr_research_margin_tactical",
	"iid_base_reduction",
	"aspiration_window",
	"qs_delta_margin",
	"qs_futility_margin",
}

func (t *trainer) mutateConfig(base searchConfig) searchConfig {
	mutated := make(searchConfig, len(base))
	for k, v := range base {
		mutated[k] = v
	}
	// Mutate two or three tunables per challenger; single-knob changes
	// drown in game noise at short time controls.
	count := 2 + t.rng.Intn(2)
	for i := 0; i < count; i++ {
		key := tunableKeys[t.rng.Intn(len(tunableKeys))]
		raw, ok := mutated[key].(float64)
		if !ok || raw == 0 {
			continue
		}
		factor := 1 + (t.rng.Float64()*2-1)*t.mutation
		next := math.Round(raw * factor)
		if next < 1 {
			next = 1
		}
		mutated[key] = next
	}
	return mutated
}

func updateElo(a, b *contender, resultForA float64, k float64) {
	expectedA := 1 / (1 + math.Pow(10, (b.elo-a.elo)/400))
	a.elo += k * (resultForA - expectedA)
	b.elo += k * ((1 - resultForA) - (1 - expectedA))
}

func (t *trainer) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := t.getJSON("/api/ping", nil); err == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("no answer from %s", t.baseURL)
}

func (t *trainer) fetchConfig() (searchConfig, error) {
	var cfg searchConfig
	if err := t.getJSON("/api/config", &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (t *trainer) pushConfig(cfg searchConfig) error {
	return t.postJSON("/api/config", cfg, nil)
}

func (t *trainer) fetchStatus() (statusResponse, error) {
	var status statusResponse
	err := t.getJSON("/api/status", &status)
	return status, err
}

func (t *trainer) getJSON(path string, out any) error {
	resp, err := t.client.Get(t.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *trainer) postJSON(path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := t.client.Post(t.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: %s: %s", path, resp.Status, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func mustPretty(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
