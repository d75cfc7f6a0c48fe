package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"legacy-awakened/server/internal/config"
	"legacy-awakened/server/internal/engine"
	"legacy-awakened/server/internal/game"
	"legacy-awakened/server/internal/interfaces"
	"legacy-awakened/server/internal/session"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Handlers owns the request surface of the game server.
type Handlers struct {
	config    *config.Config
	engine    *engine.NarrativeEngine
	sessions  interfaces.SessionStore
	snapshots interfaces.SnapshotStore // optional, may be nil
	hub       *TurnHub                 // optional, may be nil
}

func NewHandlers(cfg *config.Config, narrative *engine.NarrativeEngine, sessions interfaces.SessionStore, snapshots interfaces.SnapshotStore, hub *TurnHub) *Handlers {
	return &Handlers{
		config:    cfg,
		engine:    narrative,
		sessions:  sessions,
		snapshots: snapshots,
		hub:       hub,
	}
}

// NewRouter wires the game endpoints.
func NewRouter(cfg *config.Config, narrative *engine.NarrativeEngine, sessions interfaces.SessionStore, snapshots interfaces.SnapshotStore, hub *TurnHub) *chi.Mux {
	r := chi.NewRouter()

	// Request logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("REQUEST: %s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})

	r.Use(corsMiddleware)

	h := NewHandlers(cfg, narrative, sessions, snapshots, hub)

	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Get("/events", h.Events)

	r.Post("/start_game", h.StartGame)
	r.Post("/make_choice", h.MakeChoice)
	r.Post("/custom_action", h.CustomAction)
	r.Post("/save_game", h.SaveGame)
	r.Post("/load_game", h.LoadGame)

	return r
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// --- request/response bodies ---

type makeChoiceRequest struct {
	SessionID      string        `json:"session_id"`
	ChoiceIndex    int           `json:"choice_index"`
	CustomAction   string        `json:"custom_action"`
	CurrentOptions []game.Option `json:"current_options"`
}

type customActionRequest struct {
	SessionID    string `json:"session_id"`
	CustomAction string `json:"custom_action"`
}

type saveGameRequest struct {
	SessionID string `json:"session_id"`
}

type loadGameRequest struct {
	SessionID string          `json:"session_id"`
	GameState json.RawMessage `json:"game_state"`
}

type startGameResponse struct {
	SessionID        string          `json:"session_id"`
	Narrative        string          `json:"narrative"`
	SceneDescription string          `json:"scene_description"`
	Options          []game.Option   `json:"options"`
	GameState        *game.GameState `json:"game_state"`
}

type turnResponse struct {
	Narrative        string          `json:"narrative"`
	SceneDescription string          `json:"scene_description"`
	Options          []game.Option   `json:"options"`
	GameState        *game.GameState `json:"game_state"`
	IsEnding         bool            `json:"is_ending"`
}

type saveGameResponse struct {
	SessionID string          `json:"session_id"`
	GameState *game.GameState `json:"game_state"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- endpoints ---

// StartGame initializes a new game session and generates the opening
// turn.
func (h *Handlers) StartGame(w http.ResponseWriter, r *http.Request) {
	sessionID := session.NewID()
	state := game.NewState()
	h.sessions.Put(sessionID, &interfaces.Session{State: state})

	seed := game.Waypoints[game.WaypointStart].SeedPrompt
	if seed == "" {
		seed = "Create an action-packed opening for a superhero origin."
	}

	result, err := h.engine.Advance(r.Context(), state, "begin your hero's journey", seed)
	if err != nil {
		// The client went away before the opening finished; the
		// half-initialized session is useless.
		h.sessions.Remove(sessionID)
		writeError(w, http.StatusInternalServerError, "Turn aborted")
		return
	}

	h.broadcastTurn(sessionID, result)
	writeJSON(w, http.StatusOK, startGameResponse{
		SessionID:        sessionID,
		Narrative:        result.Narrative,
		SceneDescription: result.SceneDescription,
		Options:          result.Options,
		GameState:        state,
	})
}

// MakeChoice processes a player choice and advances the story.
func (h *Handlers) MakeChoice(w http.ResponseWriter, r *http.Request) {
	var req makeChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if req.SessionID == "" || !ok {
		writeError(w, http.StatusBadRequest, "Invalid session")
		return
	}
	if len(req.CurrentOptions) == 0 {
		writeError(w, http.StatusBadRequest, "No options provided")
		return
	}
	if req.ChoiceIndex < 0 || req.ChoiceIndex >= len(req.CurrentOptions) {
		writeError(w, http.StatusBadRequest, "Invalid choice index")
		return
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	state := sess.State

	chosen := req.CurrentOptions[req.ChoiceIndex]
	chosenText := chosen.Text
	if chosenText == "" {
		chosenText = "Unknown choice"
	}
	nextScene := chosen.NextScene

	// The "Other" option swaps in the player's free text.
	if nextScene == game.CustomActionScene && req.CustomAction != "" {
		chosenText = req.CustomAction
		nextScene = fmt.Sprintf("scene_custom_%d", len(state.VisitedLocations))
	}

	prevScene := state.CurrentScene
	prevVisited := len(state.VisitedLocations)
	state.VisitedLocations = append(state.VisitedLocations, state.CurrentScene)
	state.CurrentScene = nextScene

	seed := fmt.Sprintf("The player chose to %s. Continue the adventure based on this choice, creating a detailed and atmospheric scene.", chosenText)

	result, err := h.engine.Advance(r.Context(), state, chosenText, seed)
	if err != nil {
		// Abandoned turn: undo the scene bookkeeping so the session is
		// exactly as the last observed turn left it.
		state.CurrentScene = prevScene
		state.VisitedLocations = state.VisitedLocations[:prevVisited]
		writeError(w, http.StatusInternalServerError, "Turn aborted")
		return
	}

	if result.IsEnding {
		state.Reset()
	}

	h.broadcastTurn(req.SessionID, result)
	writeJSON(w, http.StatusOK, turnResponse{
		Narrative:        result.Narrative,
		SceneDescription: result.SceneDescription,
		Options:          result.Options,
		GameState:        state,
		IsEnding:         result.IsEnding,
	})
}

// CustomAction processes a free-text player action.
func (h *Handlers) CustomAction(w http.ResponseWriter, r *http.Request) {
	var req customActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if req.SessionID == "" || !ok || strings.TrimSpace(req.CustomAction) == "" {
		writeError(w, http.StatusBadRequest, "Invalid session or missing custom action")
		return
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	state := sess.State

	prevScene := state.CurrentScene
	prevVisited := len(state.VisitedLocations)
	state.VisitedLocations = append(state.VisitedLocations, state.CurrentScene)
	state.CurrentScene = fmt.Sprintf("scene_custom_%d", len(state.VisitedLocations))

	seed := fmt.Sprintf("The player chose a custom action: '%s'. Create an engaging continuation of the story based on this unexpected action.", req.CustomAction)

	result, err := h.engine.Advance(r.Context(), state, req.CustomAction, seed)
	if err != nil {
		state.CurrentScene = prevScene
		state.VisitedLocations = state.VisitedLocations[:prevVisited]
		writeError(w, http.StatusInternalServerError, "Turn aborted")
		return
	}

	if result.IsEnding {
		state.Reset()
	}

	h.broadcastTurn(req.SessionID, result)
	writeJSON(w, http.StatusOK, turnResponse{
		Narrative:        result.Narrative,
		SceneDescription: result.SceneDescription,
		Options:          result.Options,
		GameState:        state,
		IsEnding:         result.IsEnding,
	})
}

// SaveGame returns the serialized session state and, when a snapshot
// store is configured, persists it best-effort.
func (h *Handlers) SaveGame(w http.ResponseWriter, r *http.Request) {
	var req saveGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if req.SessionID == "" || !ok {
		writeError(w, http.StatusBadRequest, "Invalid session")
		return
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	if h.snapshots != nil {
		data, err := json.Marshal(sess.State)
		if err == nil {
			err = h.snapshots.Save(r.Context(), req.SessionID, data)
		}
		if err != nil {
			log.Printf("[Handlers] snapshot save failed for %s: %v", req.SessionID, err)
		}
	}

	writeJSON(w, http.StatusOK, saveGameResponse{
		SessionID: req.SessionID,
		GameState: sess.State,
	})
}

// LoadGame rehydrates a session from a client-supplied snapshot (or the
// snapshot store) and immediately generates a fresh turn.
func (h *Handlers) LoadGame(w http.ResponseWriter, r *http.Request) {
	var req loadGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	raw := []byte(req.GameState)
	if len(raw) == 0 && h.snapshots != nil && req.SessionID != "" {
		stored, err := h.snapshots.Load(r.Context(), req.SessionID)
		if err == nil {
			raw = stored
		} else if err != interfaces.ErrSnapshotNotFound {
			log.Printf("[Handlers] snapshot load failed for %s: %v", req.SessionID, err)
		}
	}

	if req.SessionID == "" || len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid session or game state")
		return
	}

	state, err := game.StateFromSnapshot(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session or game state")
		return
	}

	sess := &interfaces.Session{State: state}
	h.sessions.Put(req.SessionID, sess)

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	seed := "The player has returned to the game. Remind them of their current situation and provide options."
	result, err := h.engine.Advance(r.Context(), state, "continue the adventure", seed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Turn aborted")
		return
	}

	h.broadcastTurn(req.SessionID, result)
	writeJSON(w, http.StatusOK, startGameResponse{
		SessionID:        req.SessionID,
		Narrative:        result.Narrative,
		SceneDescription: result.SceneDescription,
		Options:          result.Options,
		GameState:        state,
	})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "legacy-awakened",
	})
}

// Stats reports engine counters and spectator count.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	turns, degraded, endings := h.engine.Stats()
	spectators := 0
	if h.hub != nil {
		spectators = h.hub.GetClientCount()
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"turns":      turns,
		"degraded":   degraded,
		"endings":    endings,
		"spectators": int64(spectators),
	})
}

// Events upgrades the connection to a WebSocket spectator stream of
// turn events.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "Hub not initialized")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &Client{
		ID:   generateClientID(),
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  h.hub,
	}

	h.hub.register <- client

	welcome := TurnEvent{
		Type: "connected",
		Time: time.Now().Unix(),
	}
	if data, err := json.Marshal(welcome); err == nil {
		select {
		case client.Send <- data:
		default:
		}
	}

	go client.readPump()
}

// broadcastTurn publishes a finished turn to spectators.
func (h *Handlers) broadcastTurn(sessionID string, result *engine.TurnResult) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(TurnEvent{
		Type:             "turn",
		SessionID:        sessionID,
		Narrative:        result.Narrative,
		SceneDescription: result.SceneDescription,
		IsEnding:         result.IsEnding,
		Time:             time.Now().Unix(),
	})
}

// generateClientID generates a unique spectator client ID
func generateClientID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(b)
}
