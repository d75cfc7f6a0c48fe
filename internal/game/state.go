package game

import "encoding/json"

// Scene identifiers with fixed meaning to the turn logic.
const (
	SceneStart        = "start"
	CustomActionScene = "custom_action"
)

// originContext seeds every new session's rolling story summary.
const originContext = "You are the survivor of a catastrophic quantum breach. " +
	"Now altered with unstable powers, you’ve been taken into SHIELD custody. " +
	"Nick Fury believes you’re the only one who can stop a multiverse collapse — " +
	"the fate of the Marvel Universe is in your hands."

// Option is a single player-facing choice. NextScene equal to
// CustomActionScene marks the free-text slot.
type Option struct {
	Text      string `json:"text"`
	NextScene string `json:"next_scene"`
}

// GameState is the serializable per-session record. It is mutated in
// place by the narrative engine on every turn; StoryContext only ever
// grows except on an explicit Reset.
type GameState struct {
	CurrentScene     string                 `json:"current_scene"`
	Inventory        []string               `json:"inventory"`
	PlayerStats      map[string]int         `json:"player_stats"`
	VisitedLocations []string               `json:"visited_locations"`
	StoryFlags       map[string]interface{} `json:"story_flags"`
	StoryContext     string                 `json:"story_context"`
}

// NewState returns a game state with default values for a fresh session.
func NewState() *GameState {
	return &GameState{
		CurrentScene:     SceneStart,
		Inventory:        []string{},
		PlayerStats:      map[string]int{"health": 100, "courage": 50, "wisdom": 50},
		VisitedLocations: []string{},
		StoryFlags:       map[string]interface{}{},
		StoryContext:     originContext,
	}
}

// Reset clears the transient fields after an ending. The accumulated
// story context and flags survive into the next run.
func (s *GameState) Reset() {
	s.CurrentScene = SceneStart
	s.Inventory = []string{}
	s.VisitedLocations = []string{}
}

// StateFromSnapshot rehydrates a state from a client-supplied snapshot.
// Fields missing from the snapshot keep their defaults.
func StateFromSnapshot(raw []byte) (*GameState, error) {
	state := NewState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, err
	}
	if state.Inventory == nil {
		state.Inventory = []string{}
	}
	if state.PlayerStats == nil {
		state.PlayerStats = map[string]int{"health": 100, "courage": 50, "wisdom": 50}
	}
	if state.VisitedLocations == nil {
		state.VisitedLocations = []string{}
	}
	if state.StoryFlags == nil {
		state.StoryFlags = map[string]interface{}{}
	}
	return state, nil
}
