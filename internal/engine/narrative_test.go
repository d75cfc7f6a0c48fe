package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacy-awakened/server/internal/game"
	"legacy-awakened/server/internal/interfaces"
)

const testNarrative = "The chase begins across the rooftops.\n\n" +
	"1. Leap across the rooftop\n" +
	"2. Dive into the alley\n" +
	"3. Call for backup\n" +
	"4. Stand your ground"

// scriptedOracle pops canned completions in order and records every
// prompt and temperature it saw.
type scriptedOracle struct {
	mu      sync.Mutex
	script  []interfaces.Completion
	prompts []string
	temps   []float32
}

func (o *scriptedOracle) Complete(_ context.Context, prompt string, temperature float32) interfaces.Completion {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.prompts = append(o.prompts, prompt)
	o.temps = append(o.temps, temperature)

	if len(o.script) == 0 {
		return interfaces.Completion{Text: "continue"}
	}
	c := o.script[0]
	o.script = o.script[1:]
	return c
}

func text(s string) interfaces.Completion {
	return interfaces.Completion{Text: s}
}

func TestAdvanceRegularTurn(t *testing.T) {
	oracle := &scriptedOracle{script: []interfaces.Completion{
		text(testNarrative),
		text("A ruined skyline at dusk."),
		text("The hero gave chase."),
		text("continue"),
	}}
	e := NewNarrativeEngine(oracle)
	state := game.NewState()
	before := state.StoryContext

	result, err := e.Advance(context.Background(), state, "give chase", "seed")
	require.NoError(t, err)

	assert.Equal(t, testNarrative, result.Narrative)
	assert.Equal(t, "A ruined skyline at dusk.", result.SceneDescription)
	assert.False(t, result.IsEnding)
	assert.False(t, result.Degraded)

	require.Len(t, result.Options, 5)
	assert.Equal(t, game.CustomActionScene, result.Options[4].NextScene)
	assert.Equal(t, "Leap across the rooftop", result.Options[0].Text)

	assert.Equal(t, before+" The hero gave chase.", state.StoryContext)
	assert.Equal(t, []float32{0.7, 0.6, 0.5, 0.4}, oracle.temps)
}

func TestAdvanceVictoryBeatsDefeat(t *testing.T) {
	oracle := &scriptedOracle{script: []interfaces.Completion{
		text("The breach closes for good."),
		text("Sunrise over a saved city."),
		text("The hero sealed the breach."),
		text("Both VICTORY and defeat were on the table."),
		text("The Avengers salute the newest legend."),
	}}
	e := NewNarrativeEngine(oracle)
	state := game.NewState()

	result, err := e.Advance(context.Background(), state, "seal the breach", "seed")
	require.NoError(t, err)

	assert.True(t, result.IsEnding)
	assert.Equal(t, "The breach closes for good.\n\nThe Avengers salute the newest legend.", result.Narrative)
	require.Len(t, result.Options, 1)
	assert.Equal(t, game.Option{Text: "Start a new adventure", NextScene: game.SceneStart}, result.Options[0])

	// Victory wins the tie, so the closing passage was seeded from the
	// victorious waypoint.
	require.Len(t, oracle.prompts, 5)
	assert.Equal(t, game.Waypoints[game.WaypointVictoriousEnding].SeedPrompt, oracle.prompts[4])
}

func TestAdvanceDefeatEnding(t *testing.T) {
	oracle := &scriptedOracle{script: []interfaces.Completion{
		text("Darkness falls."),
		text("An empty battlefield."),
		text("The hero fell."),
		text("defeat"),
		text("The multiverse mourns."),
	}}
	e := NewNarrativeEngine(oracle)
	state := game.NewState()

	result, err := e.Advance(context.Background(), state, "charge the villain", "seed")
	require.NoError(t, err)

	assert.True(t, result.IsEnding)
	require.Len(t, oracle.prompts, 5)
	assert.Equal(t, game.Waypoints[game.WaypointTragicEnding].SeedPrompt, oracle.prompts[4])
}

// degradedOracle mimics the real client after the external service has
// gone away: every call is the placeholder.
type degradedOracle struct{}

func (degradedOracle) Complete(context.Context, string, float32) interfaces.Completion {
	return interfaces.Completion{Text: PlaceholderCompletion, Degraded: true}
}

func TestAdvanceDegradedOracle(t *testing.T) {
	e := NewNarrativeEngine(degradedOracle{})
	state := game.NewState()
	before := state.StoryContext

	result, err := e.Advance(context.Background(), state, "act", "seed")
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Equal(t, PlaceholderCompletion, result.Narrative)
	assert.False(t, result.IsEnding)

	// Placeholder text has no numbered lines, so the parser falls back.
	assert.Equal(t, fallbackOptions(), result.Options)

	// The placeholder pollutes the rolling context; availability over
	// correctness.
	assert.Equal(t, before+" "+PlaceholderCompletion, state.StoryContext)

	_, degraded, _ := e.Stats()
	assert.Equal(t, int64(1), degraded)
}

// cancellingOracle cancels the request context after a given number of
// calls, simulating a client that disconnects mid-chain.
type cancellingOracle struct {
	calls  int
	after  int
	cancel context.CancelFunc
}

func (o *cancellingOracle) Complete(context.Context, string, float32) interfaces.Completion {
	o.calls++
	if o.calls == o.after {
		o.cancel()
	}
	return interfaces.Completion{Text: "filler text"}
}

func TestAdvanceCancelledTurnLeavesStateUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	oracle := &cancellingOracle{after: 3, cancel: cancel}
	e := NewNarrativeEngine(oracle)
	state := game.NewState()
	before := state.StoryContext

	result, err := e.Advance(ctx, state, "act", "seed")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Equal(t, before, state.StoryContext)
}

func TestClassifyEnding(t *testing.T) {
	tests := []struct {
		verdict string
		want    string
	}{
		{"continue", ""},
		{"victory", game.WaypointVictoriousEnding},
		{"VICTORY", game.WaypointVictoriousEnding},
		{"  victory \n", game.WaypointVictoriousEnding},
		{"defeat", game.WaypointTragicEnding},
		{"a crushing Defeat", game.WaypointTragicEnding},
		{"victory snatched from defeat", game.WaypointVictoriousEnding},
		{"the story goes on", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyEnding(tt.verdict), "verdict %q", tt.verdict)
	}
}
