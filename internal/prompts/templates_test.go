package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacy-awakened/server/internal/game"
)

func newEngine(t *testing.T) *TemplateEngine {
	t.Helper()
	e := NewTemplateEngine()
	require.NoError(t, e.InitializeDefaultTemplates())
	return e
}

func TestRenderNarrativeTurn(t *testing.T) {
	e := newEngine(t)

	state := game.NewState()
	state.Inventory = []string{"comm badge"}
	state.VisitedLocations = []string{"start", "scene_rooftop"}

	ctx := BuildTurnContext(state, "climb the tower", "the seed prompt")
	rendered, err := e.Render("narrative_turn", ctx)
	require.NoError(t, err)

	assert.Contains(t, rendered, "Current location: start")
	assert.Contains(t, rendered, "Player has visited: start, scene_rooftop")
	assert.Contains(t, rendered, "Player has in inventory: comm badge")
	assert.Contains(t, rendered, "Player stats: Health 100, Courage 50, Wisdom 50")
	assert.Contains(t, rendered, `Player just chose: "climb the tower"`)
	assert.Contains(t, rendered, "Additional context: the seed prompt")
	assert.NotContains(t, rendered, "{{")
}

func TestBuildTurnContextEmptyState(t *testing.T) {
	ctx := BuildTurnContext(game.NewState(), "act", "seed")

	assert.Equal(t, "nowhere yet", ctx.Visited)
	assert.Equal(t, "nothing", ctx.Inventory)
}

func TestRenderKeepsUnknownPlaceholders(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.RegisterTemplate(&Template{
		Name:    "custom",
		Content: "known: {{player_action}}, unknown: {{mystery}}",
	}))

	rendered, err := e.Render("custom", &TurnContext{PlayerAction: "run"})
	require.NoError(t, err)
	assert.Equal(t, "known: run, unknown: {{mystery}}", rendered)
}

func TestRenderCustomVariables(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.RegisterTemplate(&Template{
		Name:    "custom",
		Content: "hello {{who}}",
	}))

	rendered, err := e.Render("custom", &TurnContext{Custom: map[string]string{"who": "hero"}})
	require.NoError(t, err)
	assert.Equal(t, "hello hero", rendered)
}

func TestRenderUnknownTemplate(t *testing.T) {
	e := newEngine(t)
	_, err := e.Render("nope", &TurnContext{})
	assert.Error(t, err)
}

func TestDefaultTemplatesRegistered(t *testing.T) {
	e := newEngine(t)
	for _, name := range []string{"narrative_turn", "scene_description", "context_summary", "ending_check"} {
		_, err := e.GetTemplate(name)
		assert.NoError(t, err, "template %s", name)
	}
}
