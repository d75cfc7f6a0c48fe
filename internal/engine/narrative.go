package engine

import (
	"context"
	"log"
	"strings"

	"go.uber.org/atomic"

	"legacy-awakened/server/internal/game"
	"legacy-awakened/server/internal/interfaces"
	"legacy-awakened/server/internal/prompts"
)

// Sampling temperature for each step of the chain.
const (
	narrativeTemp   = 0.7
	descriptionTemp = 0.6
	summaryTemp     = 0.5
	endingTemp      = 0.4
	closingTemp     = 0.7
)

const (
	fallbackNarrative = "Something went wrong in your journey, but your mission continues..."
	fallbackScene     = "You're standing on the edge of something bigger — the fate of the multiverse is at stake."

	defaultClosingSeed = "Create a satisfying superhero ending."
)

// TurnResult bundles the outcome of one advanced turn.
type TurnResult struct {
	Narrative        string        `json:"narrative"`
	SceneDescription string        `json:"scene_description"`
	Options          []game.Option `json:"options"`
	IsEnding         bool          `json:"is_ending"`

	// Degraded marks a turn in which at least one oracle call fell
	// back to placeholder text.
	Degraded bool `json:"-"`
}

// NarrativeEngine drives the fixed prompt chain for each player action.
// Advance never fails on oracle trouble; the only error it returns is
// the caller's cancelled context.
type NarrativeEngine struct {
	oracle    interfaces.Completer
	templates *prompts.TemplateEngine

	turns    atomic.Int64
	degraded atomic.Int64
	endings  atomic.Int64
}

// NewNarrativeEngine creates a narrative engine around a completion
// oracle.
func NewNarrativeEngine(oracle interfaces.Completer) *NarrativeEngine {
	templates := prompts.NewTemplateEngine()
	_ = templates.InitializeDefaultTemplates()

	return &NarrativeEngine{
		oracle:    oracle,
		templates: templates,
	}
}

// Advance runs one turn: narrative, scene description, context summary,
// ending classification, then either a closing passage or the next menu
// of options. Each step feeds the previous step's output into the next
// prompt, so the calls are strictly sequential. The state's story
// context is appended only once the whole chain has run with a live
// context; an abandoned turn leaves the state untouched.
func (e *NarrativeEngine) Advance(ctx context.Context, state *game.GameState, actionText, seedPrompt string) (*TurnResult, error) {
	e.turns.Inc()

	turnCtx := prompts.BuildTurnContext(state, actionText, seedPrompt)
	narrativePrompt, err := e.templates.Render("narrative_turn", turnCtx)
	if err != nil {
		log.Printf("[Engine] narrative prompt failed: %v", err)
		return e.fallbackTurn(), nil
	}
	narrative := e.oracle.Complete(ctx, narrativePrompt, narrativeTemp)

	descPrompt, err := e.templates.Render("scene_description", &prompts.TurnContext{Narrative: narrative.Text})
	if err != nil {
		log.Printf("[Engine] description prompt failed: %v", err)
		return e.fallbackTurn(), nil
	}
	description := e.oracle.Complete(ctx, descPrompt, descriptionTemp)

	summaryPrompt, err := e.templates.Render("context_summary", &prompts.TurnContext{
		PreviousContext: state.StoryContext,
		PlayerAction:    actionText,
		Narrative:       narrative.Text,
	})
	if err != nil {
		log.Printf("[Engine] summary prompt failed: %v", err)
		return e.fallbackTurn(), nil
	}
	fragment := e.oracle.Complete(ctx, summaryPrompt, summaryTemp)
	updatedContext := state.StoryContext + " " + fragment.Text

	endingPrompt, err := e.templates.Render("ending_check", &prompts.TurnContext{
		Narrative:    narrative.Text,
		StoryContext: updatedContext,
	})
	if err != nil {
		log.Printf("[Engine] ending prompt failed: %v", err)
		return e.fallbackTurn(), nil
	}
	verdict := e.oracle.Complete(ctx, endingPrompt, endingTemp)

	turnDegraded := narrative.Degraded || description.Degraded || fragment.Degraded || verdict.Degraded

	var result *TurnResult
	if endingKey := classifyEnding(verdict.Text); endingKey != "" {
		closingSeed := defaultClosingSeed
		if waypoint, ok := game.Waypoints[endingKey]; ok {
			closingSeed = waypoint.SeedPrompt
		}
		closing := e.oracle.Complete(ctx, closingSeed, closingTemp)
		turnDegraded = turnDegraded || closing.Degraded

		result = &TurnResult{
			Narrative:        narrative.Text + "\n\n" + closing.Text,
			SceneDescription: description.Text,
			Options:          []game.Option{{Text: "Start a new adventure", NextScene: game.SceneStart}},
			IsEnding:         true,
			Degraded:         turnDegraded,
		}
	} else {
		result = &TurnResult{
			Narrative:        narrative.Text,
			SceneDescription: description.Text,
			Options:          ParseOptions(narrative.Text),
			Degraded:         turnDegraded,
		}
	}

	// An abandoned turn must not be applied: a cancelled request walks
	// away without its context append or its counters.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state.StoryContext = updatedContext
	if result.IsEnding {
		e.endings.Inc()
	}
	if turnDegraded {
		e.degraded.Inc()
	}
	return result, nil
}

// fallbackTurn keeps the game playable when the chain itself breaks.
func (e *NarrativeEngine) fallbackTurn() *TurnResult {
	e.degraded.Inc()
	return &TurnResult{
		Narrative:        fallbackNarrative,
		SceneDescription: fallbackScene,
		Options:          degradedTurnOptions(),
		Degraded:         true,
	}
}

// classifyEnding maps a verdict completion to an ending waypoint key,
// or "" to continue. "victory" is checked before "defeat": a verdict
// containing both words counts as victorious.
func classifyEnding(verdict string) string {
	v := strings.ToLower(strings.TrimSpace(verdict))
	switch {
	case strings.Contains(v, "victory"):
		return game.WaypointVictoriousEnding
	case strings.Contains(v, "defeat"):
		return game.WaypointTragicEnding
	default:
		return ""
	}
}

// Stats reports lifetime engine counters.
func (e *NarrativeEngine) Stats() (turns, degraded, endings int64) {
	return e.turns.Load(), e.degraded.Load(), e.endings.Load()
}
