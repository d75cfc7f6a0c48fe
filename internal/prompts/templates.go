package prompts

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"legacy-awakened/server/internal/game"
)

// TemplateEngine manages prompt templates
type TemplateEngine struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

// Template represents a prompt template with variables
type Template struct {
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Variables   []string `json:"variables"`
	Description string   `json:"description"`
}

// TurnContext holds variables for rendering the turn templates
type TurnContext struct {
	// Game state snapshot
	CurrentScene string `json:"current_scene"`
	Visited      string `json:"visited"`
	Inventory    string `json:"inventory"`
	Stats        string `json:"stats"`
	StoryContext string `json:"story_context"`

	// Turn input
	PlayerAction string `json:"player_action"`
	SeedPrompt   string `json:"seed_prompt"`

	// Chain intermediates
	Narrative       string `json:"narrative"`
	PreviousContext string `json:"previous_context"`

	// Additional context
	Custom map[string]string `json:"custom"`
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		templates: make(map[string]*Template),
	}
}

// RegisterTemplate registers a new template
func (e *TemplateEngine) RegisterTemplate(tmpl *Template) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.templates[tmpl.Name] = tmpl
	return nil
}

// GetTemplate retrieves a template by name
func (e *TemplateEngine) GetTemplate(name string) (*Template, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tmpl, ok := e.templates[name]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", name)
	}
	return tmpl, nil
}

// Render renders a template with the given context
func (e *TemplateEngine) Render(templateName string, ctx *TurnContext) (string, error) {
	tmpl, err := e.GetTemplate(templateName)
	if err != nil {
		return "", err
	}

	return e.renderTemplate(tmpl, ctx)
}

var varPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// renderTemplate performs the actual template rendering
func (e *TemplateEngine) renderTemplate(tmpl *Template, ctx *TurnContext) (string, error) {
	result := varPattern.ReplaceAllStringFunc(tmpl.Content, func(match string) string {
		varName := varPattern.FindStringSubmatch(match)[1]
		value, ok := e.getVariableValue(ctx, varName)
		if ok {
			return value
		}
		return match // Keep placeholder if not found
	})

	// Handle custom variables
	if ctx.Custom != nil {
		for key, value := range ctx.Custom {
			placeholder := fmt.Sprintf("{{%s}}", key)
			result = strings.ReplaceAll(result, placeholder, value)
		}
	}

	return result, nil
}

// getVariableValue retrieves a variable value from context
func (e *TemplateEngine) getVariableValue(ctx *TurnContext, varName string) (string, bool) {
	switch varName {
	case "current_scene":
		return ctx.CurrentScene, ctx.CurrentScene != ""
	case "visited":
		return ctx.Visited, ctx.Visited != ""
	case "inventory":
		return ctx.Inventory, ctx.Inventory != ""
	case "stats":
		return ctx.Stats, ctx.Stats != ""
	case "story_context":
		return ctx.StoryContext, ctx.StoryContext != ""
	case "player_action":
		return ctx.PlayerAction, ctx.PlayerAction != ""
	case "seed_prompt":
		return ctx.SeedPrompt, ctx.SeedPrompt != ""
	case "narrative":
		return ctx.Narrative, ctx.Narrative != ""
	case "previous_context":
		return ctx.PreviousContext, ctx.PreviousContext != ""
	default:
		if ctx.Custom != nil {
			if val, ok := ctx.Custom[varName]; ok {
				return val, true
			}
		}
		return "", false
	}
}

// InitializeDefaultTemplates initializes the turn chain templates
func (e *TemplateEngine) InitializeDefaultTemplates() error {
	templates := []*Template{
		{
			Name:        "narrative_turn",
			Description: "Main template for continuing the story after a player action",
			Content: `You are the storyteller for 'Legacy Awakened', a cinematic superhero text adventure where the player takes on the role of a rising hero caught in a multiverse crisis.

Current game state:
- Current location: {{current_scene}}
- Player has visited: {{visited}}
- Player has in inventory: {{inventory}}
- Player stats: {{stats}}
- Story context so far: {{story_context}}

Player just chose: "{{player_action}}"

Additional context: {{seed_prompt}}

Generate a thrilling continuation of the story (about 2-4 paragraphs) that:
1. Reacts to the player's choice
2. Describes what happens next in cinematic, vivid detail
3. Builds tension and stakes fitting the superhero genre
4. Keeps the story immersive and fast-paced

Write in second person ("you") and present tense.

End with EXACTLY 4 dramatic choices for the player. Each choice must be under 15 words, feel heroic, risky, or clever, and lead in a distinct direction. Format exactly like:
1. Activate your repulsor cannon and blast the wall
2. Hack the console to access intel
3. Call for backup using the SHIELD beacon
4. Fly through the breach before it closes`,
			Variables: []string{"current_scene", "visited", "inventory", "stats", "story_context", "player_action", "seed_prompt"},
		},
		{
			Name:        "scene_description",
			Description: "Template for a short visual scene description",
			Content: `Based on this narrative, create a short scene description (max 3 sentences) that sets the stage visually:

{{narrative}}

The description should paint a clear cinematic moment.`,
			Variables: []string{"narrative"},
		},
		{
			Name:        "context_summary",
			Description: "Template for appending the latest event to the story context",
			Content: `Summarize the following event in 1-2 sentences to add to the story context:

Previous context: {{previous_context}}
New event: Player chose "{{player_action}}" which led to: {{narrative}}`,
			Variables: []string{"previous_context", "player_action", "narrative"},
		},
		{
			Name:        "ending_check",
			Description: "Template for classifying whether the adventure has ended",
			Content: `Does the following narrative represent the end of the adventure?

Clues to look for:
- Has the player saved or failed the mission?
- Did they face final consequences or resolution?
- Is this the climax or conclusion of their journey?

Narrative: {{narrative}}
Story context: {{story_context}}

Respond with ONLY ONE word:
- "continue"
- "victory"
- "defeat"`,
			Variables: []string{"narrative", "story_context"},
		},
	}

	for _, tmpl := range templates {
		if err := e.RegisterTemplate(tmpl); err != nil {
			return fmt.Errorf("failed to register template %s: %w", tmpl.Name, err)
		}
	}

	return nil
}

// BuildTurnContext builds a turn context from a game state snapshot and
// the player's action
func BuildTurnContext(state *game.GameState, playerAction, seedPrompt string) *TurnContext {
	visited := "nowhere yet"
	if len(state.VisitedLocations) > 0 {
		visited = strings.Join(state.VisitedLocations, ", ")
	}
	inventory := "nothing"
	if len(state.Inventory) > 0 {
		inventory = strings.Join(state.Inventory, ", ")
	}
	stats := fmt.Sprintf("Health %d, Courage %d, Wisdom %d",
		state.PlayerStats["health"], state.PlayerStats["courage"], state.PlayerStats["wisdom"])

	return &TurnContext{
		CurrentScene: state.CurrentScene,
		Visited:      visited,
		Inventory:    inventory,
		Stats:        stats,
		StoryContext: state.StoryContext,
		PlayerAction: playerAction,
		SeedPrompt:   seedPrompt,
	}
}
