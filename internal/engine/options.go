package engine

import (
	"regexp"
	"strings"

	"legacy-awakened/server/internal/game"
)

// maxParsedOptions caps how many numbered lines are taken from the
// oracle text; the free-text slot always comes on top of these.
const maxParsedOptions = 4

// optionLinePattern matches a leading enumerator: a number followed by
// one of . : ) - and whitespace.
var optionLinePattern = regexp.MustCompile(`^\d+[.:)\-]\s+(.*)`)

var quoteStripper = strings.NewReplacer("'", "", `"`, "")

// otherOption is the reserved free-text slot, always last in a list.
func otherOption() game.Option {
	return game.Option{Text: "Other (write your own action)", NextScene: game.CustomActionScene}
}

// fallbackOptions is the fixed set substituted when parsing yields too
// few results.
func fallbackOptions() []game.Option {
	return []game.Option{
		{Text: "Explore further ahead", NextScene: "scene_explore_ahead"},
		{Text: "Examine your surroundings carefully", NextScene: "scene_examine_surroundings"},
		{Text: "Rest and recover your strength", NextScene: "scene_rest_recover"},
		{Text: "Try a different approach", NextScene: "scene_different_approach"},
		otherOption(),
	}
}

// degradedTurnOptions backs the engine's catch-all fallback turn.
func degradedTurnOptions() []game.Option {
	return []game.Option{
		{Text: "Continue forward cautiously", NextScene: "scene_continue_forward"},
		{Text: "Look for an alternative path", NextScene: "scene_alternative_path"},
		{Text: "Take a moment to think", NextScene: "scene_think"},
		{Text: "Prepare for potential danger", NextScene: "scene_prepare"},
		otherOption(),
	}
}

// ParseOptions turns a block of oracle-generated text into exactly five
// options: up to four parsed from numbered lines, in line order, plus
// the free-text slot. Fewer than four well-formed lines discards the
// parse and substitutes the fixed fallback set.
func ParseOptions(raw string) []game.Option {
	options := make([]game.Option, 0, maxParsedOptions+1)

	for _, line := range strings.Split(raw, "\n") {
		match := optionLinePattern.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		text := strings.TrimSpace(match[1])
		options = append(options, game.Option{Text: text, NextScene: sceneID(text)})
		if len(options) == maxParsedOptions {
			break
		}
	}

	if len(options) < maxParsedOptions {
		return fallbackOptions()
	}

	return append(options, otherOption())
}

// sceneID derives a machine-friendly scene identifier from the first
// three words of an option label.
func sceneID(label string) string {
	words := strings.Fields(strings.ToLower(label))
	if len(words) > 3 {
		words = words[:3]
	}
	return "scene_" + quoteStripper.Replace(strings.Join(words, "_"))
}
