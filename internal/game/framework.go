package game

// Waypoint keys referenced by the turn logic.
const (
	WaypointStart            = "start"
	WaypointFinalShowdown    = "final_showdown"
	WaypointTragicEnding     = "tragic_ending"
	WaypointVictoriousEnding = "victorious_ending"
)

// Waypoint is a static story anchor with a canned description and a seed
// prompt handed to the oracle when the waypoint is played.
type Waypoint struct {
	Description string
	SeedPrompt  string
}

// Waypoints is the base story framework. The generated content grows
// around these anchors; final_showdown is defined but nothing routes to
// it.
var Waypoints = map[string]Waypoint{
	WaypointStart: {
		Description: "You awaken in a secure SHIELD bunker. You're told you were caught in a quantum " +
			"reactor accident and are now exhibiting abilities no one fully understands. " +
			"Nick Fury left a message: the world needs you.",
		SeedPrompt: "The protagonist awakens in a SHIELD bunker with newfound powers after a mysterious " +
			"quantum accident. Nick Fury’s message urges them to prepare — something dangerous is " +
			"brewing. Write a cinematic opening scene and offer 4 action-packed paths: test your " +
			"powers, escape, contact Fury, or access the SHIELD mainframe.",
	},
	WaypointFinalShowdown: {
		Description: "The battle has reached Stark Tower. A multiverse breach is tearing reality, and the " +
			"villain stands at its heart. Only you — with your powers and your choices — can stop the collapse.",
		SeedPrompt: "Atop Stark Tower, the multiverse breach expands. The villain harnesses unstable " +
			"energy. The hero must act. Present 4 Marvel-style strategies: perhaps a sacrifice, a " +
			"team-up, a tech gamble, or a morality test.",
	},
	WaypointTragicEnding: {
		Description: "You made the ultimate sacrifice. The multiverse is safe, but your light is gone. " +
			"Your story echoes through timelines.",
		SeedPrompt: "The hero dies saving the multiverse. Write a powerful, emotional ending. Include " +
			"reactions from iconic heroes and how the world remembers them.",
	},
	WaypointVictoriousEnding: {
		Description: "Against all odds, you closed the breach and stopped the villain. The Avengers " +
			"salute you — the newest legend.",
		SeedPrompt: "The hero triumphs, saving the multiverse and proving themselves among the greats. " +
			"Write a victorious Marvel-style ending with hints of new threats and growth.",
	},
}
