package decision

import "github.com/aventine/socius/internal/agent"

// ActionKind enumerates what an agent can do with a tick.
type ActionKind uint8

const (
	// ActionIdle is the terminal fallback; always available, never scores zero.
	ActionIdle ActionKind = iota
	// ActionForage works the local resource field against hunger.
	ActionForage
	// ActionRest recovers energy and lets arousal settle.
	ActionRest
	// ActionSocialize seeks out a specific neighbor.
	ActionSocialize
	// ActionFlee moves away from the most threatening percept.
	ActionFlee
	// ActionConfront squares up against a specific neighbor.
	ActionConfront
	// ActionExplore wanders, trading energy for novelty.
	ActionExplore
)

var actionNames = map[ActionKind]string{
	ActionIdle:      "idle",
	ActionForage:    "forage",
	ActionRest:      "rest",
	ActionSocialize: "socialize",
	ActionFlee:      "flee",
	ActionConfront:  "confront",
	ActionExplore:   "explore",
}

func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return "unknown"
}

// Action is a chosen behavior plus the bookkeeping downstream stages and the
// event log care about.
type Action struct {
	Kind     ActionKind `json:"kind"`
	Target   agent.ID   `json:"target,omitempty"` // set for socialize/flee/confront
	Score    float64    `json:"score"`
	Conflict bool       `json:"conflict"` // arbitration was a near-tie
	Forced   bool       `json:"forced"`   // emotional override bypassed arbitration
}
