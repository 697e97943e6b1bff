// Package conversation holds the append-only dialogue log for one
// authoring session. A transcript is owned by a single session and is
// never persisted.
package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Role tags a turn's author
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single role-tagged message
type Turn struct {
	Role    Role
	Content string
	Done    bool // assistant signaled it has enough information
	Skipped bool // user declined to answer this question
	At      time.Time
}

// DefaultMaxTurns bounds prompt growth on long sessions. Oldest turns after
// the intent seed are dropped once the cap is exceeded.
const DefaultMaxTurns = 64

// Transcript is an ordered, append-only log of turns. The first turn is the
// seeded intent and survives trimming.
type Transcript struct {
	turns    []Turn
	maxTurns int
}

// New creates an empty transcript. maxTurns <= 0 selects DefaultMaxTurns.
func New(maxTurns int) *Transcript {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Transcript{maxTurns: maxTurns}
}

// Append adds a turn to the end of the log, trimming the oldest non-seed
// turns if the retained length would exceed the cap.
func (t *Transcript) Append(turn Turn) {
	if turn.At.IsZero() {
		turn.At = time.Now()
	}
	t.turns = append(t.turns, turn)

	if len(t.turns) > t.maxTurns {
		// Keep the seed turn, drop the oldest of the rest.
		overflow := len(t.turns) - t.maxTurns
		kept := make([]Turn, 0, t.maxTurns)
		kept = append(kept, t.turns[0])
		kept = append(kept, t.turns[1+overflow:]...)
		t.turns = kept
	}
}

// Len returns the number of retained turns
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of the retained turns
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Questions counts assistant turns that asked a question
func (t *Transcript) Questions() int {
	n := 0
	for _, turn := range t.turns {
		if turn.Role == RoleAssistant && !turn.Done {
			n++
		}
	}
	return n
}

// Render flattens the transcript into prompt context, one block per turn.
// Skipped answers are marked so the backend does not revisit those topics.
func (t *Transcript) Render() string {
	var sb strings.Builder
	for i, turn := range t.turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		content := turn.Content
		if turn.Skipped {
			content = "[SKIPPED - use best practices for this]"
		}
		fmt.Fprintf(&sb, "%s: %s", strings.ToUpper(string(turn.Role)), content)
	}
	return sb.String()
}
