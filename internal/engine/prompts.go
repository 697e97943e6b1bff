package engine

import (
	"fmt"
	"strings"
)

// readySentinel is the backend's signal that it has enough context to
// generate the document without further questions.
const readySentinel = "READY_TO_GENERATE"

func firstQuestionInstruction(intent string, budget int, wantHooks bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# User's Initial Request\nThe user wants to create a skill for: %q\n\n", intent)
	if wantHooks {
		sb.WriteString("The user wants to include hooks in this skill. Ask what automatic actions they need and which lifecycle events (before-tool-use, after-tool-use, stop) to bind.\n\n")
	}
	fmt.Fprintf(&sb, `Based on this request, generate one targeted question to understand the
specific capabilities needed, when the skill should trigger, and any
constraints. You may ask at most %d questions over the whole conversation,
so make each one count.

If the request is already specific enough to write an excellent skill,
respond with exactly: %s

Output only the question or the %s marker, nothing else.`, budget, readySentinel, readySentinel)
	return sb.String()
}

func followupInstruction(remaining int) string {
	return fmt.Sprintf(`You have %d questions remaining. Do not revisit topics the user skipped;
they want best practices applied there.

If you still need information to write an excellent skill, ask exactly one
targeted follow-up question. If not, respond with exactly: %s

Output only the question or the %s marker, nothing else.`, remaining, readySentinel, readySentinel)
}

// parseReply splits a backend reply into a question or the done signal.
// The sentinel counts anywhere in the reply since backends sometimes wrap
// it in pleasantries.
func parseReply(reply string) (question string, done bool) {
	trimmed := strings.TrimSpace(reply)
	if strings.Contains(trimmed, readySentinel) {
		return "", true
	}
	return trimmed, false
}
