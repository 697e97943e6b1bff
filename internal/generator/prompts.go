package generator

import (
	"fmt"
	"strings"

	"github.com/kayz/skillforge/internal/validator"
)

// SystemPrompt frames every backend call made by the authoring pipeline.
const SystemPrompt = `You are an expert at writing skill documents: reusable capability
definitions that teach an AI assistant how to perform a specific task.

A skill document is a SKILL.md file: YAML frontmatter between --- markers,
followed by markdown instructions.

Frontmatter fields:
- name: short slug, lowercase letters, numbers and hyphens only
- description: one or two sentences saying when the skill applies (20-1024 characters)
- allowed-capabilities: optional list of capability tags the skill may use
  (Bash, Read, Write, Edit, Grep, Glob, WebFetch, WebSearch)
- hooks: optional mapping from lifecycle event (before-tool-use,
  after-tool-use, stop) to {matcher, command}

The markdown body holds clear step-by-step instructions with at least one
heading and fenced example blocks.`

// generatePrompt asks for the complete document from the conversation
func generatePrompt(context string, wantHooks bool, prior validator.Report) string {
	var sb strings.Builder
	sb.WriteString("# Conversation History\n")
	sb.WriteString(context)
	sb.WriteString("\n\n# Your Task\nBased on the entire conversation above, generate a complete, production-ready SKILL.md document.\n\n")
	sb.WriteString("If the user skipped answers, apply best practices and make reasonable decisions for those aspects.\n\n")

	if wantHooks {
		sb.WriteString("Include a hooks mapping in the frontmatter and a fenced example block in the body showing how the hooks run.\n\n")
	}

	if len(prior) > 0 {
		sb.WriteString("# Previous Attempt Was Rejected\nYour previous document failed validation. Fix exactly these violations and keep everything else intact:\n")
		for _, v := range prior {
			fmt.Fprintf(&sb, "- %s\n", v.String())
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`Requirements:
1. YAML frontmatter between --- markers, all of it parseable
2. Use a folded scalar (>) for descriptions over 80 characters
3. Use proper YAML list syntax for allowed-capabilities
4. Markdown body with clear instructions, at least one heading, and fenced example blocks

Output ONLY the raw SKILL.md content. No explanations, no code fences around the whole document.`)
	return sb.String()
}
