// Package skill models the generated capability document: a YAML
// frontmatter header plus a markdown instruction body, persisted as
// SKILL.md.
package skill

// Lifecycle events a hook command may be bound to
const (
	EventBeforeToolUse = "before-tool-use"
	EventAfterToolUse  = "after-tool-use"
	EventStop          = "stop"
)

// KnownLifecycleEvents returns the lifecycle event vocabulary
func KnownLifecycleEvents() []string {
	return []string{EventBeforeToolUse, EventAfterToolUse, EventStop}
}

// Hook binds a lifecycle event to a command
type Hook struct {
	Matcher string `yaml:"matcher,omitempty"`
	Command string `yaml:"command"`
}

// Frontmatter is the typed key/value header of a skill document
type Frontmatter struct {
	Name                string          `yaml:"name"`
	Description         string          `yaml:"description"`
	AllowedCapabilities []string        `yaml:"allowed-capabilities,omitempty"`
	Hooks               map[string]Hook `yaml:"hooks,omitempty"`
}

// Artifact is one candidate or accepted skill document. It is replaced
// whole on regeneration, never patched field by field.
type Artifact struct {
	Frontmatter
	Body string
}
