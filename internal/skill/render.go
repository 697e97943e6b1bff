package skill

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Render serializes the artifact back into SKILL.md form
func (a *Artifact) Render() (string, error) {
	header, err := yaml.Marshal(a.Frontmatter)
	if err != nil {
		return "", fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(a.Body))
	sb.WriteString("\n")
	return sb.String(), nil
}
