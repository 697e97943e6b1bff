package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Write persists the artifact as <baseDir>/<name>/SKILL.md and returns the
// file path. Callers must only invoke this after validation accepts the
// artifact; nothing here re-checks the contract.
func (a *Artifact) Write(baseDir string) (string, error) {
	if a.Name == "" {
		return "", fmt.Errorf("artifact has no name")
	}

	content, err := a.Render()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(baseDir, a.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create skill directory: %w", err)
	}

	path := filepath.Join(dir, "SKILL.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write skill file: %w", err)
	}

	return path, nil
}

// WriteSupportingFiles adds a README and an examples stub next to SKILL.md
func (a *Artifact) WriteSupportingFiles(baseDir string) error {
	dir := filepath.Join(baseDir, a.Name)

	var readme strings.Builder
	fmt.Fprintf(&readme, "# %s\n\n%s\n\n", a.Name, a.Description)
	readme.WriteString("## Usage\n\nThis skill is discovered automatically when relevant to the conversation.\n\n")
	readme.WriteString("## Files\n\n- `SKILL.md` - Main skill file with instructions\n")
	if len(a.AllowedCapabilities) > 0 {
		fmt.Fprintf(&readme, "\n## Allowed capabilities\n\n- %s\n",
			strings.Join(a.AllowedCapabilities, "\n- "))
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(readme.String()), 0644); err != nil {
		return fmt.Errorf("failed to write README: %w", err)
	}

	examplesDir := filepath.Join(dir, "examples")
	if err := os.MkdirAll(examplesDir, 0755); err != nil {
		return err
	}

	example := fmt.Sprintf("# Examples for %s\n\nAdd example usage scenarios here.\n\n## Example 1\n\n[Describe a scenario]\n", a.Name)
	if err := os.WriteFile(filepath.Join(examplesDir, "examples.md"), []byte(example), 0644); err != nil {
		return fmt.Errorf("failed to write examples: %w", err)
	}

	return nil
}
