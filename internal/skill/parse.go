package skill

import (
	"bufio"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse splits a SKILL.md document into frontmatter and body and decodes
// the header fields.
func Parse(content string) (*Artifact, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}
	if frontmatter == "" {
		return nil, fmt.Errorf("document must start with YAML frontmatter (---)")
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(frontmatter), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter YAML: %w", err)
	}

	return &Artifact{Frontmatter: fm, Body: body}, nil
}

// splitFrontmatter splits a document into YAML frontmatter and markdown body.
// Frontmatter is delimited by "---" lines.
func splitFrontmatter(content string) (frontmatter, body string, err error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	// Find opening ---
	opened := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "---" {
			opened = true
			break
		}
		// Non-empty content before --- means there is no frontmatter
		if line != "" {
			return "", content, nil
		}
	}
	if !opened {
		return "", content, nil
	}

	// Collect frontmatter lines until closing ---
	var fmLines []string
	found := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			found = true
			break
		}
		fmLines = append(fmLines, line)
	}

	if !found {
		return "", content, fmt.Errorf("no closing --- found for frontmatter")
	}

	frontmatter = strings.Join(fmLines, "\n")

	var bodyLines []string
	for scanner.Scan() {
		bodyLines = append(bodyLines, scanner.Text())
	}
	body = strings.Join(bodyLines, "\n")

	return frontmatter, strings.TrimSpace(body), nil
}
