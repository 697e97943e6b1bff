// Package validator enforces the structural contract of skill documents.
// Validation is pure and deterministic: no I/O, no network, no state
// carried between calls. Reports are exhaustive; every check runs even
// after an earlier one fails.
package validator

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kayz/skillforge/internal/config"
	"github.com/kayz/skillforge/internal/skill"
)

// Kind names a structural rule failure
type Kind string

const (
	KindMissingField      Kind = "missing_field"
	KindPatternMismatch   Kind = "pattern_mismatch"
	KindLengthOutOfRange  Kind = "length_out_of_range"
	KindUnknownCapability Kind = "unknown_capability"
	KindUnknownHookEvent  Kind = "unknown_hook_event"
)

// Severity separates hard failures from advisory findings
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a single structural rule failure
type Violation struct {
	Field    string
	Kind     Kind
	Severity Severity
	Message  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.Field, v.Message, v.Kind)
}

// Report is the outcome of one validation call
type Report []Violation

// OK reports whether the artifact is accepted. Warning-severity violations
// do not block acceptance.
func (r Report) OK() bool {
	for _, v := range r {
		if v.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Failures returns only the error-severity violations
func (r Report) Failures() Report {
	var out Report
	for _, v := range r {
		if v.Severity == SeverityError {
			out = append(out, v)
		}
	}
	return out
}

// Warnings returns only the warning-severity violations
func (r Report) Warnings() Report {
	var out Report
	for _, v := range r {
		if v.Severity == SeverityWarning {
			out = append(out, v)
		}
	}
	return out
}

func (r Report) String() string {
	if len(r) == 0 {
		return "no violations"
	}
	lines := make([]string, 0, len(r))
	for _, v := range r {
		lines = append(lines, "- "+v.String())
	}
	return strings.Join(lines, "\n")
}

// Validator checks candidate artifacts against the configured bounds
type Validator struct {
	cfg         config.ValidationConfig
	namePattern *regexp.Regexp
	knownCaps   map[string]bool
	knownEvents map[string]bool
}

// New compiles the configured bounds into a validator
func New(cfg config.ValidationConfig) (*Validator, error) {
	pattern := cfg.NamePattern
	if pattern == "" {
		pattern = `^[a-z0-9-]+$`
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}

	caps := make(map[string]bool, len(cfg.AllowedCapabilities))
	for _, c := range cfg.AllowedCapabilities {
		caps[c] = true
	}

	events := make(map[string]bool)
	for _, e := range skill.KnownLifecycleEvents() {
		events[e] = true
	}

	return &Validator{
		cfg:         cfg,
		namePattern: re,
		knownCaps:   caps,
		knownEvents: events,
	}, nil
}

// Validate checks a parsed artifact and returns the exhaustive report
func (v *Validator) Validate(a *skill.Artifact) Report {
	var report Report

	report = append(report, v.checkName(a.Name)...)
	report = append(report, v.checkDescription(a.Description)...)
	report = append(report, v.checkCapabilities(a.AllowedCapabilities)...)
	report = append(report, v.checkHooks(a.Hooks)...)
	report = append(report, v.checkBody(a)...)

	return report
}

// ValidateContent parses raw SKILL.md text and validates it. A document
// whose header cannot be parsed yields a single header violation.
func (v *Validator) ValidateContent(content string) Report {
	artifact, err := skill.Parse(content)
	if err != nil {
		return Report{{
			Field:    "header",
			Kind:     KindMissingField,
			Severity: SeverityError,
			Message:  err.Error(),
		}}
	}
	return v.Validate(artifact)
}

// ValidateFile validates an externally authored skill file
func (v *Validator) ValidateFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return v.ValidateContent(string(data)), nil
}

func (v *Validator) checkName(name string) Report {
	if name == "" {
		return Report{{
			Field:    "name",
			Kind:     KindMissingField,
			Severity: SeverityError,
			Message:  "missing required field 'name'",
		}}
	}

	var report Report
	if maxLen := v.cfg.MaxNameLength; maxLen > 0 && len(name) > maxLen {
		report = append(report, Violation{
			Field:    "name",
			Kind:     KindLengthOutOfRange,
			Severity: SeverityError,
			Message:  fmt.Sprintf("name exceeds maximum length of %d characters", maxLen),
		})
	}
	if !v.namePattern.MatchString(name) {
		report = append(report, Violation{
			Field:    "name",
			Kind:     KindPatternMismatch,
			Severity: SeverityError,
			Message:  fmt.Sprintf("name must contain only lowercase letters, numbers and hyphens, got %q", name),
		})
	}
	return report
}

func (v *Validator) checkDescription(desc string) Report {
	if desc == "" {
		return Report{{
			Field:    "description",
			Kind:     KindMissingField,
			Severity: SeverityError,
			Message:  "missing required field 'description'",
		}}
	}

	// Bounds are in characters, not bytes; multi-byte descriptions must
	// not be over-counted.
	length := utf8.RuneCountInString(desc)

	var report Report
	if min := v.cfg.MinDescriptionLength; min > 0 && length < min {
		report = append(report, Violation{
			Field:    "description",
			Kind:     KindLengthOutOfRange,
			Severity: SeverityError,
			Message:  fmt.Sprintf("description too short (minimum %d characters); a good description helps the assistant know when to use the skill", min),
		})
	}
	if max := v.cfg.MaxDescriptionLength; max > 0 && length > max {
		report = append(report, Violation{
			Field:    "description",
			Kind:     KindLengthOutOfRange,
			Severity: SeverityError,
			Message:  fmt.Sprintf("description exceeds maximum length of %d characters", max),
		})
	}
	return report
}

func (v *Validator) checkCapabilities(caps []string) Report {
	var report Report
	for _, c := range caps {
		if !v.knownCaps[c] {
			report = append(report, Violation{
				Field:    "allowed-capabilities",
				Kind:     KindUnknownCapability,
				Severity: SeverityError,
				Message:  fmt.Sprintf("unknown capability tag %q", c),
			})
		}
	}
	return report
}

func (v *Validator) checkHooks(hooks map[string]skill.Hook) Report {
	var report Report
	for event, hook := range hooks {
		if !v.knownEvents[event] {
			report = append(report, Violation{
				Field:    "hooks",
				Kind:     KindUnknownHookEvent,
				Severity: SeverityError,
				Message:  fmt.Sprintf("unknown lifecycle event %q", event),
			})
		}
		if strings.TrimSpace(hook.Command) == "" {
			report = append(report, Violation{
				Field:    "hooks." + event + ".command",
				Kind:     KindMissingField,
				Severity: SeverityError,
				Message:  fmt.Sprintf("hook for %q has an empty command", event),
			})
		}
	}
	return report
}

func (v *Validator) checkBody(a *skill.Artifact) Report {
	body := strings.TrimSpace(a.Body)
	if body == "" {
		return Report{{
			Field:    "body",
			Kind:     KindMissingField,
			Severity: SeverityError,
			Message:  "instruction body is empty",
		}}
	}

	var report Report
	if min := v.cfg.MinBodyLength; min > 0 && utf8.RuneCountInString(body) < min {
		report = append(report, Violation{
			Field:    "body",
			Kind:     KindLengthOutOfRange,
			Severity: SeverityError,
			Message:  fmt.Sprintf("instruction body too short (minimum %d characters); skills should include clear instructions and examples", min),
		})
	}

	stats := inspectBody(body)
	if stats.headings == 0 {
		report = append(report, Violation{
			Field:    "body",
			Kind:     KindMissingField,
			Severity: SeverityError,
			Message:  "instruction body should include at least one heading",
		})
	}
	if len(a.Hooks) > 0 && stats.fencedBlocks == 0 {
		report = append(report, Violation{
			Field:    "body",
			Kind:     KindMissingField,
			Severity: SeverityWarning,
			Message:  "hooks are declared but the body has no fenced example block showing their use",
		})
	}
	return report
}
