package validator

import (
	"strings"
	"testing"

	"github.com/kayz/skillforge/internal/config"
	"github.com/kayz/skillforge/internal/skill"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New(config.DefaultConfig().Validation)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return v
}

func goodArtifact() *skill.Artifact {
	return &skill.Artifact{
		Frontmatter: skill.Frontmatter{
			Name:                "release-notes",
			Description:         "Writes release notes from merged pull requests since the last tag.",
			AllowedCapabilities: []string{"Bash", "Read"},
		},
		Body: "# Release Notes\n\nCollect merged PRs and group them by area.\n\n```bash\ngit log --oneline v1.0.0..HEAD\n```\n",
	}
}

func TestValidArtifactPasses(t *testing.T) {
	v := newTestValidator(t)
	report := v.Validate(goodArtifact())
	if !report.OK() {
		t.Fatalf("expected acceptance, got:\n%s", report)
	}
	if len(report) != 0 {
		t.Errorf("expected empty report, got %d violations", len(report))
	}
}

func TestBadSlugYieldsExactlyOnePatternViolation(t *testing.T) {
	v := newTestValidator(t)
	a := goodArtifact()
	a.Name = "My_Skill"

	report := v.Validate(a)
	var matches []Violation
	for _, viol := range report {
		if viol.Field == "name" {
			matches = append(matches, viol)
		}
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one name violation, got %d:\n%s", len(matches), report)
	}
	if matches[0].Kind != KindPatternMismatch {
		t.Errorf("kind = %s, want %s", matches[0].Kind, KindPatternMismatch)
	}
}

func TestNameLengthAndMissing(t *testing.T) {
	v := newTestValidator(t)

	a := goodArtifact()
	a.Name = ""
	report := v.Validate(a)
	if report.OK() {
		t.Error("missing name should be rejected")
	}
	if report[0].Kind != KindMissingField || report[0].Field != "name" {
		t.Errorf("first violation = %+v", report[0])
	}

	a = goodArtifact()
	a.Name = strings.Repeat("a", 65)
	report = v.Validate(a)
	found := false
	for _, viol := range report {
		if viol.Field == "name" && viol.Kind == KindLengthOutOfRange {
			found = true
		}
	}
	if !found {
		t.Errorf("expected length violation for 65-char name:\n%s", report)
	}
}

func TestDescriptionBounds(t *testing.T) {
	v := newTestValidator(t)

	a := goodArtifact()
	a.Description = "Too short."
	report := v.Validate(a)
	if report.OK() {
		t.Error("10-char description should be rejected")
	}

	a = goodArtifact()
	a.Description = strings.Repeat("x", 1025)
	if v.Validate(a).OK() {
		t.Error("1025-char description should be rejected")
	}

	a = goodArtifact()
	a.Description = strings.Repeat("x", 20)
	if !v.Validate(a).OK() {
		t.Error("20-char description should pass")
	}
}

func TestDescriptionBoundsCountCharacters(t *testing.T) {
	v := newTestValidator(t)

	// 1000 CJK characters is 3000 bytes but within the 1024-character max.
	a := goodArtifact()
	a.Description = strings.Repeat("说", 1000)
	if report := v.Validate(a); !report.OK() {
		t.Errorf("1000-character description should pass regardless of byte width:\n%s", report)
	}

	a = goodArtifact()
	a.Description = strings.Repeat("说", 10)
	if v.Validate(a).OK() {
		t.Error("10-character description should fail the minimum even at 30 bytes")
	}
}

func TestUnknownCapabilityRejected(t *testing.T) {
	v := newTestValidator(t)
	a := goodArtifact()
	a.AllowedCapabilities = append(a.AllowedCapabilities, "Teleport")

	report := v.Validate(a)
	if report.OK() {
		t.Fatal("unknown capability should be rejected")
	}
	found := false
	for _, viol := range report {
		if viol.Kind == KindUnknownCapability && strings.Contains(viol.Message, "Teleport") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unknown_capability violation:\n%s", report)
	}
}

func TestHookChecks(t *testing.T) {
	v := newTestValidator(t)

	a := goodArtifact()
	a.Hooks = map[string]skill.Hook{"on-boot": {Command: "ls"}}
	report := v.Validate(a)
	found := false
	for _, viol := range report {
		if viol.Kind == KindUnknownHookEvent {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unknown_hook_event violation:\n%s", report)
	}

	a = goodArtifact()
	a.Hooks = map[string]skill.Hook{skill.EventStop: {Command: "  "}}
	report = v.Validate(a)
	found = false
	for _, viol := range report {
		if viol.Kind == KindMissingField && viol.Field == "hooks.stop.command" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected empty command violation:\n%s", report)
	}
}

func TestHooksWithoutExampleBlockWarnsOnly(t *testing.T) {
	v := newTestValidator(t)
	a := goodArtifact()
	a.Hooks = map[string]skill.Hook{skill.EventStop: {Command: "./cleanup.sh"}}
	a.Body = "# Cleanup\n\nRun the cleanup script when the session stops. The script removes temp files.\n"

	report := v.Validate(a)
	if !report.OK() {
		t.Fatalf("warnings must not block acceptance:\n%s", report)
	}
	if len(report.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %d", len(report.Warnings()))
	}
	if report.Warnings()[0].Severity != SeverityWarning {
		t.Errorf("severity = %s", report.Warnings()[0].Severity)
	}
}

func TestBodyChecks(t *testing.T) {
	v := newTestValidator(t)

	a := goodArtifact()
	a.Body = ""
	if v.Validate(a).OK() {
		t.Error("empty body should be rejected")
	}

	a = goodArtifact()
	a.Body = "# Hi\n\ntiny"
	if v.Validate(a).OK() {
		t.Error("short body should be rejected")
	}

	a = goodArtifact()
	a.Body = strings.Repeat("plain text without any heading at all. ", 5)
	report := v.Validate(a)
	if report.OK() {
		t.Error("body without a heading should be rejected")
	}
}

func TestReportIsExhaustive(t *testing.T) {
	v := newTestValidator(t)
	a := &skill.Artifact{
		Frontmatter: skill.Frontmatter{
			Name:                "Bad Name!",
			Description:         "short",
			AllowedCapabilities: []string{"Nope"},
		},
		Body: "no heading",
	}

	report := v.Validate(a)
	kinds := map[Kind]bool{}
	for _, viol := range report {
		kinds[viol.Kind] = true
	}
	for _, want := range []Kind{KindPatternMismatch, KindLengthOutOfRange, KindUnknownCapability} {
		if !kinds[want] {
			t.Errorf("report missing %s:\n%s", want, report)
		}
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	v := newTestValidator(t)
	a := goodArtifact()
	a.Name = "Bad Name"

	first := v.Validate(a)
	second := v.Validate(a)
	if len(first) != len(second) {
		t.Errorf("repeated validation differs: %d vs %d violations", len(first), len(second))
	}
}

func TestValidateContentParseFailure(t *testing.T) {
	v := newTestValidator(t)
	report := v.ValidateContent("# no frontmatter here\n")
	if report.OK() {
		t.Fatal("unparseable document should be rejected")
	}
	if len(report) != 1 || report[0].Field != "header" {
		t.Errorf("expected single header violation, got:\n%s", report)
	}
}
