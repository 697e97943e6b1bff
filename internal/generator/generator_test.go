package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kayz/skillforge/internal/config"
	"github.com/kayz/skillforge/internal/conversation"
	"github.com/kayz/skillforge/internal/validator"
)

type scriptedChatter struct {
	replies []string
	prompts []string
}

func (c *scriptedChatter) Send(ctx context.Context, systemPrompt string, transcript *conversation.Transcript, newTurn conversation.Turn) (string, error) {
	c.prompts = append(c.prompts, newTurn.Content)
	if len(c.prompts) > len(c.replies) {
		return "", errors.New("scripted chatter exhausted")
	}
	return c.replies[len(c.prompts)-1], nil
}

const goodDoc = `---
name: release-notes
description: Writes release notes from merged pull requests since the last tag.
allowed-capabilities:
  - Bash
---

# Release Notes

Collect merged PRs and group them by area before writing the summary.

` + "```bash\ngit log --oneline v1.0.0..HEAD\n```\n"

func newTestGenerator(t *testing.T, chatter Chatter, maxGenerations int) *Generator {
	t.Helper()
	val, err := validator.New(config.DefaultConfig().Validation)
	if err != nil {
		t.Fatalf("validator.New failed: %v", err)
	}
	return New(chatter, val, config.RetryConfig{MaxGenerations: maxGenerations}, false)
}

func intentTranscript() *conversation.Transcript {
	tr := conversation.New(0)
	tr.Append(conversation.Turn{Role: conversation.RoleUser, Content: "User intent: write release notes"})
	return tr
}

func TestGenerateStripsCodeFence(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{"```markdown\n" + goodDoc + "```"}}
	gen := newTestGenerator(t, chatter, 1)

	artifact, err := gen.Generate(context.Background(), intentTranscript(), nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if artifact.Name != "release-notes" {
		t.Errorf("name = %q", artifact.Name)
	}
}

func TestGenerateRejectsMissingFields(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		"---\nname: incomplete\n---\n\n# Body only, no description\n",
	}}
	gen := newTestGenerator(t, chatter, 1)

	_, err := gen.Generate(context.Background(), intentTranscript(), nil)
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindMalformedOutput {
		t.Fatalf("error = %v, want malformed_output", err)
	}
	if !strings.Contains(gerr.Err.Error(), "description") {
		t.Errorf("error should name the missing field: %v", gerr.Err)
	}
}

func TestGenerateRejectsUnparseableOutput(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{"Sure! Here is your skill: ..."}}
	gen := newTestGenerator(t, chatter, 1)

	_, err := gen.Generate(context.Background(), intentTranscript(), nil)
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindMalformedOutput {
		t.Fatalf("error = %v, want malformed_output", err)
	}
}

func TestRunRegeneratesWithViolationContext(t *testing.T) {
	badDoc := strings.Replace(goodDoc,
		"description: Writes release notes from merged pull requests since the last tag.",
		"description: Too short.", 1)
	chatter := &scriptedChatter{replies: []string{badDoc, goodDoc}}
	gen := newTestGenerator(t, chatter, 2)

	artifact, report, err := gen.Run(context.Background(), intentTranscript())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if artifact.Name != "release-notes" {
		t.Errorf("name = %q", artifact.Name)
	}
	if !report.OK() {
		t.Errorf("accepted report should be clean:\n%s", report)
	}

	if len(chatter.prompts) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(chatter.prompts))
	}
	second := chatter.prompts[1]
	if !strings.Contains(second, "Previous Attempt Was Rejected") {
		t.Errorf("second prompt should carry the rejection:\n%s", second)
	}
	if !strings.Contains(second, "description") {
		t.Errorf("second prompt should name the failing field:\n%s", second)
	}
}

func TestRunExhaustsGenerationBudget(t *testing.T) {
	badDoc := strings.Replace(goodDoc,
		"description: Writes release notes from merged pull requests since the last tag.",
		"description: Too short.", 1)
	chatter := &scriptedChatter{replies: []string{badDoc, badDoc}}
	gen := newTestGenerator(t, chatter, 2)

	_, _, err := gen.Run(context.Background(), intentTranscript())
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Kind != KindValidationExhausted {
		t.Fatalf("error = %v, want validation_exhausted", err)
	}
	if len(gerr.Report) == 0 {
		t.Error("exhaustion error should carry the last report")
	}
	if len(chatter.prompts) != 2 {
		t.Errorf("expected exactly 2 generation calls, got %d", len(chatter.prompts))
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{"no fence", "no fence"},
		{"```\nbody\n```", "body"},
		{"```markdown\nline one\nline two\n```", "line one\nline two"},
		{"```yaml\nonly open", "only open"},
	}
	for _, c := range cases {
		if got := stripCodeFence(c.in); got != c.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
