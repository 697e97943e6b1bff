// Package generator maps a completed conversation transcript to a candidate
// skill artifact and drives the bounded generate/validate cycle.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kayz/skillforge/internal/config"
	"github.com/kayz/skillforge/internal/conversation"
	"github.com/kayz/skillforge/internal/logger"
	"github.com/kayz/skillforge/internal/skill"
	"github.com/kayz/skillforge/internal/validator"
)

// ErrorKind classifies a generation failure
type ErrorKind string

const (
	KindMalformedOutput     ErrorKind = "malformed_output"
	KindValidationExhausted ErrorKind = "validation_exhausted"
)

// Error is a terminal generation failure. For KindValidationExhausted the
// last validation report is attached so the caller can show the user what
// kept failing.
type Error struct {
	Kind   ErrorKind
	Report validator.Report
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Chatter is the slice of the conversation client the generator needs
type Chatter interface {
	Send(ctx context.Context, systemPrompt string, transcript *conversation.Transcript, newTurn conversation.Turn) (string, error)
}

// Generator turns transcripts into candidate artifacts
type Generator struct {
	client         Chatter
	validator      *validator.Validator
	maxGenerations int
	wantHooks      bool
}

// New creates a generator. maxGenerations <= 0 defaults to 2.
func New(client Chatter, val *validator.Validator, retry config.RetryConfig, wantHooks bool) *Generator {
	maxGenerations := retry.MaxGenerations
	if maxGenerations <= 0 {
		maxGenerations = 2
	}
	return &Generator{
		client:         client,
		validator:      val,
		maxGenerations: maxGenerations,
		wantHooks:      wantHooks,
	}
}

// Generate produces one candidate artifact from the transcript. When prior
// violations are supplied the backend is told to fix exactly those fields.
// A response missing a required header field is a malformed-output failure,
// never a candidate.
func (g *Generator) Generate(ctx context.Context, transcript *conversation.Transcript, prior validator.Report) (*skill.Artifact, error) {
	prompt := generatePrompt(transcript.Render(), g.wantHooks, prior)

	raw, err := g.client.Send(ctx, SystemPrompt, conversation.New(0), conversation.Turn{
		Role:    conversation.RoleUser,
		Content: prompt,
	})
	if err != nil {
		return nil, err
	}

	content := stripCodeFence(raw)

	artifact, err := skill.Parse(content)
	if err != nil {
		return nil, &Error{Kind: KindMalformedOutput, Err: err}
	}
	if missing := missingRequiredFields(artifact); len(missing) > 0 {
		return nil, &Error{
			Kind: KindMalformedOutput,
			Err:  fmt.Errorf("backend response omits required fields: %s", strings.Join(missing, ", ")),
		}
	}

	return artifact, nil
}

// Run executes the bounded generate/validate cycle and returns the accepted
// artifact together with its report (which may still carry warnings).
// Exceeding the regeneration ceiling surfaces a validation-exhausted error
// with the last report attached.
func (g *Generator) Run(ctx context.Context, transcript *conversation.Transcript) (*skill.Artifact, validator.Report, error) {
	var prior validator.Report

	for attempt := 1; attempt <= g.maxGenerations; attempt++ {
		artifact, err := g.Generate(ctx, transcript, prior)
		if err != nil {
			return nil, nil, err
		}

		report := g.validator.Validate(artifact)
		if report.OK() {
			logger.Debug("[GENERATOR] candidate accepted on attempt %d", attempt)
			return artifact, report, nil
		}

		logger.Info("[GENERATOR] candidate rejected on attempt %d: %d violation(s)",
			attempt, len(report.Failures()))
		prior = report
	}

	return nil, nil, &Error{
		Kind:   KindValidationExhausted,
		Report: prior,
		Err:    fmt.Errorf("no valid document after %d attempts", g.maxGenerations),
	}
}

func missingRequiredFields(a *skill.Artifact) []string {
	var missing []string
	if strings.TrimSpace(a.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(a.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(a.Body) == "" {
		missing = append(missing, "body")
	}
	return missing
}

// stripCodeFence removes a code fence the backend wrapped around the whole
// document despite instructions.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
