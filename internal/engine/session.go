// Package engine drives the bounded adaptive dialogue that gathers enough
// information to generate a skill document. The question budget is
// authoritative: the backend's own done signal is advisory and the engine
// stops asking at the ceiling no matter what the model says.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kayz/skillforge/internal/conversation"
	"github.com/kayz/skillforge/internal/generator"
	"github.com/kayz/skillforge/internal/logger"
)

// State names a session's position in the dialogue
type State string

const (
	StateAwaitingIntent State = "awaiting_intent"
	StateAwaitingAnswer State = "awaiting_answer"
	StateReady          State = "ready"
	StateAborted        State = "aborted"
)

var (
	// ErrEmptyAnswer is returned the first time a blank answer is submitted
	// for a question. The caller should re-prompt the user once; a second
	// blank submission records the question as skipped.
	ErrEmptyAnswer = errors.New("empty answer, re-prompt the user")

	// ErrNoPendingQuestion is returned when SubmitAnswer is called without
	// an outstanding question.
	ErrNoPendingQuestion = errors.New("no question awaiting an answer")

	// ErrSessionClosed is returned for calls on a session that is ready or
	// aborted.
	ErrSessionClosed = errors.New("session is no longer active")
)

// Chatter is the slice of the conversation client the engine needs
type Chatter interface {
	Send(ctx context.Context, systemPrompt string, transcript *conversation.Transcript, newTurn conversation.Turn) (string, error)
}

// Options configures one authoring session
type Options struct {
	Intent       string
	MaxQuestions int
	WantHooks    bool
	MaxTurns     int // transcript retention cap; 0 selects the default
	Client       Chatter
}

// Prompt is the engine's next instruction to the caller: either a question
// to put to the user, or the signal that the dialogue is complete.
type Prompt struct {
	Question  string
	Done      bool
	Number    int // 1-based index of this question
	Remaining int // questions left in the budget after this one
}

// Session is one bounded dialogue. It owns its transcript exclusively and
// discards it at abort; nothing is persisted.
type Session struct {
	id         string
	client     Chatter
	transcript *conversation.Transcript
	state      State

	maxQuestions int
	asked        int
	wantHooks    bool

	pending    bool
	reprompted bool
}

// StartSession captures the intent and seeds the transcript. The intent is
// immutable from here on.
func StartSession(opts Options) (*Session, error) {
	intent := strings.TrimSpace(opts.Intent)
	if intent == "" {
		return nil, fmt.Errorf("intent must not be empty")
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("conversation client is required")
	}

	maxQuestions := opts.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = 5
	}

	transcript := conversation.New(opts.MaxTurns)
	transcript.Append(conversation.Turn{
		Role:    conversation.RoleUser,
		Content: "User intent: " + intent,
	})

	s := &Session{
		id:           uuid.NewString(),
		client:       opts.Client,
		transcript:   transcript,
		state:        StateAwaitingIntent,
		maxQuestions: maxQuestions,
		wantHooks:    opts.WantHooks,
	}
	logger.Debug("[ENGINE] session %s started (max questions: %d)", s.id, maxQuestions)
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// State returns the current state
func (s *Session) State() State { return s.state }

// QuestionsAsked returns how many questions have been issued so far
func (s *Session) QuestionsAsked() int { return s.asked }

// NextPrompt advances the dialogue: it returns either the next question or
// the done signal. A provider failure leaves the session state untouched so
// the caller can retry the same turn or abort.
func (s *Session) NextPrompt(ctx context.Context) (Prompt, error) {
	switch s.state {
	case StateReady, StateAborted:
		return Prompt{}, ErrSessionClosed
	case StateAwaitingAnswer:
		if s.pending {
			return Prompt{}, fmt.Errorf("question %d is still awaiting an answer", s.asked)
		}
	}

	// Hard ceiling: at zero remaining the dialogue terminates without
	// consulting the backend.
	remaining := s.maxQuestions - s.asked
	if remaining <= 0 {
		logger.Debug("[ENGINE] session %s: budget exhausted, forcing done", s.id)
		s.state = StateReady
		return Prompt{Done: true}, nil
	}

	var instruction string
	if s.state == StateAwaitingIntent {
		instruction = firstQuestionInstruction(s.intent(), remaining, s.wantHooks)
	} else {
		instruction = followupInstruction(remaining)
	}

	reply, err := s.client.Send(ctx, generator.SystemPrompt, s.transcript, conversation.Turn{
		Role:    conversation.RoleUser,
		Content: instruction,
	})
	if err != nil {
		return Prompt{}, err
	}

	question, done := parseReply(reply)
	if done {
		s.transcript.Append(conversation.Turn{
			Role:    conversation.RoleAssistant,
			Content: reply,
			Done:    true,
		})
		s.state = StateReady
		return Prompt{Done: true}, nil
	}

	s.transcript.Append(conversation.Turn{
		Role:    conversation.RoleAssistant,
		Content: question,
	})
	s.asked++
	s.pending = true
	s.reprompted = false
	s.state = StateAwaitingAnswer

	return Prompt{
		Question:  question,
		Number:    s.asked,
		Remaining: s.maxQuestions - s.asked,
	}, nil
}

// RetryPrompt re-issues the ask that just failed with a provider error.
// The failed ask left no trace in the transcript, so this is the same
// operation as NextPrompt under a name callers can read as a retry.
func (s *Session) RetryPrompt(ctx context.Context) (Prompt, error) {
	return s.NextPrompt(ctx)
}

// SubmitAnswer records the user's answer to the outstanding question. The
// first blank answer returns ErrEmptyAnswer so the caller can re-prompt; a
// second blank answer marks the question skipped and the dialogue proceeds.
func (s *Session) SubmitAnswer(text string) error {
	if s.state == StateReady || s.state == StateAborted {
		return ErrSessionClosed
	}
	if !s.pending {
		return ErrNoPendingQuestion
	}

	text = strings.TrimSpace(text)
	if text == "" {
		if !s.reprompted {
			s.reprompted = true
			return ErrEmptyAnswer
		}
		s.transcript.Append(conversation.Turn{
			Role:    conversation.RoleUser,
			Skipped: true,
		})
		s.pending = false
		return nil
	}

	s.transcript.Append(conversation.Turn{
		Role:    conversation.RoleUser,
		Content: "Answer: " + text,
	})
	s.pending = false
	return nil
}

// Abort discards the session. The transcript and any in-progress candidate
// are dropped; nothing is persisted.
func (s *Session) Abort() {
	if s.state == StateAborted {
		return
	}
	logger.Debug("[ENGINE] session %s aborted", s.id)
	s.state = StateAborted
	s.transcript = nil
	s.pending = false
}

// Transcript hands over the completed dialogue. It is only available once
// the session is ready.
func (s *Session) Transcript() (*conversation.Transcript, error) {
	if s.state != StateReady {
		return nil, fmt.Errorf("session is not ready (state: %s)", s.state)
	}
	return s.transcript, nil
}

// WantHooks reports whether the user opted into hook authoring
func (s *Session) WantHooks() bool { return s.wantHooks }

func (s *Session) intent() string {
	turns := s.transcript.Turns()
	if len(turns) == 0 {
		return ""
	}
	return strings.TrimPrefix(turns[0].Content, "User intent: ")
}
