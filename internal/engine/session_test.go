package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kayz/skillforge/internal/conversation"
)

type scriptedChatter struct {
	replies []string
	err     error
	calls   int
}

func (c *scriptedChatter) Send(ctx context.Context, systemPrompt string, transcript *conversation.Transcript, newTurn conversation.Turn) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if c.calls > len(c.replies) {
		return "What else should the skill handle?", nil
	}
	return c.replies[c.calls-1], nil
}

func startTestSession(t *testing.T, chatter Chatter, maxQuestions int) *Session {
	t.Helper()
	sess, err := StartSession(Options{
		Intent:       "automate changelog generation",
		MaxQuestions: maxQuestions,
		Client:       chatter,
	})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return sess
}

func TestStartSessionRequiresIntent(t *testing.T) {
	_, err := StartSession(Options{Intent: "   ", Client: &scriptedChatter{}})
	if err == nil {
		t.Error("expected error for blank intent")
	}
}

func TestBudgetIsAuthoritative(t *testing.T) {
	// Backend never signals done; the ceiling must end the dialogue anyway.
	chatter := &scriptedChatter{}
	sess := startTestSession(t, chatter, 2)

	ctx := context.Background()
	for i := 1; i <= 2; i++ {
		prompt, err := sess.NextPrompt(ctx)
		if err != nil {
			t.Fatalf("NextPrompt %d failed: %v", i, err)
		}
		if prompt.Done {
			t.Fatalf("unexpected done on question %d", i)
		}
		if prompt.Number != i {
			t.Errorf("question number = %d, want %d", prompt.Number, i)
		}
		if err := sess.SubmitAnswer("an answer"); err != nil {
			t.Fatalf("SubmitAnswer failed: %v", err)
		}
	}

	prompt, err := sess.NextPrompt(ctx)
	if err != nil {
		t.Fatalf("final NextPrompt failed: %v", err)
	}
	if !prompt.Done {
		t.Fatal("expected forced done at budget exhaustion")
	}
	if chatter.calls != 2 {
		t.Errorf("backend calls = %d, want 2 (no call past the ceiling)", chatter.calls)
	}
	if sess.State() != StateReady {
		t.Errorf("state = %s, want ready", sess.State())
	}
}

func TestReadySentinelEndsDialogue(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		"Which package manager do you use?",
		"I have enough context now. READY_TO_GENERATE",
	}}
	sess := startTestSession(t, chatter, 5)

	ctx := context.Background()
	prompt, err := sess.NextPrompt(ctx)
	if err != nil || prompt.Done {
		t.Fatalf("first prompt: %+v, %v", prompt, err)
	}
	if err := sess.SubmitAnswer("npm"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	prompt, err = sess.NextPrompt(ctx)
	if err != nil {
		t.Fatalf("second NextPrompt failed: %v", err)
	}
	if !prompt.Done {
		t.Fatal("sentinel reply should end the dialogue")
	}

	transcript, err := sess.Transcript()
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}
	if got := transcript.Questions(); got != 1 {
		t.Errorf("questions in transcript = %d, want 1", got)
	}
	if sess.QuestionsAsked() != 1 {
		t.Errorf("QuestionsAsked = %d, want 1", sess.QuestionsAsked())
	}
}

func TestTranscriptHoldsDialogue(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		"Which formats do you need?",
		"Where should output land?",
	}}
	sess := startTestSession(t, chatter, 2)

	ctx := context.Background()
	for _, answer := range []string{"markdown", "docs/changelog.md"} {
		if _, err := sess.NextPrompt(ctx); err != nil {
			t.Fatalf("NextPrompt failed: %v", err)
		}
		if err := sess.SubmitAnswer(answer); err != nil {
			t.Fatalf("SubmitAnswer failed: %v", err)
		}
	}
	if prompt, err := sess.NextPrompt(ctx); err != nil || !prompt.Done {
		t.Fatalf("expected done, got %+v, %v", prompt, err)
	}

	transcript, err := sess.Transcript()
	if err != nil {
		t.Fatalf("Transcript failed: %v", err)
	}

	turns := transcript.Turns()
	if len(turns) != 5 {
		t.Fatalf("turns = %d, want 5 (intent + 2 question/answer pairs)", len(turns))
	}
	if !strings.HasPrefix(turns[0].Content, "User intent:") {
		t.Errorf("seed turn = %q", turns[0].Content)
	}
	if turns[4].Content != "Answer: docs/changelog.md" {
		t.Errorf("last answer = %q", turns[4].Content)
	}
}

func TestEmptyAnswerRepromptsOnceThenSkips(t *testing.T) {
	chatter := &scriptedChatter{}
	sess := startTestSession(t, chatter, 3)

	if _, err := sess.NextPrompt(context.Background()); err != nil {
		t.Fatalf("NextPrompt failed: %v", err)
	}

	if err := sess.SubmitAnswer("  "); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("first blank answer: %v, want ErrEmptyAnswer", err)
	}
	if err := sess.SubmitAnswer(""); err != nil {
		t.Fatalf("second blank answer should skip, got %v", err)
	}

	turns := sessTurns(t, sess)
	last := turns[len(turns)-1]
	if !last.Skipped {
		t.Errorf("last turn should be marked skipped: %+v", last)
	}
}

func TestSubmitAnswerWithoutQuestion(t *testing.T) {
	sess := startTestSession(t, &scriptedChatter{}, 3)
	if err := sess.SubmitAnswer("hello"); !errors.Is(err, ErrNoPendingQuestion) {
		t.Errorf("error = %v, want ErrNoPendingQuestion", err)
	}
}

func TestProviderFailureIsRecoverable(t *testing.T) {
	chatter := &scriptedChatter{err: errors.New("backend unavailable")}
	sess := startTestSession(t, chatter, 3)

	ctx := context.Background()
	if _, err := sess.NextPrompt(ctx); err == nil {
		t.Fatal("expected provider error")
	}
	if sess.State() != StateAwaitingIntent {
		t.Errorf("state after failure = %s, want awaiting_intent", sess.State())
	}

	// Same turn succeeds on retry.
	chatter.err = nil
	prompt, err := sess.RetryPrompt(ctx)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if prompt.Done || prompt.Number != 1 {
		t.Errorf("retried prompt = %+v", prompt)
	}
}

func TestAbortDiscardsSession(t *testing.T) {
	sess := startTestSession(t, &scriptedChatter{}, 3)
	sess.Abort()

	if sess.State() != StateAborted {
		t.Errorf("state = %s", sess.State())
	}
	if _, err := sess.NextPrompt(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("NextPrompt after abort = %v, want ErrSessionClosed", err)
	}
	if err := sess.SubmitAnswer("x"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("SubmitAnswer after abort = %v, want ErrSessionClosed", err)
	}
	if _, err := sess.Transcript(); err == nil {
		t.Error("Transcript after abort should fail")
	}
}

func TestParseReply(t *testing.T) {
	if q, done := parseReply("  What triggers the skill?  "); done || q != "What triggers the skill?" {
		t.Errorf("parseReply question = %q, done=%v", q, done)
	}
	if _, done := parseReply("READY_TO_GENERATE"); !done {
		t.Error("bare sentinel should signal done")
	}
	if _, done := parseReply("Great, I have what I need. READY_TO_GENERATE"); !done {
		t.Error("embedded sentinel should signal done")
	}
}

func sessTurns(t *testing.T, sess *Session) []conversation.Turn {
	t.Helper()
	return sess.transcript.Turns()
}
