package provider

import "sync"

// Session accumulates request and token counters across every call made
// through a process. It is shared by concurrent authoring sessions, so all
// access goes through the mutex; each session holds a reference, not
// ownership.
type Session struct {
	mu           sync.Mutex
	requests     int64
	retries      int64
	inputTokens  int64
	outputTokens int64
}

// NewSession creates a zeroed counter set
func NewSession() *Session {
	return &Session{}
}

// RecordRequest counts one backend call and its reported token usage
func (s *Session) RecordRequest(u Usage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	s.inputTokens += int64(u.InputTokens)
	s.outputTokens += int64(u.OutputTokens)
}

// RecordRetry counts one retried call
func (s *Session) RecordRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retries++
}

// SessionStats is a point-in-time snapshot of the counters
type SessionStats struct {
	Requests     int64
	Retries      int64
	InputTokens  int64
	OutputTokens int64
}

// Stats returns a snapshot of the counters
func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStats{
		Requests:     s.requests,
		Retries:      s.retries,
		InputTokens:  s.inputTokens,
		OutputTokens: s.outputTokens,
	}
}
