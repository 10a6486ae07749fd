// Package session holds per-call dialogue state and the store that owns it.
package session

import (
	"sync"
	"time"

	"github.com/WilliamZhang9/Call2Map/places"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Role Role
	Text string
}

// Session is the state of one active phone call. Turn history is
// append-only; location and focal place are overwritten as the
// conversation establishes new context.
type Session struct {
	ID        string // Twilio CallSid
	Caller    string // caller's number, used for SMS delivery
	CreatedAt time.Time

	// turnMu serializes whole turns for this session, so a duplicate
	// webhook delivery observes the first delivery's completed state.
	turnMu sync.Mutex

	mu            sync.Mutex
	turns         []Turn
	knownLocation string
	focalPlace    *places.Place
	lastActivity  time.Time
}

func newSession(id, caller string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Caller:       caller,
		CreatedAt:    now,
		lastActivity: now,
	}
}

// BeginTurn blocks until no other turn is in flight for this session.
func (s *Session) BeginTurn() { s.turnMu.Lock() }

// EndTurn releases the turn lock.
func (s *Session) EndTurn() { s.turnMu.Unlock() }

// AppendTurn records one history entry.
func (s *Session) AppendTurn(role Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, Turn{Role: role, Text: text})
	s.lastActivity = time.Now()
}

// Turns returns a copy of the full history.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// RecentTurns returns a copy of the most recent n history entries.
func (s *Session) RecentTurns(n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if len(s.turns) > n {
		start = len(s.turns) - n
	}
	out := make([]Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// KnownLocation returns the most recently established location, or "".
func (s *Session) KnownLocation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownLocation
}

// SetKnownLocation overwrites the established location.
func (s *Session) SetKnownLocation(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.knownLocation = location
}

// FocalPlace returns the place most recently under discussion, or nil.
func (s *Session) FocalPlace() *places.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focalPlace
}

// SetFocalPlace records the place now under discussion.
func (s *Session) SetFocalPlace(p *places.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focalPlace = p
}

// Touch updates the activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// LastActivity returns the time of the last state change.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}
