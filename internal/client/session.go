package client

import (
	"errors"
	"fmt"
	"sync"

	"minimalistnotes/internal/model"
)

// State is a stage of the client session lifecycle.
type State int

const (
	NoSession State = iota
	Verifying
	Restored
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no-session"
	case Verifying:
		return "verifying"
	case Restored:
		return "restored"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when a transition is not allowed from the current state.
var ErrInvalidTransition = errors.New("invalid session transition")

// Snapshot is an immutable view of the session.
// Generation changes on every transition; work started under an older
// generation must not touch the session or the UI.
type Snapshot struct {
	State      State
	User       *model.User
	Generation uint64
	Err        error
}

// Session is the single holder of the current user.
type Session struct {
	mu        sync.Mutex
	state     State
	user      *model.User
	err       error
	gen       uint64
	listeners []func(Snapshot)
}

// NewSession returns a session in NoSession.
func NewSession() *Session {
	return &Session{}
}

// Current returns the present snapshot.
func (s *Session) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// IsCurrent reports whether gen is still the live generation.
func (s *Session) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// Subscribe registers fn to be called after every transition, in order.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// transition moves the session to a new state unconditionally (sign-in, sign-out).
func (s *Session) transition(to State, user *model.User, err error) (Snapshot, error) {
	return s.assign(nil, to, user, err)
}

// transitionFrom moves the session only if gen is still current. Restoration
// uses it so that a sign-in that happened meanwhile wins.
func (s *Session) transitionFrom(gen uint64, to State, user *model.User, err error) (Snapshot, error) {
	return s.assign(&gen, to, user, err)
}

// assign is the only place the session state is written.
func (s *Session) assign(expect *uint64, to State, user *model.User, err error) (Snapshot, error) {
	s.mu.Lock()
	if expect != nil && *expect != s.gen {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, fmt.Errorf("%w: generation %d superseded by %d", ErrInvalidTransition, *expect, snap.Generation)
	}
	if !allowed(s.state, to) {
		from := s.state
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if to != Restored {
		user = nil
	}
	s.state, s.user, s.err = to, user, err
	s.gen++
	snap := s.snapshotLocked()
	listeners := append([]func(Snapshot){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return snap, nil
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, User: s.user, Generation: s.gen, Err: s.err}
}

// Verifying only happens once, at startup. Sign-in and sign-out may happen at any time.
func allowed(from, to State) bool {
	switch to {
	case Verifying:
		return from == NoSession
	case Restored, Unauthenticated:
		return true
	default:
		return false
	}
}
