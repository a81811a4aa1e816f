package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minimalistnotes/internal/model"
)

func TestSession_Transitions(t *testing.T) {
	s := NewSession()
	assert.Equal(t, NoSession, s.Current().State)

	var seen []State
	s.Subscribe(func(snap Snapshot) { seen = append(seen, snap.State) })

	snap, err := s.transition(Verifying, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Verifying, snap.State)

	user := &model.User{ID: "u1"}
	snap, err = s.transition(Restored, user, nil)
	require.NoError(t, err)
	assert.Equal(t, user, snap.User)

	// Verifying is only reachable at startup.
	_, err = s.transition(Verifying, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Restored, s.Current().State)

	snap, err = s.transition(Unauthenticated, user, nil)
	require.NoError(t, err)
	assert.Nil(t, snap.User)

	assert.Equal(t, []State{Verifying, Restored, Unauthenticated}, seen)
}

func TestSession_StaleGenerationIsNoOp(t *testing.T) {
	s := NewSession()
	snap, err := s.transition(Verifying, nil, nil)
	require.NoError(t, err)
	stale := snap.Generation

	// A sign-in lands while verification is in flight.
	signedIn := &model.User{ID: "fresh"}
	_, err = s.transition(Restored, signedIn, nil)
	require.NoError(t, err)

	assert.False(t, s.IsCurrent(stale))
	snap, err = s.transitionFrom(stale, Unauthenticated, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Restored, snap.State)
	assert.Equal(t, "fresh", s.Current().User.ID)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "restored", Restored.String())
	assert.Equal(t, "state(9)", State(9).String())
}
