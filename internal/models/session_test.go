package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionCanTransitionTo(t *testing.T) {
	tests := []struct {
		from SessionStatus
		to   SessionStatus
		want bool
	}{
		{SessionPending, SessionConfirmed, true},
		{SessionPending, SessionCancelled, true},
		{SessionPending, SessionExpired, true},
		{SessionPending, SessionCompleted, false},
		{SessionConfirmed, SessionCompleted, true},
		{SessionConfirmed, SessionCancelled, true},
		{SessionConfirmed, SessionExpired, false},
		{SessionConfirmed, SessionPending, false},
		{SessionCompleted, SessionCancelled, false},
		{SessionCancelled, SessionConfirmed, false},
		{SessionExpired, SessionConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSessionStatusTerminal(t *testing.T) {
	assert.False(t, SessionPending.Terminal())
	assert.False(t, SessionConfirmed.Terminal())
	assert.True(t, SessionCompleted.Terminal())
	assert.True(t, SessionCancelled.Terminal())
	assert.True(t, SessionExpired.Terminal())
}

func TestEventActive(t *testing.T) {
	for _, status := range []EventStatus{EventDraft, EventScheduled, EventOngoing, EventCompleted} {
		ev := Event{Status: status}
		assert.True(t, ev.Active(), string(status))
	}
	ev := Event{Status: EventCancelled}
	assert.False(t, ev.Active())
}
