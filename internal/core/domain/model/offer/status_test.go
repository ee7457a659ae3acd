package offer_test

import (
	"testing"

	"lastmile/internal/core/domain/model/offer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   offer.Status
		expected string
	}{
		{offer.StatusOpen, "open"},
		{offer.StatusAccepted, "accepted"},
		{offer.StatusPickedUp, "picked_up"},
		{offer.StatusInTransit, "in_transit"},
		{offer.StatusDelivered, "delivered"},
		{offer.StatusCompleted, "completed"},
		{offer.StatusCancelled, "cancelled"},
		{offer.StatusUnknown, "unknown"},
		{offer.Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestStatus_Validate(t *testing.T) {
	t.Run("all defined statuses are valid", func(t *testing.T) {
		for _, s := range []offer.Status{
			offer.StatusOpen, offer.StatusAccepted, offer.StatusPickedUp,
			offer.StatusInTransit, offer.StatusDelivered,
			offer.StatusCompleted, offer.StatusCancelled,
		} {
			require.NoError(t, s.Validate())
		}
	})

	t.Run("unknown and out-of-range statuses are invalid", func(t *testing.T) {
		require.Error(t, offer.StatusUnknown.Validate())
		require.Error(t, offer.Status(99).Validate())
	})
}

func TestStatus_TransitionTable(t *testing.T) {
	expected := map[offer.Status][]offer.Status{
		offer.StatusOpen:      {offer.StatusAccepted, offer.StatusCancelled},
		offer.StatusAccepted:  {offer.StatusPickedUp, offer.StatusCancelled},
		offer.StatusPickedUp:  {offer.StatusInTransit, offer.StatusCancelled},
		offer.StatusInTransit: {offer.StatusDelivered, offer.StatusCancelled},
		offer.StatusDelivered: {offer.StatusCompleted},
		offer.StatusCompleted: {},
		offer.StatusCancelled: {},
	}

	for from, targets := range expected {
		t.Run(from.String(), func(t *testing.T) {
			assert.Equal(t, targets, from.ValidTransitions())

			for _, to := range targets {
				assert.True(t, from.CanTransitionTo(to))
			}
		})
	}

	t.Run("no status may skip ahead", func(t *testing.T) {
		assert.False(t, offer.StatusOpen.CanTransitionTo(offer.StatusPickedUp))
		assert.False(t, offer.StatusOpen.CanTransitionTo(offer.StatusDelivered))
		assert.False(t, offer.StatusAccepted.CanTransitionTo(offer.StatusInTransit))
		assert.False(t, offer.StatusPickedUp.CanTransitionTo(offer.StatusDelivered))
	})

	t.Run("no status may move backwards", func(t *testing.T) {
		assert.False(t, offer.StatusAccepted.CanTransitionTo(offer.StatusOpen))
		assert.False(t, offer.StatusDelivered.CanTransitionTo(offer.StatusInTransit))
	})

	t.Run("terminal states have no exits", func(t *testing.T) {
		assert.True(t, offer.StatusCompleted.IsTerminal())
		assert.True(t, offer.StatusCancelled.IsTerminal())
		assert.Empty(t, offer.StatusCompleted.ValidTransitions())
		assert.Empty(t, offer.StatusCancelled.ValidTransitions())
		assert.False(t, offer.StatusCompleted.CanTransitionTo(offer.StatusCancelled))
		assert.False(t, offer.StatusCancelled.CanTransitionTo(offer.StatusOpen))
	})

	t.Run("non-terminal states are not terminal", func(t *testing.T) {
		for _, s := range []offer.Status{
			offer.StatusOpen, offer.StatusAccepted, offer.StatusPickedUp,
			offer.StatusInTransit, offer.StatusDelivered,
		} {
			assert.False(t, s.IsTerminal(), s.String())
		}
	})
}

func TestStatusFromString(t *testing.T) {
	t.Run("parses all wire names", func(t *testing.T) {
		for _, s := range []offer.Status{
			offer.StatusOpen, offer.StatusAccepted, offer.StatusPickedUp,
			offer.StatusInTransit, offer.StatusDelivered,
			offer.StatusCompleted, offer.StatusCancelled,
		} {
			parsed, err := offer.StatusFromString(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := offer.StatusFromString("unknown")
		require.Error(t, err)

		_, err = offer.StatusFromString("shipped")
		require.Error(t, err)

		_, err = offer.StatusFromString("")
		require.Error(t, err)
	})
}
