package tracking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lastmile/internal/core/domain/model/tracking"
)

func TestSessionStatusValidate(t *testing.T) {
	valid := []tracking.SessionStatus{
		tracking.SessionAccepted,
		tracking.SessionHeadingToPickup,
		tracking.SessionArrivedAtPickup,
		tracking.SessionPickedUp,
		tracking.SessionInTransit,
		tracking.SessionArrivedAtDelivery,
		tracking.SessionDelivered,
		tracking.SessionCompleted,
		tracking.SessionCancelled,
	}
	for _, status := range valid {
		t.Run(status.String(), func(t *testing.T) {
			assert.NoError(t, status.Validate())
		})
	}

	assert.Error(t, tracking.SessionUnknown.Validate())
	assert.Error(t, tracking.SessionStatus(42).Validate())
}

func TestSessionStatusString(t *testing.T) {
	cases := map[tracking.SessionStatus]string{
		tracking.SessionAccepted:          "accepted",
		tracking.SessionHeadingToPickup:   "heading_to_pickup",
		tracking.SessionArrivedAtPickup:   "arrived_at_pickup",
		tracking.SessionPickedUp:          "picked_up",
		tracking.SessionInTransit:         "in_transit",
		tracking.SessionArrivedAtDelivery: "arrived_at_delivery",
		tracking.SessionDelivered:         "delivered",
		tracking.SessionCompleted:         "completed",
		tracking.SessionCancelled:         "cancelled",
	}
	for status, want := range cases {
		assert.Equal(t, want, status.String())
	}
}

func TestSessionStatusFromString(t *testing.T) {
	status, err := tracking.SessionStatusFromString("arrived_at_delivery")
	require.NoError(t, err)
	assert.Equal(t, tracking.SessionArrivedAtDelivery, status)

	_, err = tracking.SessionStatusFromString("teleported")
	assert.Error(t, err)
}

func TestSessionStatusProgressIsMonotonic(t *testing.T) {
	order := []tracking.SessionStatus{
		tracking.SessionAccepted,
		tracking.SessionHeadingToPickup,
		tracking.SessionArrivedAtPickup,
		tracking.SessionPickedUp,
		tracking.SessionInTransit,
		tracking.SessionArrivedAtDelivery,
		tracking.SessionDelivered,
		tracking.SessionCompleted,
	}
	prev := -1
	for _, status := range order {
		progress := status.Progress()
		assert.Greater(t, progress, prev, "progress must grow through %s", status)
		prev = progress
	}
	assert.Equal(t, 100, tracking.SessionCompleted.Progress())
	assert.Equal(t, 0, tracking.SessionCancelled.Progress())
}

func TestSessionStatusProgressIsPure(t *testing.T) {
	// Progress depends on the status alone, repeated reads never drift.
	for i := 0; i < 3; i++ {
		assert.Equal(t, 60, tracking.SessionInTransit.Progress())
	}
}

func TestSessionStatusTerminal(t *testing.T) {
	assert.True(t, tracking.SessionCompleted.IsTerminal())
	assert.True(t, tracking.SessionCancelled.IsTerminal())
	assert.False(t, tracking.SessionDelivered.IsTerminal())
	assert.False(t, tracking.SessionAccepted.IsTerminal())
}

func TestSessionStatusDeliveryPhase(t *testing.T) {
	assert.True(t, tracking.SessionArrivedAtDelivery.InDeliveryPhase())
	assert.True(t, tracking.SessionDelivered.InDeliveryPhase())
	assert.True(t, tracking.SessionCompleted.InDeliveryPhase())
	assert.False(t, tracking.SessionInTransit.InDeliveryPhase())
	assert.False(t, tracking.SessionCancelled.InDeliveryPhase())
}

func TestStatusForEvent(t *testing.T) {
	status, ok := tracking.StatusForEvent(tracking.EventPackagePickedUp)
	require.True(t, ok)
	assert.Equal(t, tracking.SessionPickedUp, status)

	status, ok = tracking.StatusForEvent(tracking.EventDeliveryCancelled)
	require.True(t, ok)
	assert.Equal(t, tracking.SessionCancelled, status)

	_, ok = tracking.StatusForEvent(tracking.EventLocationUpdated)
	assert.False(t, ok, "informational events carry no status")

	_, ok = tracking.StatusForEvent(tracking.EventIssueReported)
	assert.False(t, ok)
}
