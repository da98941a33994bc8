package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tombstoned(id, passengerID string) Reservation {
	deleted := time.Now()
	return Reservation{ID: id, PassengerID: passengerID, DeletedAt: &deleted}
}

func active(id, passengerID string) Reservation {
	return Reservation{ID: id, PassengerID: passengerID}
}

func TestDecideJoin(t *testing.T) {
	t.Run("fresh join on empty trip", func(t *testing.T) {
		decision, err := DecideJoin(3, nil, "p1")
		require.NoError(t, err)
		assert.Equal(t, JoinCreate, decision.Action)
		assert.Nil(t, decision.Existing)
	})

	t.Run("full trip rejects new passenger", func(t *testing.T) {
		history := []Reservation{active("r1", "driver"), active("r2", "p1")}
		_, err := DecideJoin(2, history, "p2")
		assert.ErrorIs(t, err, ErrTripFull)
	})

	t.Run("full trip rejects returning passenger whose row is tombstoned", func(t *testing.T) {
		// The capacity check runs against the raw active count, before the
		// passenger's own history is consulted.
		history := []Reservation{
			active("r1", "driver"),
			active("r2", "p1"),
			tombstoned("r3", "p2"),
		}
		_, err := DecideJoin(2, history, "p2")
		assert.ErrorIs(t, err, ErrTripFull)
	})

	t.Run("active passenger cannot join twice", func(t *testing.T) {
		history := []Reservation{active("r1", "driver"), active("r2", "p1")}
		_, err := DecideJoin(4, history, "p1")
		assert.ErrorIs(t, err, ErrAlreadyJoined)
	})

	t.Run("tombstoned passenger reactivates their original row", func(t *testing.T) {
		history := []Reservation{active("r1", "driver"), tombstoned("r2", "p1")}
		decision, err := DecideJoin(4, history, "p1")
		require.NoError(t, err)
		assert.Equal(t, JoinReactivate, decision.Action)
		require.NotNil(t, decision.Existing)
		assert.Equal(t, "r2", decision.Existing.ID)
	})

	t.Run("full check runs before duplicate check", func(t *testing.T) {
		history := []Reservation{active("r1", "driver"), active("r2", "p1")}
		_, err := DecideJoin(2, history, "p1")
		assert.ErrorIs(t, err, ErrTripFull)
	})

	t.Run("tombstoned rows free their seats", func(t *testing.T) {
		history := []Reservation{
			active("r1", "driver"),
			tombstoned("r2", "p1"),
			tombstoned("r3", "p2"),
		}
		decision, err := DecideJoin(2, history, "p3")
		require.NoError(t, err)
		assert.Equal(t, JoinCreate, decision.Action)
	})
}

func TestActiveCount(t *testing.T) {
	assert.Equal(t, 0, ActiveCount(nil))
	assert.Equal(t, 2, ActiveCount([]Reservation{
		active("r1", "a"),
		tombstoned("r2", "b"),
		active("r3", "c"),
	}))
}
