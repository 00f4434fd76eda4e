package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	start := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	t.Run("End then settle", func(t *testing.T) {
		s := &Session{ID: "s1", StartTime: start, Status: SessionStatusActive}
		require.NoError(t, s.End(end, nil))
		assert.Equal(t, SessionStatusCompleted, s.Status)
		assert.False(t, s.Paid)
		assert.Equal(t, end, *s.EndTime)

		require.NoError(t, s.MarkPaid())
		assert.True(t, s.Paid)

		assert.ErrorIs(t, s.MarkPaid(), ErrInvalidTransition)
		assert.ErrorIs(t, s.End(end, nil), ErrInvalidTransition)
		assert.ErrorIs(t, s.Cancel(end), ErrInvalidTransition)
	})

	t.Run("Cancel is terminal", func(t *testing.T) {
		s := &Session{ID: "s2", StartTime: start, Status: SessionStatusActive}
		require.NoError(t, s.Cancel(end))
		assert.Equal(t, SessionStatusCancelled, s.Status)

		assert.ErrorIs(t, s.MarkPaid(), ErrInvalidTransition)
		assert.ErrorIs(t, s.End(end, nil), ErrInvalidTransition)
	})

	t.Run("Active session cannot be settled", func(t *testing.T) {
		s := &Session{ID: "s3", StartTime: start, Status: SessionStatusActive}
		assert.ErrorIs(t, s.MarkPaid(), ErrInvalidTransition)
	})
}

func TestSessionHasLinkedSale(t *testing.T) {
	assert.False(t, (&Session{}).HasLinkedSale())
	assert.True(t, (&Session{LinkedSaleID: "sale-7"}).HasLinkedSale())
}
