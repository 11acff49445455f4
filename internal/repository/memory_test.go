package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansemenov/remindbot/internal/models"
)

func TestReindexIdempotent(t *testing.T) {
	const owner int64 = 7
	m := NewMemory()
	ctx := context.Background()

	base := time.Date(2024, time.December, 16, 9, 0, 0, 0, time.Local)
	for i, text := range []string{"first", "second", "third"} {
		r := &models.Reminder{
			OwnerID:      owner,
			Text:         text,
			RemindAt:     base.Add(time.Duration(i) * time.Hour),
			CreationDate: time.Date(2024, time.December, 16, 0, 0, 0, 0, time.Local),
			Recurrence:   models.Recurrence{Kind: models.Once},
		}
		require.NoError(t, m.Create(ctx, r))
	}

	ok, err := m.Delete(ctx, owner, 2)
	require.NoError(t, err)
	require.True(t, ok)

	first, err := m.ListByOwner(ctx, owner)
	require.NoError(t, err)

	// Renumbering an already-dense set must not move anything.
	m.reindex(owner)

	second, err := m.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, second, 2)
	assert.Equal(t, 1, second[0].LocalID)
	assert.Equal(t, "first", second[0].Text)
	assert.Equal(t, 2, second[1].LocalID)
	assert.Equal(t, "third", second[1].Text)
}
