package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore/entities"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/testutil"
)

func TestThresholdRepository_Upsert(t *testing.T) {
	t.Parallel()
	repo := NewThresholdRepository(testutil.NewTestDB(t), time.Second)

	_, err := repo.Get(t.Context(), entities.ScopeGlobal)
	require.ErrorIs(t, err, ErrThresholdNotFound)

	first, err := repo.Upsert(t.Context(), &entities.ThresholdSetting{Scope: entities.ScopeGlobal, Value: 70, Enabled: true})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.InDelta(t, 70.0, first.Value, 0.0001)

	second, err := repo.Upsert(t.Context(), &entities.ThresholdSetting{Scope: entities.ScopeGlobal, Value: 85, Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.InDelta(t, 85.0, second.Value, 0.0001)

	_, err = repo.Upsert(t.Context(), &entities.ThresholdSetting{Scope: "swimming_pool", Value: 90, Enabled: true})
	require.NoError(t, err)

	all, err := repo.List(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entities.ScopeGlobal, all[0].Scope)
	assert.Equal(t, "swimming_pool", all[1].Scope)

	_, err = repo.Upsert(t.Context(), &entities.ThresholdSetting{})
	require.ErrorIs(t, err, ErrInvalidInput)
}
