package session

import (
	"context"
	"testing"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository().(*memoryRepository)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.Error(t, repo.Save(ctx, &domain.RefreshSession{ID: "old", ExpiresAt: now}))

	require.NoError(t, repo.Save(ctx, &domain.RefreshSession{ID: "s1", UserID: 3, ExpiresAt: now.Add(time.Minute)}))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, int64(3), got.UserID)

	now = now.Add(2 * time.Minute)
	_, err = repo.Get(ctx, "s1")
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "s1"), repository.ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, &domain.RefreshSession{ID: "s2", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Delete(ctx, "s2"))
	_, err = repo.Get(ctx, "s2")
	require.ErrorIs(t, err, repository.ErrSessionNotFound)
}
