package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/session"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/testsuite"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type SessionSuite struct {
	testsuite.BaseSuite
	repo session.SessionRepository
}

func (s *SessionSuite) SetupSuite() {
	s.Ctx = context.Background()
	s.SetupRedis()
	s.repo = session.NewSessionRepository(s.Redis, zap.NewNop())
}

func (s *SessionSuite) TearDownSuite() {
	s.TearDownInfrastructure()
}

func (s *SessionSuite) SetupTest() {
	s.Require().NoError(s.Redis.FlushDB(s.Ctx).Err())
}

func (s *SessionSuite) TestSaveGetDelete() {
	in := &domain.RefreshSession{
		ID:        "abc",
		UserID:    7,
		Role:      domain.UserRoleStudent,
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	s.Require().NoError(s.repo.Save(s.Ctx, in))

	got, err := s.repo.Get(s.Ctx, "abc")
	s.Require().NoError(err)
	s.Equal(int64(7), got.UserID)
	s.Equal(domain.UserRoleStudent, got.Role)
	s.True(in.ExpiresAt.Equal(got.ExpiresAt))

	ttl, err := s.Redis.TTL(s.Ctx, "session:abc").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)

	s.Require().NoError(s.repo.Delete(s.Ctx, "abc"))

	_, err = s.repo.Get(s.Ctx, "abc")
	s.ErrorIs(err, repository.ErrSessionNotFound)
	s.ErrorIs(s.repo.Delete(s.Ctx, "abc"), repository.ErrSessionNotFound)
}

func (s *SessionSuite) TestSaveRejectsExpired() {
	err := s.repo.Save(s.Ctx, &domain.RefreshSession{ID: "old", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)})
	s.Error(err)

	_, err = s.repo.Get(s.Ctx, "old")
	s.ErrorIs(err, repository.ErrSessionNotFound)
}

func TestSessionRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(SessionSuite))
}
