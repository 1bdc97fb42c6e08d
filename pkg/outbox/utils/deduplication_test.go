package utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/outbox/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/testsuite"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type DedupSuite struct {
	testsuite.BaseSuite
}

func (s *DedupSuite) SetupSuite() {
	s.Ctx = context.Background()
	s.SetupPostgres("../../../migrations")
	s.SetupRedis()
}

func (s *DedupSuite) TearDownSuite() {
	s.TearDownInfrastructure()
}

func (s *DedupSuite) SetupTest() {
	s.TruncateTable("processed_events")
	s.Require().NoError(s.Redis.FlushDB(s.Ctx).Err())
}

func (s *DedupSuite) deduplicators() map[string]utils.Deduplicator {
	return map[string]utils.Deduplicator{
		"postgres": utils.NewPostgresDeduplicator(s.DbPool, zap.NewNop()),
		"redis":    utils.NewRedisDeduplicator(s.Redis, zap.NewNop(), time.Hour),
	}
}

func (s *DedupSuite) TestRunsOncePerEvent() {
	for name, d := range s.deduplicators() {
		s.Run(name, func() {
			calls := 0
			action := func() error { calls++; return nil }

			s.Require().NoError(d.ProcessOnce(s.Ctx, 1, action))
			s.Require().NoError(d.ProcessOnce(s.Ctx, 1, action))
			s.Require().NoError(d.ProcessOnce(s.Ctx, 2, action))

			s.Equal(2, calls)
		})
	}
}

func (s *DedupSuite) TestFailedActionIsRetriedThenReleased() {
	for name, d := range s.deduplicators() {
		s.Run(name, func() {
			boom := errors.New("smtp down")
			calls := 0

			err := d.ProcessOnce(s.Ctx, 7, func() error { calls++; return boom })
			s.Require().ErrorIs(err, boom)
			s.Equal(3, calls)

			calls = 0
			s.Require().NoError(d.ProcessOnce(s.Ctx, 7, func() error { calls++; return nil }))
			s.Equal(1, calls)
		})
	}
}

func (s *DedupSuite) TestPostgresRecordsProcessedEvent() {
	s.Require().NoError(utils.ProcessWithDeduplication(s.Ctx, s.DbPool, zap.NewNop(), 42, func() error { return nil }))

	var n int
	s.Require().NoError(s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM processed_events WHERE event_id = 42`).Scan(&n))
	s.Equal(1, n)
}

func TestDeduplication(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	suite.Run(t, new(DedupSuite))
}
