package mongo_test

import (
	"fmt"
	"testing"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/mongo"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/storetest"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/testsuite"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MongoStoreSuite struct {
	storetest.StoreSuite
	infra testsuite.BaseSuite
	dbNum int
}

func (s *MongoStoreSuite) SetupSuite() {
	s.infra.SetT(s.T())
	s.infra.SetupMongo()
	s.Ctx = s.infra.Ctx
}

func (s *MongoStoreSuite) TearDownSuite() {
	s.infra.TearDownInfrastructure()
}

// SetupTest gives every test a fresh database so counters start from one.
func (s *MongoStoreSuite) SetupTest() {
	s.dbNum++

	store, err := mongo.New(s.Ctx, s.infra.Mongo, fmt.Sprintf("gikihub_test_%d", s.dbNum), zap.NewNop())
	s.Require().NoError(err)
	s.Store = store
}

func TestMongoStore(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(MongoStoreSuite))
}
