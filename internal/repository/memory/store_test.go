package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/memory"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MemoryStoreSuite struct {
	storetest.StoreSuite
}

func (s *MemoryStoreSuite) SetupTest() {
	s.Ctx = context.Background()
	s.Store = memory.New(zap.NewNop())
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func TestConcurrentOrdersGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := memory.New(zap.NewNop())

	shop, err := store.Shops().Create(ctx, &domain.Shop{Name: "Tuck Shop"})
	require.NoError(t, err)
	p, err := store.Products().Create(ctx, &domain.Product{ShopID: shop.ID, Name: "Chai", Price: decimal.NewFromInt(3), IsAvailable: true})
	require.NoError(t, err)
	c, err := store.Customers().Create(ctx, &domain.Customer{FirstName: "Ali", LastName: "Raza"})
	require.NoError(t, err)

	const n = 50
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[int64]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			o, err := store.Orders().CreateOrder(ctx, domain.CreateOrderInput{
				CustomerID: c.ID,
				Products:   []domain.OrderLine{{ProductID: p.ID, Quantity: 1}},
			})
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			ids[o.ID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, ids, n)

	deliveries, err := store.Deliveries().List(ctx, domain.DeliveryFilter{})
	require.NoError(t, err)
	require.Len(t, deliveries, n)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.New(zap.NewNop())

	shop, err := store.Shops().Create(ctx, &domain.Shop{Name: "Tuck Shop"})
	require.NoError(t, err)

	shop.Name = "Changed"

	got, err := store.Shops().GetByID(ctx, shop.ID)
	require.NoError(t, err)
	require.Equal(t, "Tuck Shop", got.Name)
}
