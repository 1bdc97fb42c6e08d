package memory

import (
	"context"
	"sort"

	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/shopspring/decimal"
)

type reportRepo struct{ s *Store }

// shopLines visits every line of a non-cancelled order that sells a product of shopID.
// Callers hold s.mu.
func (s *Store) shopLines(shopID int64, visit func(o domain.Order, item domain.OrderItem)) {
	for orderID, items := range s.items {
		o := s.orders[orderID]
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		for _, item := range items {
			if s.products[item.ProductID].ShopID == shopID {
				visit(o, item)
			}
		}
	}
}

func (r reportRepo) ShopSales(_ context.Context, shopID int64, rng domain.SalesRange) (*domain.ShopSales, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.shops[shopID]; !ok {
		return nil, repository.ErrShopNotFound
	}

	sales := &domain.ShopSales{
		ShopID:     shopID,
		StartDate:  rng.Start,
		EndDate:    rng.End,
		TotalSales: decimal.Zero,
	}

	orders := make(map[int64]struct{})
	r.s.shopLines(shopID, func(o domain.Order, item domain.OrderItem) {
		if !rng.Contains(o.OrderDate) {
			return
		}
		orders[o.ID] = struct{}{}
		sales.ItemsSold += int64(item.Quantity)
		sales.TotalSales = sales.TotalSales.Add(item.Subtotal)
	})
	sales.OrderCount = int64(len(orders))
	sales.TotalSales = domain.Money(sales.TotalSales)

	return sales, nil
}

func (r reportRepo) PopularProducts(_ context.Context, shopID int64, limit int) ([]domain.PopularProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.shops[shopID]; !ok {
		return nil, repository.ErrShopNotFound
	}

	byProduct := make(map[int64]*domain.PopularProduct)
	r.s.shopLines(shopID, func(_ domain.Order, item domain.OrderItem) {
		p, ok := byProduct[item.ProductID]
		if !ok {
			p = &domain.PopularProduct{
				ProductID: item.ProductID,
				Name:      r.s.products[item.ProductID].Name,
				Revenue:   decimal.Zero,
			}
			byProduct[item.ProductID] = p
		}
		p.QuantitySold += int64(item.Quantity)
		p.Revenue = p.Revenue.Add(item.Subtotal)
	})

	products := make([]domain.PopularProduct, 0, len(byProduct))
	for _, p := range byProduct {
		p.Revenue = domain.Money(p.Revenue)
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].QuantitySold != products[j].QuantitySold {
			return products[i].QuantitySold > products[j].QuantitySold
		}
		return products[i].ProductID < products[j].ProductID
	})

	if limit >= 0 && len(products) > limit {
		products = products[:limit]
	}

	return products, nil
}
