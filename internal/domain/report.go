package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShopSales struct {
	ShopID     int64           `json:"shop_id"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	OrderCount int64           `json:"order_count"`
	ItemsSold  int64           `json:"items_sold"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type PopularProduct struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type SalesRange struct {
	Start time.Time
	End   time.Time
}

func (r SalesRange) Validate() error {
	if r.Start.After(r.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// Contains reports whether t falls in [Start, End).
func (r SalesRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
