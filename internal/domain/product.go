package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID           int64           `db:"product_id" json:"product_id"`
	ShopID       int64           `db:"shop_id" json:"shop_id"`
	CategoryID   *int64          `db:"category_id" json:"category_id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
	IsAvailable  bool            `db:"is_available" json:"is_available"`
	ShopName     string          `db:"shop_name" json:"shop_name,omitempty"`
	CategoryName string          `db:"category_name" json:"category_name,omitempty"`
}

func (p *Product) Validate() error {
	if !InMoneyRange(p.Price) {
		return ErrInvalidPrice
	}
	return nil
}

type UpdateProductInput struct {
	ShopID      *int64           `json:"shop_id"`
	CategoryID  *int64           `json:"category_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
}

func (in *UpdateProductInput) IsEmpty() bool {
	return in.ShopID == nil && in.CategoryID == nil && in.Name == nil &&
		in.Description == nil && in.Price == nil && in.IsAvailable == nil
}

func (in *UpdateProductInput) Validate() error {
	if in.Price != nil && !InMoneyRange(*in.Price) {
		return ErrInvalidPrice
	}
	return nil
}

func (in *UpdateProductInput) Apply(p *Product) {
	setIfPresent(&p.ShopID, in.ShopID)
	if in.CategoryID != nil {
		id := *in.CategoryID
		p.CategoryID = &id
	}
	setIfPresent(&p.Name, in.Name)
	setIfPresent(&p.Description, in.Description)
	setIfPresent(&p.Price, in.Price)
	setIfPresent(&p.IsAvailable, in.IsAvailable)
}

type ProductFilter struct {
	CategoryID *int64
	ShopID     *int64
}
