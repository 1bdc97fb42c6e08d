package domain

type Shop struct {
	ID            int64  `db:"shop_id" json:"shop_id"`
	Name          string `db:"name" json:"name"`
	ShopType      string `db:"shop_type" json:"shop_type"`
	Location      string `db:"location" json:"location"`
	ContactNumber string `db:"contact_number" json:"contact_number"`
	OpeningTime   string `db:"opening_time" json:"opening_time"`
	ClosingTime   string `db:"closing_time" json:"closing_time"`
	Description   string `db:"description" json:"description"`
}

type UpdateShopInput struct {
	Name          *string `json:"name"`
	ShopType      *string `json:"shop_type"`
	Location      *string `json:"location"`
	ContactNumber *string `json:"contact_number"`
	OpeningTime   *string `json:"opening_time"`
	ClosingTime   *string `json:"closing_time"`
	Description   *string `json:"description"`
}

func (in *UpdateShopInput) IsEmpty() bool {
	return in.Name == nil && in.ShopType == nil && in.Location == nil && in.ContactNumber == nil &&
		in.OpeningTime == nil && in.ClosingTime == nil && in.Description == nil
}

func (in *UpdateShopInput) Apply(s *Shop) {
	setIfPresent(&s.Name, in.Name)
	setIfPresent(&s.ShopType, in.ShopType)
	setIfPresent(&s.Location, in.Location)
	setIfPresent(&s.ContactNumber, in.ContactNumber)
	setIfPresent(&s.OpeningTime, in.OpeningTime)
	setIfPresent(&s.ClosingTime, in.ClosingTime)
	setIfPresent(&s.Description, in.Description)
}

type Category struct {
	ID          int64  `db:"category_id" json:"category_id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// DefaultCategories is the reference data every fresh store starts with.
var DefaultCategories = []Category{
	{Name: "Fast Food", Description: "Burgers, fries, wraps"},
	{Name: "Desi", Description: "Karahi, biryani, daal"},
	{Name: "Beverages", Description: "Tea, coffee, juices, shakes"},
	{Name: "Bakery", Description: "Cakes, pastries, bread"},
	{Name: "Stationery", Description: "Registers, pens, print outs"},
}
