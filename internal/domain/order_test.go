package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_SnapshotsPrices(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := CreateOrderInput{
		CustomerID:    1,
		Products:      []OrderLine{{ProductID: 5, Quantity: 2}, {ProductID: 7, Quantity: 1}, {ProductID: 5, Quantity: 1}},
		PaymentMethod: "Cash",
	}
	prices := map[int64]decimal.Decimal{
		5: decimal.RequireFromString("150.00"),
		7: decimal.RequireFromString("99.5"),
	}

	order, err := NewOrder(in, prices, now)
	require.NoError(t, err)

	require.Equal(t, OrderStatusPending, order.Status)
	require.Equal(t, now, order.OrderDate)
	require.Len(t, order.Items, 3)
	require.True(t, order.Items[0].Subtotal.Equal(decimal.RequireFromString("300.00")))
	require.True(t, order.Items[1].Subtotal.Equal(decimal.RequireFromString("99.50")))
	require.True(t, order.TotalAmount.Equal(decimal.RequireFromString("549.50")))

	prices[5] = decimal.RequireFromString("1000")
	require.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("150")))
}

func TestNewOrder_Validation(t *testing.T) {
	_, err := NewOrder(CreateOrderInput{CustomerID: 1}, nil, time.Now())
	require.ErrorIs(t, err, ErrEmptyOrder)

	_, err = NewOrder(CreateOrderInput{CustomerID: 1, Products: []OrderLine{{ProductID: 1, Quantity: 0}}}, nil, time.Now())
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrder(CreateOrderInput{CustomerID: 1, Products: []OrderLine{{ProductID: 1, Quantity: 1}}}, map[int64]decimal.Decimal{}, time.Now())
	require.ErrorIs(t, err, ErrMissingPrice)
}

func TestNewOrder_Bounds(t *testing.T) {
	line := func(qty int) CreateOrderInput {
		return CreateOrderInput{CustomerID: 1, Products: []OrderLine{{ProductID: 1, Quantity: qty}}}
	}
	prices := map[int64]decimal.Decimal{1: decimal.RequireFromString("99999.99")}

	_, err := NewOrder(line(1_000_000), prices, time.Now())
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrder(line(MaxQuantity+1), prices, time.Now())
	require.ErrorIs(t, err, ErrInvalidQuantity)

	// 1000 x 99999.99 stays below 1e8
	order, err := NewOrder(line(MaxQuantity), prices, time.Now())
	require.NoError(t, err)
	require.Equal(t, "99999990", order.TotalAmount.String())

	prices[1] = decimal.RequireFromString("100000")
	_, err = NewOrder(line(MaxQuantity), prices, time.Now())
	require.ErrorIs(t, err, ErrOrderTotalTooLarge)

	prices[1] = decimal.RequireFromString("60000")
	two := CreateOrderInput{CustomerID: 1, Products: []OrderLine{{ProductID: 1, Quantity: 1000}, {ProductID: 1, Quantity: 1000}}}
	_, err = NewOrder(two, prices, time.Now())
	require.ErrorIs(t, err, ErrOrderTotalTooLarge)
}

func TestProduct_PriceRange(t *testing.T) {
	for _, tc := range []struct {
		price string
		ok    bool
	}{
		{"0", true},
		{"99999999.99", true},
		{"99999999.994", true},
		{"99999999.995", false},
		{"100000000", false},
		{"1e9", false},
		{"-0.01", false},
	} {
		p := Product{Price: decimal.RequireFromString(tc.price)}
		if tc.ok {
			require.NoError(t, p.Validate(), tc.price)
		} else {
			require.ErrorIs(t, p.Validate(), ErrInvalidPrice, tc.price)
		}
	}

	huge := decimal.RequireFromString("1e9")
	require.ErrorIs(t, (&UpdateProductInput{Price: &huge}).Validate(), ErrInvalidPrice)
}

func TestCreateOrderInput_ProductIDs(t *testing.T) {
	in := CreateOrderInput{Products: []OrderLine{{ProductID: 3}, {ProductID: 1}, {ProductID: 3}}}
	require.Equal(t, []int64{3, 1}, in.ProductIDs())
}

func TestOrderJSON_MoneyIsNumber(t *testing.T) {
	o := Order{ID: 1, TotalAmount: decimal.RequireFromString("300.00")}

	raw, err := json.Marshal(o)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"total_amount":300`)
	require.NotContains(t, string(raw), `"items"`)
}

func TestNewOrderCreatedEvent_Envelope(t *testing.T) {
	o := &Order{ID: 42, CustomerID: 1, TotalAmount: decimal.NewFromInt(300), Items: []OrderItem{{ProductID: 5, Quantity: 2, UnitPrice: decimal.NewFromInt(150)}}}

	event, err := NewOrderCreatedEvent(o)
	require.NoError(t, err)
	require.Equal(t, "42", event.AggregateID)
	require.Equal(t, TopicOrderEvents, event.Topic)

	var envelope EventEnvelope[OrderCreatedEvent]
	require.NoError(t, json.Unmarshal(event.Payload, &envelope))
	require.Equal(t, EventOrderCreated, envelope.Event)
	require.Equal(t, int64(42), envelope.Payload.OrderID)
	require.Len(t, envelope.Payload.Items, 1)
}

func TestDeliveryLess(t *testing.T) {
	early := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	a := &Delivery{ID: 1, AssignedTime: &early}
	b := &Delivery{ID: 2, AssignedTime: &late}
	c := &Delivery{ID: 3}
	d := &Delivery{ID: 4}

	require.True(t, DeliveryLess(b, a))
	require.True(t, DeliveryLess(a, c))
	require.True(t, DeliveryLess(d, c))
	require.False(t, DeliveryLess(c, a))
}

func TestUpdateInputs_Apply(t *testing.T) {
	name := "Tuck Shop"
	shop := Shop{ID: 1, Name: "Old", Location: "H1"}
	(&UpdateShopInput{Name: &name}).Apply(&shop)
	require.Equal(t, "Tuck Shop", shop.Name)
	require.Equal(t, "H1", shop.Location)

	price := decimal.NewFromInt(-1)
	require.ErrorIs(t, (&UpdateProductInput{Price: &price}).Validate(), ErrInvalidPrice)
	require.True(t, (&UpdateProductInput{}).IsEmpty())
}
