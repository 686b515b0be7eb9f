package warehouse_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitymask/mask"
	"entitymask/maskspec"
	"entitymask/resolve"
	"entitymask/warehouse"
)

func commerceMaterializer(t *testing.T) *mask.Materializer {
	t.Helper()

	reg := maskspec.NewRegistry()

	require.NoError(t, reg.Register(warehouse.Customer{}, &maskspec.Spec{
		Name: "Api",
		Fields: map[string]*maskspec.FieldRule{
			"PasswordHash": {Hidden: true},
		},
	}))

	require.NoError(t, reg.Register(warehouse.Product{}, &maskspec.Spec{
		Name: "Api",
		Fields: map[string]*maskspec.FieldRule{
			"PriceCents": {Rename: "Price", Converter: warehouse.PriceConverter{}},
			"Stock":      {Hidden: true},
		},
	}))

	require.NoError(t, reg.Register(warehouse.OrderItem{}, &maskspec.Spec{
		Name:        "Api",
		DeepMapping: true,
		Fields: map[string]*maskspec.FieldRule{
			"UnitCents": {Rename: "UnitPrice", Converter: warehouse.PriceConverter{}},
		},
	}))

	require.NoError(t, reg.Register(warehouse.Order{}, &maskspec.Spec{
		Name:        "Api",
		DeepMapping: true,
	}))

	return mask.New(resolve.New(reg))
}

func sampleOrder() *warehouse.Order {
	placed := time.Date(2024, time.July, 4, 12, 0, 0, 0, time.UTC)

	return &warehouse.Order{
		ID:         100,
		Number:     "ORD-100",
		Status:     "paid",
		TotalCents: 4398,
		Customer: warehouse.Customer{
			ID: 1, FirstName: "Ada", LastName: "Lovelace",
			Email: "ada@example.com", PasswordHash: "secret",
		},
		Items: []warehouse.OrderItem{
			{ID: 1, Quantity: 2, UnitCents: 1999, Product: warehouse.Product{ID: 7, SKU: "BK-1", Name: "Notebook", PriceCents: 2199}},
			{ID: 2, Quantity: 1, UnitCents: 400, Product: warehouse.Product{ID: 8, SKU: "PN-2", Name: "Pen", PriceCents: 400}},
		},
		ShippingAddress: warehouse.Address{Street: "1 Main St", City: "London", PostalCode: "E1", Country: "UK"},
		PlacedAt:        &placed,
	}
}

func TestPriceConverterRoundTrip(t *testing.T) {
	conv := warehouse.PriceConverter{}

	view, err := conv.ToView(int64(1999))
	require.NoError(t, err)
	assert.Equal(t, "19.99", view)

	view, err = conv.ToView(int64(-250))
	require.NoError(t, err)
	assert.Equal(t, "-2.50", view)

	cents, err := conv.ToEntity("19.99")
	require.NoError(t, err)
	assert.Equal(t, int64(1999), cents)

	cents, err = conv.ToEntity("-2.50")
	require.NoError(t, err)
	assert.Equal(t, int64(-250), cents)

	_, err = conv.ToEntity("19.999")
	assert.Error(t, err)

	_, err = conv.ToEntity(42)
	assert.Error(t, err)
}

func TestTypedConverterPinsExposedType(t *testing.T) {
	m := commerceMaterializer(t)

	plan, err := m.Resolver().ResolveFor(warehouse.Product{}, "Api")
	require.NoError(t, err)

	price, ok := plan.ByExposed("Price")
	require.True(t, ok)
	assert.Equal(t, resolve.AccessConverted, price.Access)
	assert.Equal(t, reflect.TypeFor[string](), price.ExposedType)
}

func TestOrderProjection(t *testing.T) {
	m := commerceMaterializer(t)
	order := sampleOrder()

	view, err := m.Project(order, "Api")
	require.NoError(t, err)

	// Value-struct references project like pointer ones, backed by the
	// field's own storage.
	customerAny, err := view.Get("Customer")
	require.NoError(t, err)
	customer := customerAny.(*mask.Mask)

	email, err := customer.Get("Email")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)

	_, err = customer.Get("PasswordHash")
	assert.Error(t, err)

	require.NoError(t, customer.Set("Email", "ada@lovelace.dev"))
	assert.Equal(t, "ada@lovelace.dev", order.Customer.Email)

	// The item collection projects lazily through its own deep mask.
	itemsAny, err := view.Get("Items")
	require.NoError(t, err)
	items := itemsAny.(*mask.Proxy)
	require.Equal(t, 2, items.Len())

	first, err := items.At(0)
	require.NoError(t, err)

	unit, err := first.Get("UnitPrice")
	require.NoError(t, err)
	assert.Equal(t, "19.99", unit)

	productAny, err := first.Get("Product")
	require.NoError(t, err)

	price, err := productAny.(*mask.Mask).Get("Price")
	require.NoError(t, err)
	assert.Equal(t, "21.99", price)
}

func TestOrderPriceWriteThrough(t *testing.T) {
	m := commerceMaterializer(t)
	order := sampleOrder()

	view, err := m.Project(order, "Api")
	require.NoError(t, err)

	itemsAny, err := view.Get("Items")
	require.NoError(t, err)

	first, err := itemsAny.(*mask.Proxy).At(0)
	require.NoError(t, err)

	require.NoError(t, first.Set("UnitPrice", "18.50"))
	assert.Equal(t, int64(1850), order.Items[0].UnitCents)
}

func TestOrderNullableTimestamp(t *testing.T) {
	m := commerceMaterializer(t)
	order := sampleOrder()

	view, err := m.Project(order, "Api")
	require.NoError(t, err)

	require.NoError(t, view.Set("PlacedAt", nil))
	assert.Nil(t, order.PlacedAt)

	got, err := view.Get("PlacedAt")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrderAddressSnapshotApply(t *testing.T) {
	m := commerceMaterializer(t)
	src := sampleOrder()

	view, err := m.Project(src, "Api")
	require.NoError(t, err)

	target := &warehouse.Order{ID: 100, Customer: warehouse.Customer{PasswordHash: "target-secret"}}
	require.NoError(t, view.ApplyChangesTo(target))

	assert.Equal(t, src.ShippingAddress, target.ShippingAddress)
	assert.Equal(t, "ada@example.com", target.Customer.Email)
	assert.Equal(t, "target-secret", target.Customer.PasswordHash)
	require.Len(t, target.Items, 2)
	assert.Equal(t, int64(1999), target.Items[0].UnitCents)
}
