package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductList_Value(t *testing.T) {
	v, err := ProductList{"Blue Shirt (Qty: 2)"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["Blue Shirt (Qty: 2)"]`, v)

	v, err = ProductList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestProductList_Scan(t *testing.T) {
	var p ProductList

	require.NoError(t, p.Scan(`["A","B"]`))
	assert.Equal(t, ProductList{"A", "B"}, p)

	require.NoError(t, p.Scan([]byte(`["C"]`)))
	assert.Equal(t, ProductList{"C"}, p)

	require.NoError(t, p.Scan("not json"))
	assert.Empty(t, p)

	require.NoError(t, p.Scan(nil))
	assert.Empty(t, p)

	assert.Error(t, p.Scan(42))
}

func TestParseProductList(t *testing.T) {
	assert.Equal(t, ProductList{"Earbuds", "Case"}, ParseProductList(`["Earbuds","Case"]`))
	assert.Equal(t, ProductList{"Earbuds", "Case"}, ParseProductList(" Earbuds , Case ,, "))
	assert.Empty(t, ParseProductList(""))
}

func TestHasPhone(t *testing.T) {
	assert.True(t, HasPhone("+919876543210"))
	assert.False(t, HasPhone(""))
	assert.False(t, HasPhone("  "))
	assert.False(t, HasPhone(NoPhone))

	o := &Order{Phone: "+91999"}
	assert.True(t, o.HasPhone())
}

func TestEnumsKnown(t *testing.T) {
	assert.True(t, OrderStatusCallAgain.Known())
	assert.False(t, OrderStatus("Shipped").Known())
	assert.True(t, SourceShiprocket.Known())
	assert.False(t, Source("Amazon").Known())
	assert.True(t, DeliveryExpress.Known())
	assert.False(t, DeliveryType("").Known())
	assert.True(t, PaymentCOD.Known())
	assert.False(t, PaymentMethod("UPI").Known())
	assert.True(t, RiskMedium.Known())
	assert.False(t, RiskTier("Low").Known())
}

func TestCustomer_Helpers(t *testing.T) {
	c := &Customer{TotalOrders: 2, Tags: []string{TagLoyal}}
	assert.True(t, c.IsRepeat())
	assert.True(t, c.HasTag(TagLoyal))
	assert.False(t, c.HasTag(TagVIP))
}
