package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Operations(t *testing.T) {
	oud := Product{ID: "oud", Name: "Oud", Price: 5000}
	musk := Product{ID: "musk", Name: "Musk", Price: 10000, IsOnSale: true, Discount: 20}

	var c Cart
	assert.True(t, c.Empty())

	c.Add(oud)
	c.Add(oud)
	c.Add(musk)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.ItemQuantity("oud"))
	assert.Equal(t, int64(8000), c.Items[1].Price)
	assert.Equal(t, 3, c.TotalItemCount())
	assert.Equal(t, int64(18000), c.TotalPrice())

	assert.False(t, c.SetQuantity("oud", -2))
	assert.False(t, c.SetQuantity("ghost", 3))
	assert.True(t, c.SetQuantity("oud", 4))
	assert.Equal(t, int64(28000), c.TotalPrice())

	assert.True(t, c.SetQuantity("oud", 0))
	assert.Equal(t, 0, c.ItemQuantity("oud"))

	c.Remove("ghost")
	c.Remove("musk")
	assert.True(t, c.Empty())

	c.Add(oud)
	c.Clear()
	assert.Zero(t, c.TotalItemCount())
}

func TestCart_NormalizeAndOrderItems(t *testing.T) {
	c := Cart{Items: []CartItem{
		{ProductID: "a", Quantity: 1, Price: 100, Name: "A"},
		{ProductID: "b", Quantity: 0, Price: 100},
		{ProductID: "a", Quantity: 2, Price: 100},
		{ProductID: "", Quantity: 1, Price: 100},
	}}
	c.Normalize()
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	items := c.OrderItems()
	require.Len(t, items, 1)
	assert.Equal(t, OrderItem{ProductID: "a", Name: "A", Quantity: 3, Price: 100}, items[0])
}

func TestZones(t *testing.T) {
	all := Zones()
	require.Len(t, all, 3)
	assert.Equal(t, "abidjan-nord", all[0].Key)

	nord, ok := LookupZone("abidjan-nord")
	require.True(t, ok)
	fee, ok := nord.Fee(DeliveryRapid)
	assert.True(t, ok)
	assert.Equal(t, int64(2000), fee)
	assert.True(t, nord.HasArea("Cocody"))
	assert.False(t, nord.HasArea("Marcory"))

	hors, _ := LookupZone("hors-zone")
	_, ok = hors.Fee(DeliveryRapid)
	assert.False(t, ok)

	_, ok = LookupZone("lagos")
	assert.False(t, ok)
}

func TestCountdownSettings_Remaining(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s := CountdownSettings{IsActive: true, EndDate: now.Add(49*time.Hour + 30*time.Second)}
	assert.Equal(t, &RemainingTime{Days: 2, Hours: 1, Seconds: 30}, s.Remaining(now))

	s.IsActive = false
	assert.Nil(t, s.Remaining(now))

	past := CountdownSettings{IsActive: true, EndDate: now.Add(-time.Second)}
	assert.Nil(t, past.Remaining(now))

	def := DefaultCountdown(now)
	assert.Equal(t, now.Add(72*time.Hour), def.EndDate)
}

func TestPromotion_ValidateAndActive(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := Promotion{Name: "Soldes", Discount: 10, StartDate: now, EndDate: now.Add(time.Hour)}
	require.NoError(t, p.Validate())
	assert.True(t, p.ActiveAt(now))
	assert.False(t, p.ActiveAt(now.Add(time.Hour)))
	assert.False(t, p.ActiveAt(now.Add(-time.Second)))

	bad := Promotion{Discount: 0, StartDate: now, EndDate: now}
	assert.EqualError(t, bad.Validate(), "name is required; discount must be between 1 and 100; endDate must be after startDate")
}
