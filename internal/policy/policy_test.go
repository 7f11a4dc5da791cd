package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAcceptsOwnedFields(t *testing.T) {
	accepted, rejected := Apply(map[string]any{
		"name_mn":          "foo",
		"brand":            "acme",
		"tags":             []string{"a", "b"},
		"is_visible":       true,
		"source_url":       "https://example.com/p/1",
		"lifecycle_status": "DRAFT",
	})

	assert.Empty(t, rejected)
	assert.Equal(t, "foo", accepted["name_mn"])
	assert.Equal(t, "acme", accepted["brand"])
	assert.Equal(t, true, accepted["is_visible"])

	// Toda escritura lleva timestamp fresco
	ts, ok := accepted["updated_at"].(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), ts, time.Second)
}

func TestApplyRejectsStorefrontFields(t *testing.T) {
	accepted, rejected := Apply(map[string]any{
		"status":         "publish",
		"price_krw":      99999,
		"stock_quantity": 5,
		"total_sales":    100,
		"name_mn":        "foo",
	})

	assert.ElementsMatch(t, []string{"price_krw", "status", "stock_quantity", "total_sales"}, rejected)
	assert.Equal(t, "foo", accepted["name_mn"])
	assert.NotContains(t, accepted, "status")
	assert.NotContains(t, accepted, "price_krw")
}

// Default-deny: una clave desconocida se rechaza aunque no esté en la lista
// de protegidos, para que campos futuros de la tienda no se cuelen.
func TestApplyRejectsUnknownFields(t *testing.T) {
	accepted, rejected := Apply(map[string]any{
		"some_future_storefront_field": 1,
		"name_mn":                      "foo",
	})

	assert.Equal(t, []string{"some_future_storefront_field"}, rejected)
	assert.Contains(t, accepted, "name_mn")
}

func TestApplyAlwaysStripsIdentity(t *testing.T) {
	_, rejected := Apply(map[string]any{
		"id":   "65f1c0ffee65f1c0ffee65f1",
		"_id":  "65f1c0ffee65f1c0ffee65f1",
		"slug": "new-slug",
	})

	assert.Equal(t, []string{"_id", "id", "slug"}, rejected) // ordenadas
}

func TestApplyCallerCannotSupplyTimestamps(t *testing.T) {
	forged := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	accepted, rejected := Apply(map[string]any{
		"updated_at": forged,
		"created_at": forged,
	})

	assert.ElementsMatch(t, []string{"created_at", "updated_at"}, rejected)
	ts := accepted["updated_at"].(time.Time)
	assert.NotEqual(t, forged, ts)
}

func TestWritable(t *testing.T) {
	assert.True(t, Writable("name_mn"))
	assert.True(t, Writable("lifecycle_status"))
	assert.False(t, Writable("status"))
	assert.False(t, Writable("slug"))
	assert.False(t, Writable("unknown_field"))
}
