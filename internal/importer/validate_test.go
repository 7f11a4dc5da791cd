package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-curator/internal/lifecycle"
)

func productRecord(overrides map[string]any) map[string]any {
	rec := map[string]any{
		"id":        "aaaaaaaaaaaaaaaaaaaaaaaa",
		"title":     "무선 이어폰 블루투스",
		"slug":      "wireless-earbuds",
		"price_krw": float64(30000),
	}
	for k, v := range overrides {
		rec[k] = v
	}
	return rec
}

// Escenario de referencia: slug duplicado y título vacío se cuentan por
// separado y solo queda un producto válido.
func TestValidateProductsDuplicateAndInvalid(t *testing.T) {
	records := []map[string]any{
		productRecord(map[string]any{"slug": "p-one"}),
		productRecord(map[string]any{"slug": "p-one"}), // duplicado
		productRecord(map[string]any{"title": ""}),     // inválido
	}

	valid, stats, _ := ValidateProducts(records)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Valid)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.DuplicateSlugs)
	require.Len(t, valid, 1)
	assert.Equal(t, "p-one", valid[0].Product.Slug)
}

func TestValidateProductsNormalizesEnums(t *testing.T) {
	records := []map[string]any{
		productRecord(map[string]any{"status": "Active", "lifecycle_status": "published"}),
	}

	valid, stats, _ := ValidateProducts(records)

	require.Len(t, valid, 1)
	assert.Equal(t, "publish", valid[0].Product.Status)
	assert.Equal(t, lifecycle.StatusPushed, valid[0].Product.LifecycleStatus)
	assert.Equal(t, 2, stats.NormalizedEnums)
}

func TestValidateProductsRejectsUnknownEnums(t *testing.T) {
	records := []map[string]any{
		productRecord(map[string]any{"status": "???"}),
		productRecord(map[string]any{"slug": "other", "lifecycle_status": "limbo"}),
	}

	_, stats, _ := ValidateProducts(records)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 0, stats.Valid)
}

func TestValidateProductsCoercesPrices(t *testing.T) {
	records := []map[string]any{
		productRecord(map[string]any{"price_krw": "45000.7"}),
		productRecord(map[string]any{"slug": "bad-price", "price_krw": "not-a-number"}),
	}

	valid, stats, _ := ValidateProducts(records)

	require.Len(t, valid, 1)
	assert.Equal(t, int64(45001), valid[0].Product.PriceKrw)
	assert.Equal(t, 1, stats.Skipped)
}

// El stock es de bajo riesgo: un valor inservible termina en cero en lugar
// de rechazar el registro.
func TestValidateProductsStockDefaultsToZero(t *testing.T) {
	records := []map[string]any{
		productRecord(map[string]any{"stock_quantity": "banana"}),
		productRecord(map[string]any{"slug": "neg", "stock_quantity": float64(-4)}),
	}

	valid, stats, _ := ValidateProducts(records)

	assert.Equal(t, 2, stats.Valid)
	for _, vp := range valid {
		assert.Equal(t, int64(0), vp.Product.StockQuantity)
	}
}

func TestValidateProductsFiltersListsToStrings(t *testing.T) {
	records := []map[string]any{
		productRecord(map[string]any{
			"tags":   []any{"summer", float64(3), nil, "sale"},
			"colors": "not-a-list",
		}),
	}

	valid, _, _ := ValidateProducts(records)
	require.Len(t, valid, 1)
	assert.Equal(t, []string{"summer", "sale"}, valid[0].Product.Tags)
	assert.Nil(t, valid[0].Product.Colors)
}

// Una referencia local sin forma de identificador se anula con advertencia,
// no se rechaza el registro.
func TestValidateProductsNullsBadLocalID(t *testing.T) {
	records := []map[string]any{
		productRecord(map[string]any{"id": "row-17"}),
	}

	valid, stats, warnings := ValidateProducts(records)

	assert.Equal(t, 1, stats.Valid)
	require.Len(t, valid, 1)
	assert.Empty(t, valid[0].OldID)
	assert.NotEmpty(t, warnings)
}

// Guardia del rediseño: un slug con forma hex-24 sería inalcanzable por
// slug, así que el pipeline lo rechaza antes de escribirlo.
func TestValidateProductsRejectsHexShapedSlug(t *testing.T) {
	records := []map[string]any{
		productRecord(map[string]any{"slug": "abcdefabcdefabcdefabcdef"}),
	}

	_, stats, _ := ValidateProducts(records)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Valid)
}

func TestValidateImages(t *testing.T) {
	records := []map[string]any{
		{"url": "https://cdn.example.com/a.jpg", "product_id": "aaaaaaaaaaaaaaaaaaaaaaaa"},
		{"url": "ftp://cdn.example.com/b.jpg", "product_id": "aaaaaaaaaaaaaaaaaaaaaaaa"}, // esquema inválido
		{"url": "https://cdn.example.com/c.jpg", "product_id": "row-9"},                  // ref inválida
		{"url": "", "product_id": "aaaaaaaaaaaaaaaaaaaaaaaa"},
	}

	valid, stats, _ := ValidateImages(records)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Valid)
	assert.Equal(t, 3, stats.Skipped)
	require.Len(t, valid, 1)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaa", valid[0].OldProductID)
}

// El file_id ausente se sintetiza de la URL: mismo archivo, mismo id.
func TestValidateImagesSynthesizesStableFileID(t *testing.T) {
	rec := []map[string]any{
		{"url": "https://cdn.example.com/a.jpg", "product_id": "aaaaaaaaaaaaaaaaaaaaaaaa"},
	}

	first, _, _ := ValidateImages(rec)
	second, _, _ := ValidateImages(rec)

	require.Len(t, first, 1)
	assert.Len(t, first[0].Image.FileID, 24)
	assert.Equal(t, first[0].Image.FileID, second[0].Image.FileID)
}

func TestValidateImagesKeepsSuppliedFileID(t *testing.T) {
	rec := []map[string]any{
		{"url": "https://cdn.example.com/a.jpg", "product_id": "aaaaaaaaaaaaaaaaaaaaaaaa", "file_id": "custom-id"},
	}

	valid, _, _ := ValidateImages(rec)
	require.Len(t, valid, 1)
	assert.Equal(t, "custom-id", valid[0].Image.FileID)
}
