package importer

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"product-curator/internal/lifecycle"
	"product-curator/internal/models"
)

// ValidProduct es un registro de producto ya validado y normalizado.
// OldID conserva el identificador local del pipeline aun después de asignar
// el identificador real: la fase de enlace de imágenes lo necesita.
type ValidProduct struct {
	OldID   string
	Product models.Product
}

// ValidImage es un registro de imagen validado, todavía apuntando al
// identificador local del pipeline; el remapeo ocurre en la fase apply.
type ValidImage struct {
	OldProductID string
	Image        models.ImageRecord
}

// publishSynonyms normaliza el estado de publicación de la tienda.
var publishSynonyms = map[string]string{
	"publish":   "publish",
	"published": "publish",
	"active":    "publish",
	"draft":     "draft",
	"pending":   "pending",
	"private":   "private",
	"hidden":    "private",
}

// ValidateProducts valida y normaliza el feed de productos. Los slugs
// duplicados dentro del lote se cuentan aparte (gana la primera aparición).
func ValidateProducts(records []map[string]any) ([]ValidProduct, ProductStats, []string) {
	stats := ProductStats{Total: len(records)}
	var valid []ValidProduct
	var warnings []string
	seenSlugs := make(map[string]bool)

	for i, rec := range records {
		title := strings.TrimSpace(stringField(rec, "title"))
		if title == "" {
			stats.Skipped++
			warnings = append(warnings, fmt.Sprintf("product %d: empty title", i))
			continue
		}

		slug := strings.TrimSpace(stringField(rec, "slug"))
		if slug == "" {
			stats.Skipped++
			warnings = append(warnings, fmt.Sprintf("product %d: empty slug", i))
			continue
		}
		if isObjectIDShaped(slug) {
			// Un slug con forma hex-24 sería inaccesible por slug: el
			// resolvedor lo trataría siempre como ObjectID.
			stats.Skipped++
			warnings = append(warnings, fmt.Sprintf("product %d: slug %q collides with identifier shape", i, slug))
			continue
		}
		if seenSlugs[slug] {
			stats.DuplicateSlugs++
			warnings = append(warnings, fmt.Sprintf("product %d: duplicate slug %q", i, slug))
			continue
		}

		status := strings.TrimSpace(stringField(rec, "status"))
		if status != "" {
			canonical, ok := publishSynonyms[strings.ToLower(status)]
			if !ok {
				stats.Skipped++
				warnings = append(warnings, fmt.Sprintf("product %d: unknown publish status %q", i, status))
				continue
			}
			if canonical != status {
				stats.NormalizedEnums++
			}
			status = canonical
		}

		lifecycleStatus := strings.TrimSpace(stringField(rec, "lifecycle_status"))
		if lifecycleStatus == "" {
			lifecycleStatus = lifecycle.StatusRaw
		} else if !lifecycle.Valid(lifecycleStatus) {
			canonical, ok := lifecycle.Normalize(lifecycleStatus)
			if !ok {
				stats.Skipped++
				warnings = append(warnings, fmt.Sprintf("product %d: unknown lifecycle status %q", i, lifecycleStatus))
				continue
			}
			stats.NormalizedEnums++
			lifecycleStatus = canonical
		}

		price, ok := coercePrice(rec["price_krw"])
		if !ok {
			stats.Skipped++
			warnings = append(warnings, fmt.Sprintf("product %d: price_krw is not a finite number", i))
			continue
		}
		salePrice, ok := coercePrice(rec["sale_price_krw"])
		if !ok {
			stats.Skipped++
			warnings = append(warnings, fmt.Sprintf("product %d: sale_price_krw is not a finite number", i))
			continue
		}

		// El id local del pipeline es la clave a la que apuntan las
		// imágenes; si no tiene forma de identificador se anula con
		// advertencia en lugar de rechazar el registro.
		oldID := strings.TrimSpace(stringField(rec, "id"))
		if oldID != "" && !isObjectIDShaped(oldID) {
			warnings = append(warnings, fmt.Sprintf("product %d: id %q is not identifier-shaped, images cannot link to it", i, oldID))
			oldID = ""
		}

		product := models.Product{
			Slug:            slug,
			NameOrg:         title,
			DescriptionOrg:  stringField(rec, "description"),
			NameMn:          stringField(rec, "name_mn"),
			DescriptionMn:   stringField(rec, "description_mn"),
			Brand:           stringField(rec, "brand"),
			Category:        stringField(rec, "category"),
			SubCategory:     stringField(rec, "sub_category"),
			Tags:            stringList(rec["tags"]),
			Colors:          stringList(rec["colors"]),
			Sizes:           stringList(rec["sizes"]),
			Images:          stringList(rec["images"]),
			OriginalImages:  stringList(rec["original_images"]),
			SourceStore:     stringField(rec, "source_store"),
			SourceURL:       stringField(rec, "source_url"),
			SourceProductID: stringField(rec, "source_product_id"),
			LifecycleStatus: lifecycleStatus,
			Status:          status,
			PriceKrw:        price,
			SalePriceKrw:    salePrice,
			StockQuantity:   coerceStock(rec["stock_quantity"]),
			IsVisible:       boolField(rec, "is_visible"),
		}

		seenSlugs[slug] = true
		stats.Valid++
		valid = append(valid, ValidProduct{OldID: oldID, Product: product})
	}

	return valid, stats, warnings
}

// ValidateImages valida el feed de imágenes. URL y referencia de producto
// con forma de identificador son obligatorias; un file_id ausente se
// sintetiza determinísticamente a partir de la URL, para que importar el
// mismo archivo dos veces produzca el mismo identificador.
func ValidateImages(records []map[string]any) ([]ValidImage, ImageStats, []string) {
	stats := ImageStats{Total: len(records)}
	var valid []ValidImage
	var warnings []string

	for i, rec := range records {
		rawURL := strings.TrimSpace(stringField(rec, "url"))
		if !isHTTPURL(rawURL) {
			stats.Skipped++
			warnings = append(warnings, fmt.Sprintf("image %d: invalid url %q", i, rawURL))
			continue
		}

		productRef := strings.TrimSpace(stringField(rec, "product_id"))
		if !isObjectIDShaped(productRef) {
			stats.Skipped++
			warnings = append(warnings, fmt.Sprintf("image %d: product_id %q is not identifier-shaped", i, productRef))
			continue
		}

		fileID := strings.TrimSpace(stringField(rec, "file_id"))
		if fileID == "" {
			fileID = FileIDFromURL(rawURL)
		}

		image := models.ImageRecord{
			URL:       rawURL,
			FileID:    fileID,
			Provider:  stringField(rec, "provider"),
			SortOrder: int(coerceStock(rec["sort_order"])),
		}

		stats.Valid++
		valid = append(valid, ValidImage{OldProductID: productRef, Image: image})
	}

	return valid, stats, warnings
}

// FileIDFromURL deriva un identificador estable de archivo a partir de la
// URL, con la misma forma hex-24 de los identificadores generados.
func FileIDFromURL(rawURL string) string {
	sum := sha1.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:12])
}

func isObjectIDShaped(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func stringField(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func boolField(rec map[string]any, key string) bool {
	v, _ := rec[key].(bool)
	return v
}

// stringList filtra una lista a solo sus entradas string; cualquier otra
// cosa (número, null, objeto) se descarta sin rechazar el registro.
func stringList(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// coercePrice acepta números o strings numéricos. Retorna false solo cuando
// el valor presente no es un número finito; ausente vale cero.
func coercePrice(v any) (int64, bool) {
	switch value := v.(type) {
	case nil:
		return 0, true
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return int64(math.Round(value)), true
	case int:
		return int64(value), true
	case int64:
		return value, true
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return int64(math.Round(parsed)), true
	default:
		return 0, false
	}
}

// coerceStock es de bajo riesgo: cualquier valor inservible o negativo
// termina en cero en lugar de rechazar el registro.
func coerceStock(v any) int64 {
	stock, ok := coercePrice(v)
	if !ok || stock < 0 {
		return 0
	}
	return stock
}
