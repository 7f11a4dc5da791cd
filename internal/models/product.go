package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product representa un producto del catálogo curado.
// El registro es compartido con la tienda pública: los campos de la tienda
// nunca se escriben desde esta aplicación (ver internal/policy).
type Product struct {
	ID   primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Slug string             `json:"slug,omitempty" bson:"slug,omitempty"`

	// Contenido curado por el operador
	NameOrg        string         `json:"name_org,omitempty" bson:"name_org,omitempty" binding:"required"`
	DescriptionOrg string         `json:"description_org,omitempty" bson:"description_org,omitempty"`
	NameMn         string         `json:"name_mn,omitempty" bson:"name_mn,omitempty"`
	DescriptionMn  string         `json:"description_mn,omitempty" bson:"description_mn,omitempty"`
	Brand          string         `json:"brand,omitempty" bson:"brand,omitempty"`
	Category       string         `json:"category,omitempty" bson:"category,omitempty"`
	SubCategory    string         `json:"sub_category,omitempty" bson:"sub_category,omitempty"`
	Tags           []string       `json:"tags,omitempty" bson:"tags,omitempty"`
	Colors         []string       `json:"colors,omitempty" bson:"colors,omitempty"`
	Sizes          []string       `json:"sizes,omitempty" bson:"sizes,omitempty"`
	Attributes     map[string]any `json:"attributes,omitempty" bson:"attributes,omitempty"`
	Images         []string       `json:"images,omitempty" bson:"images,omitempty"`
	OriginalImages []string       `json:"original_images,omitempty" bson:"original_images,omitempty"`

	// Trazabilidad de la tienda de origen
	SourceStore     string `json:"source_store,omitempty" bson:"source_store,omitempty"`
	SourceURL       string `json:"source_url,omitempty" bson:"source_url,omitempty"`
	SourceProductID string `json:"source_product_id,omitempty" bson:"source_product_id,omitempty"`

	// Monitoreo de deriva post-publicación
	SourceBaselinePriceKrw    int64      `json:"source_baseline_price_krw,omitempty" bson:"source_baseline_price_krw,omitempty"`
	SourceLastCheckedPriceKrw int64      `json:"source_last_checked_price_krw,omitempty" bson:"source_last_checked_price_krw,omitempty"`
	SourceLastCheckedInStock  bool       `json:"source_last_checked_in_stock" bson:"source_last_checked_in_stock"`
	SourceLastCheckedAt       *time.Time `json:"source_last_checked_at,omitempty" bson:"source_last_checked_at,omitempty"`
	SourcePriceChanged        bool       `json:"source_price_changed" bson:"source_price_changed"`
	SourceOutOfStock          bool       `json:"source_out_of_stock" bson:"source_out_of_stock"`

	LifecycleStatus string     `json:"lifecycle_status" bson:"lifecycle_status"`
	IsVisible       bool       `json:"is_visible" bson:"is_visible"`
	IsDeleted       bool       `json:"is_deleted" bson:"is_deleted"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`

	// Campos propiedad de la tienda pública (solo lectura aquí)
	Status        string     `json:"status,omitempty" bson:"status,omitempty"`
	ShopID        int64      `json:"shop_id,omitempty" bson:"shop_id,omitempty"`
	PriceKrw      int64      `json:"price_krw,omitempty" bson:"price_krw,omitempty"`
	SalePriceKrw  int64      `json:"sale_price_krw,omitempty" bson:"sale_price_krw,omitempty"`
	StockQuantity int64      `json:"stock_quantity,omitempty" bson:"stock_quantity,omitempty"`
	AverageRating float64    `json:"average_rating,omitempty" bson:"average_rating,omitempty"`
	RatingCount   int64      `json:"rating_count,omitempty" bson:"rating_count,omitempty"`
	TotalSales    int64      `json:"total_sales,omitempty" bson:"total_sales,omitempty"`
	DateCreated   *time.Time `json:"date_created,omitempty" bson:"date_created,omitempty"`
	DateModified  *time.Time `json:"date_modified,omitempty" bson:"date_modified,omitempty"`

	// Bookkeeping propio, lo fija el servicio en cada escritura
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ImageRecord es una imagen importada en lote, ligada a un producto.
// En cada re-importación el conjunto se reemplaza completo (delete + insert).
type ImageRecord struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	URL       string             `json:"url" bson:"url"`
	FileID    string             `json:"file_id" bson:"file_id"`
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Provider  string             `json:"provider,omitempty" bson:"provider,omitempty"`
	SortOrder int                `json:"sort_order" bson:"sort_order"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
