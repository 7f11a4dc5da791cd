package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"product-curator/internal/identity"
	"product-curator/internal/models"
)

// ErrNotFound: el locador no resolvió a ningún registro vivo.
var ErrNotFound = errors.New("product not found")

// ListOptions filtra y pagina el listado de productos.
type ListOptions struct {
	Page            int
	PageSize        int
	Category        string
	LifecycleStatus string
}

// ProductStore es el único camino hacia la colección de productos.
// El servicio de mutación y el pipeline de importación escriben siempre
// a través de estas primitivas, nunca con escrituras ad hoc.
type ProductStore interface {
	Find(ctx context.Context, sel identity.Selector) (*models.Product, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]*models.Product, error)
	FindByLifecycleStatus(ctx context.Context, status string) ([]*models.Product, error)
	List(ctx context.Context, opts ListOptions) ([]*models.Product, int64, error)
	Insert(ctx context.Context, p *models.Product) error
	InsertMany(ctx context.Context, ps []*models.Product) error
	Update(ctx context.Context, sel identity.Selector, set bson.M) error
	UpsertBySlug(ctx context.Context, p *models.Product) (created bool, err error)
	SoftDelete(ctx context.Context, sel identity.Selector) error
}

// ImageStore maneja las imágenes importadas en lote. El reemplazo por
// producto es siempre completo: borrar todo y reinsertar.
type ImageStore interface {
	FindByProductID(ctx context.Context, productID primitive.ObjectID) ([]models.ImageRecord, error)
	DeleteByProductIDs(ctx context.Context, productIDs []primitive.ObjectID) (int64, error)
	InsertMany(ctx context.Context, images []models.ImageRecord) error
}
