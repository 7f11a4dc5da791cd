package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"product-curator/internal/identity"
	"product-curator/internal/lifecycle"
	"product-curator/internal/models"
	"product-curator/internal/store"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// Insert crea un producto nuevo con identificador generado.
func (r *ProductRepository) Insert(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsDeleted = false
	if product.LifecycleStatus == "" {
		product.LifecycleStatus = lifecycle.StatusRaw
	}

	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// InsertMany crea varios productos en una sola operación.
func (r *ProductRepository) InsertMany(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now()
	docs := make([]any, 0, len(products))
	for _, p := range products {
		p.ID = primitive.NewObjectID()
		p.CreatedAt = now
		p.UpdatedAt = now
		p.IsDeleted = false
		if p.LifecycleStatus == "" {
			p.LifecycleStatus = lifecycle.StatusRaw
		}
		docs = append(docs, p)
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// Find obtiene un producto por selector (ObjectID o slug).
func (r *ProductRepository) Find(ctx context.Context, sel identity.Selector) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var product models.Product
	err := r.collection.FindOne(ctx, sel.Filter()).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// FindBySlugs obtiene los productos vivos cuyo slug esté en la lista.
func (r *ProductRepository) FindBySlugs(ctx context.Context, slugs []string) ([]*models.Product, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"slug":       bson.M{"$in": slugs},
		"is_deleted": false,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindByLifecycleStatus lista los productos vivos en un estado dado.
func (r *ProductRepository) FindByLifecycleStatus(ctx context.Context, status string) ([]*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"lifecycle_status": status,
		"is_deleted":       false,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// List lista productos con paginación y filtros.
func (r *ProductRepository) List(ctx context.Context, opts store.ListOptions) ([]*models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"is_deleted": false}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.LifecycleStatus != "" {
		filter["lifecycle_status"] = opts.LifecycleStatus
	}

	// Contar total en paralelo
	totalCh := make(chan int64, 1)
	errCh := make(chan error, 1)

	go func() {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			errCh <- err
			return
		}
		totalCh <- total
	}()

	findOptions := options.Find()
	if opts.Page > 0 && opts.PageSize > 0 {
		skip := (opts.Page - 1) * opts.PageSize
		findOptions.SetSkip(int64(skip))
		findOptions.SetLimit(int64(opts.PageSize))
	} else {
		findOptions.SetLimit(100)
	}
	findOptions.SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}

	// Esperar el conteo
	var total int64
	select {
	case total = <-totalCh:
	case err := <-errCh:
		return products, 0, err
	case <-ctx.Done():
		return products, 0, ctx.Err()
	}

	return products, total, nil
}

// Update aplica un $set ya filtrado por la política de campos.
// updated_at se agrega automáticamente en cada escritura.
func (r *ProductRepository) Update(ctx context.Context, sel identity.Selector, set bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, sel.Filter(), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpsertBySlug inserta o actualiza un producto con el slug como clave única.
// created_at solo se escribe en el insert; re-correr el importador sobre el
// mismo feed no duplica productos.
func (r *ProductRepository) UpsertBySlug(ctx context.Context, product *models.Product) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	set := upsertFields(product, now)

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"slug": product.Slug},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"created_at": now,
				"is_deleted": false,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return result.UpsertedCount > 0, nil
}

// SoftDelete marca un producto como eliminado.
func (r *ProductRepository) SoftDelete(ctx context.Context, sel identity.Selector) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, sel.Filter(), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// upsertFields arma el $set del upsert con los campos que trae el feed.
// Los campos de la tienda pública (price_krw, stock, status) sí entran aquí:
// en la importación el feed es la fuente de verdad, a diferencia de los
// parches del editor que pasan por internal/policy.
func upsertFields(p *models.Product, now time.Time) bson.M {
	set := bson.M{
		"name_org":          p.NameOrg,
		"description_org":   p.DescriptionOrg,
		"name_mn":           p.NameMn,
		"description_mn":    p.DescriptionMn,
		"brand":             p.Brand,
		"category":          p.Category,
		"sub_category":      p.SubCategory,
		"tags":              p.Tags,
		"colors":            p.Colors,
		"sizes":             p.Sizes,
		"images":            p.Images,
		"original_images":   p.OriginalImages,
		"source_store":      p.SourceStore,
		"source_url":        p.SourceURL,
		"source_product_id": p.SourceProductID,
		"lifecycle_status":  p.LifecycleStatus,
		"is_visible":        p.IsVisible,
		"status":            p.Status,
		"price_krw":         p.PriceKrw,
		"sale_price_krw":    p.SalePriceKrw,
		"stock_quantity":    p.StockQuantity,
		"updated_at":        now,
	}
	if p.Attributes != nil {
		set["attributes"] = p.Attributes
	}
	return set
}
