package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"product-curator/internal/models"
)

type ImageRepository struct {
	collection *mongo.Collection
}

func NewImageRepository(collection *mongo.Collection) *ImageRepository {
	return &ImageRepository{
		collection: collection,
	}
}

// FindByProductID lista las imágenes de un producto ordenadas por sort_order.
func (r *ImageRepository) FindByProductID(ctx context.Context, productID primitive.ObjectID) ([]models.ImageRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"product_id": productID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var images []models.ImageRecord
	if err = cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// DeleteByProductIDs borra todas las imágenes de los productos dados.
// Se usa antes de reinsertar el set completo en una re-importación.
func (r *ImageRepository) DeleteByProductIDs(ctx context.Context, productIDs []primitive.ObjectID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"product_id": bson.M{"$in": productIDs},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// InsertMany inserta el set de imágenes ya remapeado a IDs reales.
func (r *ImageRepository) InsertMany(ctx context.Context, images []models.ImageRecord) error {
	if len(images) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now()
	docs := make([]any, 0, len(images))
	for i := range images {
		images[i].ID = primitive.NewObjectID()
		images[i].CreatedAt = now
		docs = append(docs, images[i])
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
