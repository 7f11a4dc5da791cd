// Package storetest provee implementaciones en memoria de los stores,
// para probar el servicio y el pipeline sin una instancia de MongoDB.
package storetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"product-curator/internal/identity"
	"product-curator/internal/lifecycle"
	"product-curator/internal/models"
	"product-curator/internal/store"
)

// MemoryProducts implementa store.ProductStore sobre un mapa. Los
// documentos se guardan como bson.M para que Update aplique los $set con
// la misma semántica de claves que la colección real.
type MemoryProducts struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]bson.M

	// FailSlugs fuerza fallas de escritura por slug, para probar el
	// conteo de errores por registro del pipeline.
	FailSlugs map[string]bool
}

func NewMemoryProducts() *MemoryProducts {
	return &MemoryProducts{
		docs: make(map[primitive.ObjectID]bson.M),
	}
}

func toDoc(p *models.Product) (bson.M, error) {
	raw, err := bson.Marshal(p)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc(doc bson.M) (*models.Product, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := bson.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *MemoryProducts) matches(doc bson.M, sel identity.Selector) bool {
	if deleted, _ := doc["is_deleted"].(bool); deleted {
		return false
	}
	if sel.ByID() {
		id, _ := doc["_id"].(primitive.ObjectID)
		return id == sel.ID()
	}
	slug, _ := doc["slug"].(string)
	return slug != "" && slug == sel.Slug()
}

func (m *MemoryProducts) Insert(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.IsDeleted = false
	if p.LifecycleStatus == "" {
		p.LifecycleStatus = lifecycle.StatusRaw
	}

	doc, err := toDoc(p)
	if err != nil {
		return err
	}
	m.docs[p.ID] = doc
	return nil
}

func (m *MemoryProducts) InsertMany(ctx context.Context, products []*models.Product) error {
	for _, p := range products {
		if err := m.Insert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryProducts) Find(_ context.Context, sel identity.Selector) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.docs {
		if m.matches(doc, sel) {
			return fromDoc(doc)
		}
	}
	return nil, store.ErrNotFound
}

func (m *MemoryProducts) FindBySlugs(_ context.Context, slugs []string) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		wanted[s] = true
	}

	var out []*models.Product
	for _, doc := range m.docs {
		if deleted, _ := doc["is_deleted"].(bool); deleted {
			continue
		}
		if slug, _ := doc["slug"].(string); wanted[slug] {
			p, err := fromDoc(doc)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryProducts) FindByLifecycleStatus(_ context.Context, status string) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Product
	for _, doc := range m.docs {
		if deleted, _ := doc["is_deleted"].(bool); deleted {
			continue
		}
		if s, _ := doc["lifecycle_status"].(string); s == status {
			p, err := fromDoc(doc)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryProducts) List(_ context.Context, opts store.ListOptions) ([]*models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Product
	for _, doc := range m.docs {
		if deleted, _ := doc["is_deleted"].(bool); deleted {
			continue
		}
		if opts.Category != "" {
			if c, _ := doc["category"].(string); c != opts.Category {
				continue
			}
		}
		if opts.LifecycleStatus != "" {
			if s, _ := doc["lifecycle_status"].(string); s != opts.LifecycleStatus {
				continue
			}
		}
		p, err := fromDoc(doc)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *MemoryProducts) Update(_ context.Context, sel identity.Selector, set bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, doc := range m.docs {
		if !m.matches(doc, sel) {
			continue
		}
		for key, value := range set {
			doc[key] = value
		}
		doc["updated_at"] = time.Now()
		m.docs[id] = doc
		return nil
	}
	return store.ErrNotFound
}

func (m *MemoryProducts) UpsertBySlug(_ context.Context, p *models.Product) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSlugs[p.Slug] {
		return false, errors.New("simulated storage failure")
	}

	incoming, err := toDoc(p)
	if err != nil {
		return false, err
	}
	// created_at, is_deleted e identidad no se tocan en un update
	delete(incoming, "_id")
	delete(incoming, "created_at")
	delete(incoming, "is_deleted")
	incoming["updated_at"] = time.Now()

	for id, doc := range m.docs {
		if slug, _ := doc["slug"].(string); slug == p.Slug {
			for key, value := range incoming {
				doc[key] = value
			}
			m.docs[id] = doc
			return false, nil
		}
	}

	newID := primitive.NewObjectID()
	incoming["_id"] = newID
	incoming["created_at"] = time.Now()
	incoming["is_deleted"] = false
	m.docs[newID] = incoming
	return true, nil
}

func (m *MemoryProducts) SoftDelete(_ context.Context, sel identity.Selector) error {
	return m.Update(context.Background(), sel, bson.M{
		"is_deleted": true,
		"deleted_at": time.Now(),
	})
}

// Count retorna el número de documentos vivos.
func (m *MemoryProducts) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, doc := range m.docs {
		if deleted, _ := doc["is_deleted"].(bool); !deleted {
			n++
		}
	}
	return n
}

// MemoryImages implementa store.ImageStore sobre un slice.
type MemoryImages struct {
	mu      sync.Mutex
	records []models.ImageRecord
}

func NewMemoryImages() *MemoryImages {
	return &MemoryImages{}
}

func (m *MemoryImages) FindByProductID(_ context.Context, productID primitive.ObjectID) ([]models.ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.ImageRecord
	for _, rec := range m.records {
		if rec.ProductID == productID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MemoryImages) DeleteByProductIDs(_ context.Context, productIDs []primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[primitive.ObjectID]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}

	var kept []models.ImageRecord
	var deleted int64
	for _, rec := range m.records {
		if wanted[rec.ProductID] {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return deleted, nil
}

func (m *MemoryImages) InsertMany(_ context.Context, images []models.ImageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, img := range images {
		img.ID = primitive.NewObjectID()
		img.CreatedAt = now
		m.records = append(m.records, img)
	}
	return nil
}

// Count retorna el total de imágenes guardadas.
func (m *MemoryImages) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
