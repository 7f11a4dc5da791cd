package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"product-curator/internal/cache"
	"product-curator/internal/drift"
	"product-curator/internal/identity"
	"product-curator/internal/lifecycle"
	"product-curator/internal/models"
	"product-curator/internal/policy"
	"product-curator/internal/store"
)

// ErrInvalidStatus: el valor de lifecycle_status no corresponde al enum.
var ErrInvalidStatus = errors.New("invalid lifecycle status")

// ProductService es el único punto por el que pasa toda mutación de
// productos: edición individual, cambio masivo de estado, importación y
// visibilidad. Nada lee ni escribe el almacenamiento saltándose esta capa.
type ProductService struct {
	products store.ProductStore
	images   store.ImageStore
	cache    *cache.Cache
	log      *zap.SugaredLogger
}

func NewProductService(products store.ProductStore, images store.ImageStore, c *cache.Cache, log *zap.SugaredLogger) *ProductService {
	return &ProductService{
		products: products,
		images:   images,
		cache:    c,
		log:      log,
	}
}

// UpdateResult acompaña al producto actualizado con las claves que la
// política de campos rechazó, para la anotación de advertencia del caller.
type UpdateResult struct {
	Product        *models.Product `json:"product"`
	RejectedFields []string        `json:"rejected_fields,omitempty"`
}

// BulkResult resume una transición masiva de estado.
type BulkResult struct {
	Requested int      `json:"requested"`
	Updated   int      `json:"updated"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// DriftReport resume una corrida del chequeo de deriva.
type DriftReport struct {
	Checked      int `json:"checked"`
	PriceChanged int `json:"price_changed"`
	OutOfStock   int `json:"out_of_stock"`
	Failed       int `json:"failed"`
}

// Get obtiene un producto por locador (ObjectID o slug), con caché.
func (s *ProductService) Get(ctx context.Context, locator string) (*models.Product, error) {
	cacheKey := "product:" + locator
	if s.cache != nil {
		var cached models.Product
		if found, _ := s.cache.Unmarshal(cacheKey, &cached); found {
			return &cached, nil
		}
	}

	product, err := s.products.Find(ctx, identity.Resolve(locator))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Marshal(cacheKey, product)
	}
	return product, nil
}

// List lista productos con paginación y filtros.
func (s *ProductService) List(ctx context.Context, opts store.ListOptions) ([]*models.Product, int64, error) {
	return s.products.List(ctx, opts)
}

// Create crea un producto individual.
func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	if product.LifecycleStatus != "" && !lifecycle.Valid(product.LifecycleStatus) {
		normalized, ok := lifecycle.Normalize(product.LifecycleStatus)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, product.LifecycleStatus)
		}
		product.LifecycleStatus = normalized
	}
	if err := s.products.Insert(ctx, product); err != nil {
		return err
	}
	s.invalidateLists()
	return nil
}

// CreateMany crea varios productos de una vez.
func (s *ProductService) CreateMany(ctx context.Context, products []*models.Product) error {
	for _, p := range products {
		if p.LifecycleStatus != "" && !lifecycle.Valid(p.LifecycleStatus) {
			normalized, ok := lifecycle.Normalize(p.LifecycleStatus)
			if !ok {
				return fmt.Errorf("%w: %q", ErrInvalidStatus, p.LifecycleStatus)
			}
			p.LifecycleStatus = normalized
		}
	}
	if err := s.products.InsertMany(ctx, products); err != nil {
		return err
	}
	s.invalidateLists()
	return nil
}

// Update aplica un parche a un producto. El parche pasa por la política de
// campos (default-deny); las claves rechazadas se reportan pero no abortan
// la escritura. Si el parche cambia lifecycle_status hacia PUSHED, la línea
// base de precio se captura leyendo el registro existente *antes* de emitir
// la escritura del estado.
func (s *ProductService) Update(ctx context.Context, locator string, patch map[string]any) (*UpdateResult, error) {
	sel := identity.Resolve(locator)

	// Lectura previa: necesaria para la captura de línea base y para
	// distinguir not-found antes de filtrar el parche.
	existing, err := s.products.Find(ctx, sel)
	if err != nil {
		return nil, err
	}

	accepted, rejected := policy.Apply(patch)
	if len(rejected) > 0 {
		s.log.Warnw("patch contains protected fields, dropping",
			"locator", locator, "rejected", rejected)
	}

	if raw, ok := accepted["lifecycle_status"]; ok {
		status, _ := raw.(string)
		if !lifecycle.Valid(status) {
			normalized, ok := lifecycle.Normalize(status)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
			}
			status = normalized
			accepted["lifecycle_status"] = status
		}
		for field, value := range lifecycle.CaptureOnPush(existing, status, time.Now()) {
			accepted[field] = value
		}
	}

	if err := s.products.Update(ctx, sel, accepted); err != nil {
		return nil, err
	}

	updated, err := s.products.Find(ctx, sel)
	if err != nil {
		return nil, err
	}

	s.invalidate(updated)
	return &UpdateResult{Product: updated, RejectedFields: rejected}, nil
}

// BulkSetStatus aplica el mismo estado a muchos productos. La captura de
// línea base se evalúa por producto, porque cada uno tiene su propio precio
// pre-transición. Un registro fallido no detiene el resto.
func (s *ProductService) BulkSetStatus(ctx context.Context, locators []string, status string) (*BulkResult, error) {
	if !lifecycle.Valid(status) {
		normalized, ok := lifecycle.Normalize(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		status = normalized
	}

	result := &BulkResult{Requested: len(locators)}
	for _, locator := range locators {
		sel := identity.Resolve(locator)

		existing, err := s.products.Find(ctx, sel)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", locator, err))
			continue
		}

		set := map[string]any{"lifecycle_status": status}
		for field, value := range lifecycle.CaptureOnPush(existing, status, time.Now()) {
			set[field] = value
		}

		if err := s.products.Update(ctx, sel, set); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", locator, err))
			continue
		}

		result.Updated++
		s.invalidate(existing)
	}

	return result, nil
}

// ToggleVisibility invierte la bandera de visibilidad de un producto.
func (s *ProductService) ToggleVisibility(ctx context.Context, locator string) (*models.Product, error) {
	sel := identity.Resolve(locator)

	existing, err := s.products.Find(ctx, sel)
	if err != nil {
		return nil, err
	}

	set := map[string]any{"is_visible": !existing.IsVisible}
	if err := s.products.Update(ctx, sel, set); err != nil {
		return nil, err
	}

	updated, err := s.products.Find(ctx, sel)
	if err != nil {
		return nil, err
	}

	s.invalidate(updated)
	return updated, nil
}

// Delete marca un producto como eliminado (borrado suave).
func (s *ProductService) Delete(ctx context.Context, locator string) error {
	sel := identity.Resolve(locator)

	existing, err := s.products.Find(ctx, sel)
	if err != nil {
		return err
	}
	if err := s.products.SoftDelete(ctx, sel); err != nil {
		return err
	}

	s.invalidate(existing)
	return nil
}

// RunDriftCheckForPublished refresca los campos de monitoreo de todos los
// productos publicados, usando la simulación determinista de deriva. Los
// productos PUSHED sin línea base (nunca capturada) se omiten.
func (s *ProductService) RunDriftCheckForPublished(ctx context.Context) (*DriftReport, error) {
	published, err := s.products.FindByLifecycleStatus(ctx, lifecycle.StatusPushed)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	report := &DriftReport{}
	for _, p := range published {
		if p.SourceBaselinePriceKrw <= 0 {
			continue
		}

		result := drift.Simulate(p.ID.Hex(), p.SourceStore, p.SourceURL, p.SourceBaselinePriceKrw, now)

		set := map[string]any{
			"source_last_checked_price_krw": result.NewPriceKrw,
			"source_last_checked_in_stock":  !result.OutOfStock,
			"source_last_checked_at":        now,
			"source_price_changed":          result.PriceChanged,
			"source_out_of_stock":           result.OutOfStock,
		}

		sel := identity.Resolve(p.ID.Hex())
		if err := s.products.Update(ctx, sel, set); err != nil {
			report.Failed++
			s.log.Warnw("drift check failed", "product", p.ID.Hex(), "error", err)
			continue
		}

		report.Checked++
		if result.PriceChanged {
			report.PriceChanged++
		}
		if result.OutOfStock {
			report.OutOfStock++
		}
		s.invalidate(p)
	}

	return report, nil
}

// Images lista las imágenes importadas de un producto.
func (s *ProductService) Images(ctx context.Context, locator string) ([]models.ImageRecord, error) {
	product, err := s.products.Find(ctx, identity.Resolve(locator))
	if err != nil {
		return nil, err
	}
	return s.images.FindByProductID(ctx, product.ID)
}

// invalidate limpia las entradas de caché de un producto, por ambas formas
// de locador, más los listados.
func (s *ProductService) invalidate(p *models.Product) {
	if s.cache == nil {
		return
	}
	s.cache.Delete("product:" + p.ID.Hex())
	if p.Slug != "" {
		s.cache.Delete("product:" + p.Slug)
	}
	s.cache.DeleteByPrefix("products:list:")
}

func (s *ProductService) invalidateLists() {
	if s.cache != nil {
		s.cache.DeleteByPrefix("products:list:")
	}
}
