package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"product-curator/internal/models"
	"product-curator/internal/store"
)

const defaultConcurrency = 4

// Options configura una corrida del pipeline. Por defecto es dry-run:
// valida y reporta sin escribir nada.
type Options struct {
	ProductFeedPath string
	ImageFeedPath   string
	Apply           bool
	Concurrency     int
}

// Pipeline importa un feed de productos pre-scrapeado y su feed de imágenes
// asociado. Escribe solo a través de las primitivas del store, nunca con
// accesos ad hoc, y es idempotente: re-correrlo sobre el mismo feed es el
// camino de recuperación prescrito tras una falla a mitad de lote.
type Pipeline struct {
	products store.ProductStore
	images   store.ImageStore
	log      *zap.SugaredLogger
}

func NewPipeline(products store.ProductStore, images store.ImageStore, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		products: products,
		images:   images,
		log:      log,
	}
}

// Run ejecuta las dos fases: validar-y-reportar (siempre) y aplicar (solo
// con Apply=true). Los errores de I/O o de formato del feed son fatales;
// los errores por registro se cuentan y el lote continúa.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:  uuid.NewString(),
		DryRun: !opts.Apply,
	}

	productRecords, err := readFeed(opts.ProductFeedPath)
	if err != nil {
		return nil, fmt.Errorf("reading product feed: %w", err)
	}

	var imageRecords []map[string]any
	if opts.ImageFeedPath != "" {
		imageRecords, err = readFeed(opts.ImageFeedPath)
		if err != nil {
			return nil, fmt.Errorf("reading image feed: %w", err)
		}
	}

	validProducts, productStats, productWarnings := ValidateProducts(productRecords)
	validImages, imageStats, imageWarnings := ValidateImages(imageRecords)

	report.Products = productStats
	report.Images = imageStats
	report.Warnings = append(report.Warnings, productWarnings...)
	report.Warnings = append(report.Warnings, imageWarnings...)

	if !opts.Apply {
		report.Elapsed = time.Since(start)
		return report, nil
	}

	apply, err := p.apply(ctx, validProducts, validImages, opts.Concurrency)
	if err != nil {
		return nil, err
	}
	report.Apply = apply
	report.Elapsed = time.Since(start)
	return report, nil
}

// apply ejecuta la secuencia upsert → remapeo → reemplazo de imágenes.
// No hay transacción multi-documento: una caída a mitad de lote deja
// productos a medias y se recupera re-corriendo el pipeline.
func (p *Pipeline) apply(ctx context.Context, products []ValidProduct, images []ValidImage, concurrency int) (*ApplyStats, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	stats := &ApplyStats{}
	var mu sync.Mutex
	upserted := make(map[string]bool, len(products)) // slugs escritos con éxito

	// 1. Upsert por slug con fan-out acotado. Cada producto completa o
	// falla como unidad; una falla de almacenamiento cuenta y no aborta.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, vp := range products {
		vp := vp
		g.Go(func() error {
			product := vp.Product
			created, err := p.products.UpsertBySlug(gctx, &product)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.ProductsFailed++
				p.log.Warnw("upsert failed", "slug", product.Slug, "error", err)
				return nil
			}
			if created {
				stats.ProductsCreated++
			} else {
				stats.ProductsUpdated++
			}
			upserted[product.Slug] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 2. Releer los recién escritos por slug para conocer sus
	// identificadores reales y armar el mapeo id-local → id-real.
	slugs := make([]string, 0, len(upserted))
	for slug := range upserted {
		slugs = append(slugs, slug)
	}
	persisted, err := p.products.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("rereading upserted products: %w", err)
	}

	bySlug := make(map[string]primitive.ObjectID, len(persisted))
	for _, prod := range persisted {
		bySlug[prod.Slug] = prod.ID
	}

	oldToReal := make(map[string]primitive.ObjectID)
	touched := make([]primitive.ObjectID, 0, len(products))
	for _, vp := range products {
		realID, ok := bySlug[vp.Product.Slug]
		if !ok {
			continue
		}
		touched = append(touched, realID)
		if vp.OldID != "" {
			oldToReal[vp.OldID] = realID
		}
	}

	// 3. Reescribir la clave foránea de cada imagen. Una imagen cuyo
	// producto no se pudo mapear se descarta contada, nunca en silencio.
	remapped := images[:0:0]
	for _, vi := range images {
		realID, ok := oldToReal[vi.OldProductID]
		if !ok {
			stats.ImagesFailed++
			p.log.Warnw("image has no mapped product", "url", vi.Image.URL, "product_ref", vi.OldProductID)
			continue
		}
		vi.Image.ProductID = realID
		remapped = append(remapped, vi)
	}

	// 4. Reemplazo completo por producto tocado: borrar todo y reinsertar.
	// Así no quedan imágenes huérfanas de una importación anterior.
	deleted, err := p.images.DeleteByProductIDs(ctx, touched)
	if err != nil {
		return nil, fmt.Errorf("deleting previous images: %w", err)
	}
	stats.ImagesDeleted = deleted

	imageDocs := make([]models.ImageRecord, 0, len(remapped))
	for _, vi := range remapped {
		imageDocs = append(imageDocs, vi.Image)
	}
	if err := p.images.InsertMany(ctx, imageDocs); err != nil {
		return nil, fmt.Errorf("inserting images: %w", err)
	}
	stats.ImagesInserted = len(imageDocs)

	return stats, nil
}

// readFeed lee un archivo JSON con un arreglo de objetos.
func readFeed(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
