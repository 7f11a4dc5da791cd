package importer

import (
	"fmt"
	"io"
	"time"
)

// ProductStats cuenta el resultado de validar el feed de productos.
// Los slugs duplicados se cuentan aparte de los demás errores.
type ProductStats struct {
	Total           int `json:"total"`
	Valid           int `json:"valid"`
	Skipped         int `json:"skipped"`
	DuplicateSlugs  int `json:"duplicate_slugs"`
	NormalizedEnums int `json:"normalized_enums"`
}

// ImageStats cuenta el resultado de validar el feed de imágenes.
type ImageStats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Skipped int `json:"skipped"`
}

// ApplyStats cuenta lo efectivamente escrito en la fase de aplicación.
type ApplyStats struct {
	ProductsCreated int   `json:"products_created"`
	ProductsUpdated int   `json:"products_updated"`
	ProductsFailed  int   `json:"products_failed"`
	ImagesDeleted   int64 `json:"images_deleted"`
	ImagesInserted  int   `json:"images_inserted"`
	ImagesFailed    int   `json:"images_failed"`
}

// Report es el contrato observable del pipeline: una corrida correcta debe
// poder auditarse desde el reporte, sin leer el almacenamiento.
type Report struct {
	RunID    string        `json:"run_id"`
	DryRun   bool          `json:"dry_run"`
	Products ProductStats  `json:"products"`
	Images   ImageStats    `json:"images"`
	Apply    *ApplyStats   `json:"apply,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Print escribe el reporte en formato legible para el operador.
func (r *Report) Print(w io.Writer) {
	mode := "apply"
	if r.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(w, "import %s (%s)\n", r.RunID, mode)
	fmt.Fprintf(w, "  products: total=%d valid=%d skipped=%d duplicate_slugs=%d normalized=%d\n",
		r.Products.Total, r.Products.Valid, r.Products.Skipped,
		r.Products.DuplicateSlugs, r.Products.NormalizedEnums)
	fmt.Fprintf(w, "  images:   total=%d valid=%d skipped=%d\n",
		r.Images.Total, r.Images.Valid, r.Images.Skipped)
	if r.Apply != nil {
		fmt.Fprintf(w, "  applied:  products created=%d updated=%d failed=%d\n",
			r.Apply.ProductsCreated, r.Apply.ProductsUpdated, r.Apply.ProductsFailed)
		fmt.Fprintf(w, "            images deleted=%d inserted=%d failed=%d\n",
			r.Apply.ImagesDeleted, r.Apply.ImagesInserted, r.Apply.ImagesFailed)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  warn: %s\n", warning)
	}
	fmt.Fprintf(w, "  elapsed: %s\n", r.Elapsed.Round(time.Millisecond))
}
