package lifecycle

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"product-curator/internal/models"
)

// Estados del ciclo de vida de un producto dentro de la herramienta.
// PUSHED es terminal en la práctica pero no estructuralmente: se permite
// regresar a cualquier estado anterior.
const (
	StatusRaw    = "RAW"
	StatusDraft  = "DRAFT"
	StatusReady  = "READY"
	StatusPushed = "PUSHED"
)

// statusSynonyms normaliza variantes de los feeds hacia el enum canónico.
var statusSynonyms = map[string]string{
	"raw":       StatusRaw,
	"new":       StatusRaw,
	"imported":  StatusRaw,
	"draft":     StatusDraft,
	"editing":   StatusDraft,
	"ready":     StatusReady,
	"approved":  StatusReady,
	"pushed":    StatusPushed,
	"published": StatusPushed,
}

// Normalize mapea un string arbitrario al estado canónico.
// Retorna false si no corresponde a ningún estado conocido.
func Normalize(raw string) (string, bool) {
	canonical, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return canonical, ok
}

// Valid indica si el string ya es un estado canónico en reposo.
func Valid(status string) bool {
	switch status {
	case StatusRaw, StatusDraft, StatusReady, StatusPushed:
		return true
	}
	return false
}

// CaptureOnPush evalúa el único efecto secundario de la máquina de estados:
// al entrar a PUSHED desde cualquier otro estado, o al estar en PUSHED sin
// línea base registrada, se captura el precio *actual* del producto como
// línea base de monitoreo. El precio se lee del registro existente antes de
// sobrescribir el estado, para no capturar un precio que llegue en el mismo
// request. Si el producto ya está PUSHED con línea base, re-afirmar PUSHED
// no toca nada: eso hace idempotentes los push repetidos.
//
// Retorna los campos de monitoreo a mezclar en el $set, o nil si la
// transición no dispara captura.
func CaptureOnPush(existing *models.Product, newStatus string, now time.Time) bson.M {
	if newStatus != StatusPushed {
		return nil
	}
	if existing.LifecycleStatus == StatusPushed && existing.SourceBaselinePriceKrw > 0 {
		return nil
	}

	baseline := existing.PriceKrw
	return bson.M{
		"source_baseline_price_krw":     baseline,
		"source_last_checked_price_krw": baseline,
		"source_last_checked_in_stock":  true,
		"source_last_checked_at":        now,
		"source_price_changed":          false,
		"source_out_of_stock":           false,
	}
}
