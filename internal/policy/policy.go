package policy

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Owner indica qué aplicación tiene permiso de escritura sobre un campo.
type Owner int

const (
	// OwnerCurator: campos que esta aplicación puede escribir.
	OwnerCurator Owner = iota
	// OwnerStorefront: campos de la tienda pública, solo lectura aquí.
	OwnerStorefront
)

// fieldOwners es la tabla declarativa campo → dueño. Agregar un campo nuevo
// de la tienda es una línea, no un cambio estructural. Cualquier clave que no
// esté en la tabla se rechaza (default-deny): un campo nuevo de la tienda que
// todavía no conocemos no puede colarse por accidente.
var fieldOwners = map[string]Owner{
	// Contenido curado
	"name_org":        OwnerCurator,
	"description_org": OwnerCurator,
	"name_mn":         OwnerCurator,
	"description_mn":  OwnerCurator,
	"brand":           OwnerCurator,
	"category":        OwnerCurator,
	"sub_category":    OwnerCurator,
	"tags":            OwnerCurator,
	"colors":          OwnerCurator,
	"sizes":           OwnerCurator,
	"attributes":      OwnerCurator,
	"images":          OwnerCurator,
	"original_images": OwnerCurator,

	// Trazabilidad y monitoreo de origen
	"source_store":                  OwnerCurator,
	"source_url":                    OwnerCurator,
	"source_product_id":             OwnerCurator,
	"source_baseline_price_krw":     OwnerCurator,
	"source_last_checked_price_krw": OwnerCurator,
	"source_last_checked_in_stock":  OwnerCurator,
	"source_last_checked_at":        OwnerCurator,
	"source_price_changed":          OwnerCurator,
	"source_out_of_stock":           OwnerCurator,

	// Ciclo de vida
	"lifecycle_status": OwnerCurator,
	"is_visible":       OwnerCurator,
	"is_deleted":       OwnerCurator,
	"deleted_at":       OwnerCurator,

	// Campos de la tienda pública
	"status":         OwnerStorefront,
	"shop_id":        OwnerStorefront,
	"price_krw":      OwnerStorefront,
	"sale_price_krw": OwnerStorefront,
	"stock_quantity": OwnerStorefront,
	"average_rating": OwnerStorefront,
	"rating_count":   OwnerStorefront,
	"total_sales":    OwnerStorefront,
	"date_created":   OwnerStorefront,
	"date_modified":  OwnerStorefront,

	// Bookkeeping: los fija el servicio, nunca el caller
	"created_at": OwnerStorefront,
	"updated_at": OwnerStorefront,
}

// identityKeys se quitan siempre del patch, sin importar la tabla.
var identityKeys = map[string]bool{
	"id":   true,
	"_id":  true,
	"slug": true,
}

// Apply filtra un patch contra la tabla de dueños. Retorna el subconjunto
// aceptado (con updated_at fresco) y la lista ordenada de claves rechazadas.
// Un rechazo parcial no es un error: la escritura continúa con lo aceptado
// y las claves rechazadas se reportan hacia arriba como advertencia.
func Apply(patch map[string]any) (bson.M, []string) {
	accepted := bson.M{}
	var rejected []string

	for key, value := range patch {
		if identityKeys[key] {
			rejected = append(rejected, key)
			continue
		}
		if owner, ok := fieldOwners[key]; !ok || owner != OwnerCurator {
			rejected = append(rejected, key)
			continue
		}
		accepted[key] = value
	}

	accepted["updated_at"] = time.Now()
	sort.Strings(rejected)
	return accepted, rejected
}

// Writable indica si un campo puede escribirse desde esta aplicación.
func Writable(field string) bool {
	if identityKeys[field] {
		return false
	}
	owner, ok := fieldOwners[field]
	return ok && owner == OwnerCurator
}
