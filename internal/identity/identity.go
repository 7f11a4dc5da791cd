package identity

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Selector resuelve un locador externo a una de dos formas de búsqueda:
// por ObjectID generado o por slug humano. Exactamente una está activa.
type Selector struct {
	id   primitive.ObjectID
	slug string
	byID bool
}

// Resolve decide la forma del selector según el locador recibido.
// Un string hexadecimal de 24 caracteres siempre se trata como ObjectID;
// cualquier otra cosa es un slug. Ambigüedad conocida: un slug que cumpla
// la forma hex-24 queda inaccesible por slug (el pipeline de importación
// rechaza esos slugs al escribir, ver internal/importer).
func Resolve(locator string) Selector {
	if objID, err := primitive.ObjectIDFromHex(locator); err == nil {
		return Selector{id: objID, byID: true}
	}
	return Selector{slug: locator}
}

// ByID indica si el selector busca por identificador generado.
func (s Selector) ByID() bool { return s.byID }

// ID retorna el ObjectID resuelto; solo válido cuando ByID() es true.
func (s Selector) ID() primitive.ObjectID { return s.id }

// Slug retorna el slug resuelto; solo válido cuando ByID() es false.
func (s Selector) Slug() string { return s.slug }

// Filter construye el filtro de búsqueda, siempre excluyendo borrados.
func (s Selector) Filter() bson.M {
	if s.byID {
		return bson.M{"_id": s.id, "is_deleted": false}
	}
	return bson.M{"slug": s.slug, "is_deleted": false}
}
