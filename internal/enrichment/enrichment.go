package enrichment

import (
	"context"
	"strings"
)

// PhraseRequest describe el producto a convertir en frase de búsqueda.
type PhraseRequest struct {
	Title    string
	Brand    string
	Store    string
	Category string
}

// PhraseResult es la frase base y la frase lista para buscar, con los
// términos de exclusión ya anexados.
type PhraseResult struct {
	Base   string
	Search string
}

// PhraseService convierte el título libre de un producto en una frase corta
// de búsqueda en inglés. Las implementaciones remotas deben degradar al
// fallback local determinista cuando no estén disponibles.
type PhraseService interface {
	SearchPhrase(ctx context.Context, req PhraseRequest) (PhraseResult, error)
}

// ImageSearch busca imágenes por frase. Retorna URLs http(s) ordenadas;
// una lista vacía señala el fin de resultados.
type ImageSearch interface {
	Search(ctx context.Context, phrase string, pageSize, start int) ([]string, error)
}

// exclusionTerms se anexan a toda frase de búsqueda para filtrar resultados
// que no son fotos de producto.
var exclusionTerms = []string{"-review", "-unboxing", "-haul"}

// LocalPhrases es el fallback determinista: limpia el título y concatena
// marca y categoría, sin llamadas de red.
type LocalPhrases struct{}

func NewLocalPhrases() *LocalPhrases { return &LocalPhrases{} }

func (l *LocalPhrases) SearchPhrase(_ context.Context, req PhraseRequest) (PhraseResult, error) {
	base := cleanTitle(req.Title)
	if req.Brand != "" && !strings.Contains(strings.ToLower(base), strings.ToLower(req.Brand)) {
		base = req.Brand + " " + base
	}
	if base == "" {
		base = strings.TrimSpace(req.Category)
	}

	search := base
	if req.Category != "" && !strings.Contains(strings.ToLower(search), strings.ToLower(req.Category)) {
		search = search + " " + req.Category
	}
	search = strings.TrimSpace(search + " " + strings.Join(exclusionTerms, " "))

	return PhraseResult{Base: base, Search: search}, nil
}

// cleanTitle quita decoración típica de títulos de marketplace: corchetes
// promocionales, separadores repetidos y espacio sobrante.
func cleanTitle(title string) string {
	var b strings.Builder
	depth := 0
	for _, r := range title {
		switch r {
		case '[', '(', '【':
			depth++
		case ']', ')', '】':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	cleaned := b.String()
	for _, sep := range []string{"/", "|", "★", "♥"} {
		cleaned = strings.ReplaceAll(cleaned, sep, " ")
	}
	return strings.Join(strings.Fields(cleaned), " ")
}
