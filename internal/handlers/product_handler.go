package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"product-curator/internal/enrichment"
	"product-curator/internal/models"
	"product-curator/internal/service"
	"product-curator/internal/store"
)

type ProductHandler struct {
	service *service.ProductService
	phrases enrichment.PhraseService
	images  enrichment.ImageSearch
}

func NewProductHandler(svc *service.ProductService, phrases enrichment.PhraseService, images enrichment.ImageSearch) *ProductHandler {
	return &ProductHandler{
		service: svc,
		phrases: phrases,
		images:  images,
	}
}

// CreateProduct crea un producto individual.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Create(c.Request.Context(), &product); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// CreateProducts crea varios productos en una llamada.
func (h *ProductHandler) CreateProducts(c *gin.Context) {
	var payload []models.Product
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products := make([]*models.Product, 0, len(payload))
	for i := range payload {
		products = append(products, &payload[i])
	}

	if err := h.service.CreateMany(c.Request.Context(), products); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(products)})
}

// GetProduct obtiene un producto por locador (ObjectID o slug).
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("locator"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProducts lista productos con paginación y filtros.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := h.service.List(c.Request.Context(), store.ListOptions{
		Page:            page,
		PageSize:        pageSize,
		Category:        c.Query("category"),
		LifecycleStatus: c.Query("lifecycle_status"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// UpdateProduct aplica un parche. Los campos protegidos de la tienda se
// descartan y se devuelven en rejected_fields; el resto del parche procede.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Update(c.Request.Context(), c.Param("locator"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type bulkStatusPayload struct {
	Locators []string `json:"locators" binding:"required,min=1"`
	Status   string   `json:"status" binding:"required"`
}

// BulkSetStatus aplica el mismo estado de ciclo de vida a muchos productos.
func (h *ProductHandler) BulkSetStatus(c *gin.Context) {
	var payload bulkStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.BulkSetStatus(c.Request.Context(), payload.Locators, payload.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ToggleVisibility invierte la visibilidad de un producto.
func (h *ProductHandler) ToggleVisibility(c *gin.Context) {
	product, err := h.service.ToggleVisibility(c.Request.Context(), c.Param("locator"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct hace borrado suave.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("locator")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// RunDriftCheck refresca el monitoreo de todos los productos publicados.
func (h *ProductHandler) RunDriftCheck(c *gin.Context) {
	report, err := h.service.RunDriftCheckForPublished(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetImages lista las imágenes importadas de un producto.
func (h *ProductHandler) GetImages(c *gin.Context) {
	images, err := h.service.Images(c.Request.Context(), c.Param("locator"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// ImageSuggestions genera la frase de búsqueda del producto y consulta el
// servicio de imágenes. Ambos colaboradores degradan sin romper la edición.
func (h *ProductHandler) ImageSuggestions(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("locator"))
	if err != nil {
		writeError(c, err)
		return
	}

	req := enrichment.PhraseRequest{
		Title:    product.NameOrg,
		Brand:    product.Brand,
		Store:    product.SourceStore,
		Category: product.Category,
	}
	phrase, err := h.phrases.SearchPhrase(c.Request.Context(), req)
	if err != nil {
		// El fallback local nunca falla; un servicio remoto caído degrada.
		phrase, _ = enrichment.NewLocalPhrases().SearchPhrase(c.Request.Context(), req)
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	start, _ := strconv.Atoi(c.DefaultQuery("start", "0"))
	urls, err := h.images.Search(c.Request.Context(), phrase.Search, pageSize, start)
	if err != nil {
		urls = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"phrase": phrase,
		"images": urls,
	})
}

// writeError mapea la taxonomía de errores a códigos HTTP: not-found se
// distingue del resto de fallas para el caller.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
