package routes

import (
	"github.com/gin-gonic/gin"

	"product-curator/internal/handlers"
)

func RegisterRoutes(router *gin.Engine, h *handlers.ProductHandler) {
	v1 := router.Group("/v1")
	{
		v1.POST("/products", h.CreateProduct)
		v1.POST("/products/bulk", h.CreateProducts)
		v1.POST("/products/bulk-status", h.BulkSetStatus)
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:locator", h.GetProduct)
		v1.PATCH("/products/:locator", h.UpdateProduct)
		v1.DELETE("/products/:locator", h.DeleteProduct)
		v1.POST("/products/:locator/visibility", h.ToggleVisibility)
		v1.GET("/products/:locator/images", h.GetImages)
		v1.GET("/products/:locator/image-suggestions", h.ImageSuggestions)
		v1.POST("/drift-check", h.RunDriftCheck)
	}
}
