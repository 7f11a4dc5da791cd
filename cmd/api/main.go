package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"product-curator/internal/cache"
	"product-curator/internal/config"
	"product-curator/internal/database"
	"product-curator/internal/enrichment"
	"product-curator/internal/handlers"
	"product-curator/internal/repository"
	"product-curator/internal/routes"
	"product-curator/internal/service"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to init logger:", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	client := database.Connect(cfg.MongoURI)
	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		sugar.Fatalw("failed to ensure indexes", "error", err)
	}

	products := repository.NewProductRepository(db.Collection("products"))
	images := repository.NewImageRepository(db.Collection("product_images"))
	svc := service.NewProductService(products, images, cache.New(5*time.Minute), sugar.Named("service"))

	phrases := enrichment.NewLocalPhrases()
	imageSearch := enrichment.NewHTTPImageSearch(cfg.ImageSearchURL, cfg.ImageSearchKey)
	h := handlers.NewProductHandler(svc, phrases, imageSearch)

	router := gin.Default()
	routes.RegisterRoutes(router, h)

	sugar.Infow("🚀 server running", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
