package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"product-curator/internal/config"
	"product-curator/internal/database"
	"product-curator/internal/importer"
	"product-curator/internal/repository"
)

func main() {
	productFeed := flag.String("products", "", "path to the product feed (JSON array)")
	imageFeed := flag.String("images", "", "path to the image feed (JSON array, optional)")
	apply := flag.Bool("apply", false, "write to storage; default is dry-run")
	concurrency := flag.Int("concurrency", 0, "upsert fan-out limit (default from IMPORT_CONCURRENCY)")
	flag.Parse()

	if *productFeed == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -products <feed.json> [-images <feed.json>] [-apply] [-concurrency N]")
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	if *concurrency <= 0 {
		*concurrency = cfg.ImportConcurrency
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to init logger:", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar().Named("importer")

	client := database.Connect(cfg.MongoURI)
	db := client.Database(cfg.MongoDB)
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		sugar.Fatalw("failed to ensure indexes", "error", err)
	}

	products := repository.NewProductRepository(db.Collection("products"))
	images := repository.NewImageRepository(db.Collection("product_images"))
	pipeline := importer.NewPipeline(products, images, sugar)

	report, err := pipeline.Run(context.Background(), importer.Options{
		ProductFeedPath: *productFeed,
		ImageFeedPath:   *imageFeed,
		Apply:           *apply,
		Concurrency:     *concurrency,
	})
	if err != nil {
		sugar.Errorw("import run failed", "error", err)
		os.Exit(1)
	}

	report.Print(os.Stdout)
}
