package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDB           string
	Port              string
	ImportConcurrency int
	ImageSearchURL    string
	ImageSearchKey    string
}

func LoadConfig() *Config {
	// Solo cargar .env en desarrollo local
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Error loading .env file:", err)
		}
	}

	return &Config{
		MongoURI:          getEnv("MONGO_URI", ""),
		MongoDB:           getEnv("MONGO_DB", "productCurator"),
		Port:              getEnv("PORT", "8080"),
		ImportConcurrency: getEnvInt("IMPORT_CONCURRENCY", 4),
		ImageSearchURL:    getEnv("IMAGE_SEARCH_URL", ""),
		ImageSearchKey:    getEnv("IMAGE_SEARCH_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
