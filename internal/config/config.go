package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Data     DataConfig
	Extract  ExtractConfig
	Resolver ResolverConfig
	Offer    OfferConfig
	Ingest   IngestConfig
}

type DataConfig struct {
	// Dir holds the processed deal lists (NDJSON) and is where new
	// output files are written.
	Dir string
}

type ExtractConfig struct {
	// SchemaVersion selects the markup schema: "legacy", "v2024",
	// "v2024ext", or "auto" to probe the document.
	SchemaVersion string
}

type ResolverConfig struct {
	NameThreshold    float64
	DetailsThreshold float64
}

type OfferConfig struct {
	Region   string
	Currency string
}

type IngestConfig struct {
	APIURL string
	APIKey string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DATA_DIR", "data/processed")
	viper.SetDefault("SCHEMA_VERSION", "auto")
	viper.SetDefault("NAME_THRESHOLD", 0.85)
	viper.SetDefault("DETAILS_THRESHOLD", 0.70)
	viper.SetDefault("REGION", "US")
	viper.SetDefault("CURRENCY", "USD")
	viper.SetDefault("INGEST_API_URL", "http://localhost:8787/api/ingest")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Env: viper.GetString("APP_ENV"),
		Data: DataConfig{
			Dir: viper.GetString("DATA_DIR"),
		},
		Extract: ExtractConfig{
			SchemaVersion: viper.GetString("SCHEMA_VERSION"),
		},
		Resolver: ResolverConfig{
			NameThreshold:    viper.GetFloat64("NAME_THRESHOLD"),
			DetailsThreshold: viper.GetFloat64("DETAILS_THRESHOLD"),
		},
		Offer: OfferConfig{
			Region:   viper.GetString("REGION"),
			Currency: viper.GetString("CURRENCY"),
		},
		Ingest: IngestConfig{
			APIURL: viper.GetString("INGEST_API_URL"),
			APIKey: viper.GetString("INGEST_API_KEY"),
		},
	}
}
