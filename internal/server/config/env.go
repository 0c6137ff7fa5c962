package config

import (
	"os"
	"strconv"

	"github.com/dmitrijs2005/letterdesk/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv loads a dotenv file (-env-file, or ./.env when present) into the
// process environment and copies the known keys into config. Variables that
// are already set in the process win over the file.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlag(os.Args[1:]); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.GenerationAPIKey, "GENERATION_API_KEY")
	setString(&config.GenerationEndpoint, "GENERATION_ENDPOINT")
	setString(&config.GenerationModel, "GENERATION_MODEL")
	setString(&config.RedisAddr, "REDIS_ADDR")
	setString(&config.NATSURL, "NATS_URL")
	setString(&config.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&config.LogLevel, "LOG_LEVEL")
	setString(&config.HashScheme, "HASH_SCHEME")

	if v, ok := os.LookupEnv("SEED_DEMO_DATA"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.SeedDemoData = b
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
