// Seeds demo merchants for local development.
// Usage: go run ./cmd/seedmerchants
package main

import (
	"context"
	"time"

	"jewelpos/internal/config"
	"jewelpos/internal/infra"
	"jewelpos/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

var demoMerchants = []model.Merchant{
	{MerchantCode: "M001", Name: "Lakshmi Jewellers", Phone: "9876543210"},
	{MerchantCode: "M002", Name: "Ganesh Gold House", Phone: "9123456780"},
	{MerchantCode: "M003", Name: "Tanishq Traders", Phone: "9988776655"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&demoMerchants)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("failed to seed merchants")
	}
	log.Info().Int64("inserted", result.RowsAffected).Int("total", len(demoMerchants)).Msg("merchants seeded")
}
