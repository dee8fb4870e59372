// Seeds a development database with demo categories, products and a working
// shipping configuration. Safe to run repeatedly only against throwaway
// databases; it does not check for existing rows.
package main

import (
	"context"
	"flag"
	"time"

	"kaluste-backend/config"
	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/generator"
	"kaluste-backend/internal/repository/postgres"
	"kaluste-backend/pkg/logger"

	"github.com/brianvoe/gofakeit/v6"
)

func main() {
	productsPerCategory := flag.Int("products", 8, "products to generate per category")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.Env, cfg.LogLevel)
	gofakeit.Seed(*seed)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := postgres.RunMigrations(cfg.DBUrl); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	pool, err := postgres.NewPgxPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepo(pool)
	shippingRepo := postgres.NewShippingRepo(pool)

	categories := generator.Categories()
	for i := range categories {
		if err := productRepo.CreateCategory(ctx, &categories[i]); err != nil {
			logger.Fatal().Err(err).Str("category", categories[i].Name).Msg("category insert failed")
		}
	}
	logger.Info().Int("count", len(categories)).Msg("categories seeded")

	total := 0
	for _, category := range categories {
		for i := 0; i < *productsPerCategory; i++ {
			product := generator.NewProduct(category)
			if err := productRepo.CreateProduct(ctx, &product); err != nil {
				logger.Fatal().Err(err).Str("product", product.Name).Msg("product insert failed")
			}
			total++
		}
	}
	logger.Info().Int("count", total).Msg("products seeded")

	zoneIDByName := map[string]int32{}
	for _, zone := range generator.Zones() {
		created, err := shippingRepo.CreateZone(ctx, &zone)
		if err != nil {
			logger.Fatal().Err(err).Str("zone", zone.Name).Msg("zone insert failed")
		}
		zoneIDByName[created.Name] = created.ID
	}
	logger.Info().Int("count", len(zoneIDByName)).Msg("shipping zones seeded")

	for _, rule := range generator.Rules() {
		created, err := shippingRepo.CreateRule(ctx, &rule)
		if err != nil {
			logger.Fatal().Err(err).Str("rule", rule.Name).Msg("rule insert failed")
		}
		if created.RuleType != domain.RuleTypeZoneBased {
			continue
		}
		for _, price := range generator.ZonePrices(created.ID, zoneIDByName) {
			if _, err := shippingRepo.UpsertZonePrice(ctx, &price); err != nil {
				logger.Fatal().Err(err).Int32("zone_id", price.ShippingZoneID).Msg("zone price insert failed")
			}
		}
	}
	logger.Info().Msg("shipping rules seeded")
}
