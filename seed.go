package main

import (
	"context"
	"fmt"
	"log"

	"kulit/internal/config"
	"kulit/internal/models"
	"kulit/internal/services"

	"github.com/shopspring/decimal"
)

// seed loads the configured shipping rates, the starter catalog and the
// admin account. Existing data is left untouched.
func seed(ctx context.Context, cfg *config.Config, shipping *services.ShippingService, products *services.ProductService, auth *services.AuthService) error {
	existing, err := shipping.Rates()
	if err != nil {
		return fmt.Errorf("failed to read shipping rates: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		known[r.Region] = true
	}
	for region, fee := range cfg.ShippingRates {
		if known[services.NormalizeRegion(region)] {
			continue
		}
		if _, err := shipping.SetRate(region, fee); err != nil {
			return fmt.Errorf("failed to seed shipping rate %s: %w", region, err)
		}
	}

	if cfg.SeedCatalog {
		if err := seedProducts(ctx, products); err != nil {
			return err
		}
	}

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := auth.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin account: %w", err)
		}
	}
	return nil
}

// seedProducts populates an empty catalog with a few leather goods.
func seedProducts(ctx context.Context, service *services.ProductService) error {
	current, err := service.GetAllProducts("")
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(current) > 0 {
		return nil
	}

	products := []models.Product{
		{Name: "Classic Bifold Wallet", Description: "Full-grain cowhide bifold with six card slots", Price: decimal.NewFromInt(1200), Stock: 25, StockThreshold: 5, Colors: []string{"black", "tan"}},
		{Name: "Leather Messenger Bag", Description: "Vegetable-tanned leather with brass buckles", Price: decimal.NewFromInt(8500), Stock: 8, StockThreshold: 2, Colors: []string{"brown"}},
		{Name: "Braided Belt", Description: "Hand-braided leather belt", Price: decimal.NewFromInt(1800), Stock: 15, StockThreshold: 3, Colors: []string{"black", "brown", "tan"}},
		{Name: "Key Holder", Description: "Compact key organizer", Price: decimal.NewFromInt(650), Stock: 40, StockThreshold: 10},
	}
	for i := range products {
		if err := service.CreateProduct(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
	}
	return nil
}
