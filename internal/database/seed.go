// internal/database/seed.go
package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ermimobile/emobile-backend/internal/config"
	"github.com/ermimobile/emobile-backend/internal/models"
)

// Seed initial data
func SeedInitialData(db *gorm.DB, cfg config.SeedConfig) error {
	logrus.Info("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Name:          cfg.AdminName,
			Email:         cfg.AdminEmail,
			Role:          models.UserRoleAdmin,
			EmailVerified: true,
		}

		if err := admin.SetPassword(cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		logrus.WithField("email", admin.Email).Info("Default admin user created successfully")
	}

	// Default storefront settings; existing values are never overwritten
	defaultSettings := []models.Setting{
		{Key: "site_name", Value: "Ermi Mobile", Description: "Shop name displayed to customers"},
		{Key: "hero_title", Value: "Premium Mobile Accessories", Description: "Storefront hero headline"},
		{Key: "hero_background_image", Value: "", Description: "Storefront hero background image"},
		{Key: "contact_phone", Value: "", Description: "Shop phone number"},
		{Key: "contact_email", Value: "", Description: "Shop contact email"},
		{Key: "telebirr_name", Value: "", Description: "Telebirr account name"},
		{Key: "telebirr_phone", Value: "", Description: "Telebirr phone number"},
		{Key: "telebirr_instructions", Value: "", Description: "Telebirr payment instructions"},
		{Key: "cbe_name", Value: "", Description: "CBE Birr account name"},
		{Key: "cbe_account", Value: "", Description: "CBE Birr account number"},
		{Key: "cbe_instructions", Value: "", Description: "CBE Birr payment instructions"},
		{Key: "bank_name", Value: "", Description: "Bank name for transfers"},
		{Key: "bank_account_name", Value: "", Description: "Bank account name"},
		{Key: "bank_account_number", Value: "", Description: "Bank account number"},
		{Key: "bank_instructions", Value: "", Description: "Bank transfer instructions"},
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaultSettings).Error; err != nil {
		logrus.WithError(err).Warn("Failed to create default settings")
	}

	if cfg.SampleCatalog {
		if err := seedSampleCatalog(db); err != nil {
			return err
		}
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

type sampleProduct struct {
	name        string
	price       int64
	icon        string
	stock       int
	category    string
	description string
}

func seedSampleCatalog(db *gorm.DB) error {
	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)
	if productCount > 0 {
		return nil
	}

	logrus.Info("Seeding database with sample catalog...")

	return WithTransaction(db, func(tx *gorm.DB) error {
		categories := map[string]*models.Category{}
		create := func(name, description string, parent *models.Category) error {
			category := &models.Category{Name: name, Description: description}
			if parent != nil {
				category.ParentID = &parent.ID
			}
			if err := tx.Create(category).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", name, err)
			}
			categories[name] = category
			return nil
		}

		if err := create("Audio", "Earbuds, speakers and cables", nil); err != nil {
			return err
		}
		if err := create("Power", "Chargers and power banks", nil); err != nil {
			return err
		}
		if err := create("Cables", "Charging and data cables", categories["Power"]); err != nil {
			return err
		}
		if err := create("Protection", "Cases and screen protectors", nil); err != nil {
			return err
		}
		if err := create("Mounts & Holders", "Car mounts, rings and selfie sticks", nil); err != nil {
			return err
		}

		products := []sampleProduct{
			{"Wireless Earbuds Pro", 2500, "fa-headphones", 50, "Audio", "Premium wireless earbuds with active noise cancellation and 24-hour battery life"},
			{"Protective Phone Case", 500, "fa-mobile-alt", 100, "Protection", "Durable protective case with shock absorption for all phone models"},
			{"Fast Charger 20W", 800, "fa-charging-station", 75, "Power", "Quick charge adapter with USB-C port and smart charging technology"},
			{"Tempered Glass Screen Protector", 300, "fa-shield-alt", 150, "Protection", "9H hardness tempered glass with oleophobic coating"},
			{"Power Bank 10000mAh", 1800, "fa-battery-full", 40, "Power", "Portable power bank with dual USB ports and LED indicator"},
			{"USB-C Cable 2m", 400, "fa-plug", 200, "Cables", "Durable braided USB-C charging cable with fast data transfer"},
			{"Car Phone Holder", 600, "fa-car", 80, "Mounts & Holders", "Universal car phone holder with 360° rotation and strong grip"},
			{"Bluetooth Speaker", 3500, "fa-volume-up", 30, "Audio", "Portable Bluetooth speaker with deep bass and 12-hour playtime"},
			{"Selfie Stick with Tripod", 900, "fa-camera", 60, "Mounts & Holders", "Extendable selfie stick with built-in tripod and Bluetooth remote"},
			{"Phone Ring Holder", 250, "fa-ring", 120, "Mounts & Holders", "360° rotating ring holder with magnetic car mount compatibility"},
			{"Wireless Charging Pad", 1200, "fa-wifi", 45, "Power", "Fast wireless charging pad compatible with all Qi-enabled devices"},
			{"AUX Audio Cable", 350, "fa-headphones-alt", 90, "Audio", "3.5mm auxiliary audio cable with gold-plated connectors"},
		}

		for _, p := range products {
			var categoryID *uuid.UUID
			if category, ok := categories[p.category]; ok {
				categoryID = &category.ID
			}
			product := &models.Product{
				Name:        p.name,
				Price:       decimal.NewFromInt(p.price),
				Icon:        p.icon,
				Stock:       p.stock,
				Description: p.description,
				CategoryID:  categoryID,
			}
			if err := tx.Create(product).Error; err != nil {
				return fmt.Errorf("failed to create product %s: %w", p.name, err)
			}
		}

		return nil
	})
}
