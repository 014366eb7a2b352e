package services

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cafe-storefront/models"
)

//go:embed seed/catalog.json
var seedJSON []byte

type seedDocument struct {
	MenuData      []models.MenuSection   `json:"menuData"`
	Promotions    []models.Promotion     `json:"promotions"`
	GalleryImages []models.GalleryImage  `json:"galleryImages"`
	Settings      models.WebsiteSettings `json:"settings"`
	CafeInfo      models.CafeInfo        `json:"cafeInfo"`
}

// loadSeed decodes a fresh copy of the built-in data on every call so
// callers can never share slices with each other.
func loadSeed() seedDocument {
	var doc seedDocument
	if err := json.Unmarshal(seedJSON, &doc); err != nil {
		panic(fmt.Sprintf("services: embedded seed catalog is invalid: %v", err))
	}
	return doc
}

func DefaultSettings() models.WebsiteSettings { return loadSeed().Settings }

// DefaultConfig is the built-in catalog, unstamped.
func DefaultConfig() models.ExportedConfig {
	doc := loadSeed()
	return models.ExportedConfig{
		MenuData:      doc.MenuData,
		Promotions:    doc.Promotions,
		GalleryImages: doc.GalleryImages,
		Settings:      doc.Settings,
		Version:       models.ConfigVersion,
	}
}

// CafeDetails is the static contact and opening-hours block.
func CafeDetails() models.CafeInfo { return loadSeed().CafeInfo }
