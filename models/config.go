package models

// ConfigVersion is stamped on every export.
const ConfigVersion = "1.0.0"

// ExportedConfig is the unit of persistence and of import/export.
type ExportedConfig struct {
	MenuData      []MenuSection   `json:"menuData"`
	Promotions    []Promotion     `json:"promotions"`
	GalleryImages []GalleryImage  `json:"galleryImages"`
	Settings      WebsiteSettings `json:"settings"`
	Version       string          `json:"version"`
	ExportDate    string          `json:"exportDate"`
}
