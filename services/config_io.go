package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cafe-storefront/models"
	"cafe-storefront/storage"

	"go.uber.org/zap"
)

type ImportReason int

const (
	MalformedDocument ImportReason = iota + 1
	MissingRequiredSection
)

// ImportError rejects a configuration document. The live catalog is
// untouched when it is returned.
type ImportError struct {
	Reason  ImportReason
	Section string // set for MissingRequiredSection
	Err     error
}

func (e *ImportError) Error() string {
	if e.Reason == MissingRequiredSection {
		return ErrMsgImportIncomplete + " (" + e.Section + ")"
	}
	return ErrMsgImportMalformed
}

func (e *ImportError) Unwrap() error { return e.Err }

var requiredSections = []string{"menuData", "promotions", "galleryImages"}

// ParseConfig validates a configuration document. Settings are merged
// over the built-in defaults; unknown or unsupported settings keys are
// dropped.
func ParseConfig(raw []byte) (models.ExportedConfig, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.ExportedConfig{}, &ImportError{Reason: MalformedDocument, Err: err}
	}
	for _, name := range requiredSections {
		r, ok := doc[name]
		if !ok || !isJSONArray(r) {
			return models.ExportedConfig{}, &ImportError{Reason: MissingRequiredSection, Section: name}
		}
	}

	var cfg models.ExportedConfig
	if err := json.Unmarshal(doc["menuData"], &cfg.MenuData); err != nil {
		return models.ExportedConfig{}, &ImportError{Reason: MalformedDocument, Err: fmt.Errorf("menuData: %w", err)}
	}
	if err := json.Unmarshal(doc["promotions"], &cfg.Promotions); err != nil {
		return models.ExportedConfig{}, &ImportError{Reason: MalformedDocument, Err: fmt.Errorf("promotions: %w", err)}
	}
	if err := json.Unmarshal(doc["galleryImages"], &cfg.GalleryImages); err != nil {
		return models.ExportedConfig{}, &ImportError{Reason: MalformedDocument, Err: fmt.Errorf("galleryImages: %w", err)}
	}

	var patch map[string]json.RawMessage
	if r, ok := doc["settings"]; ok {
		// A settings value that is not an object counts as absent.
		_ = json.Unmarshal(r, &patch)
	}
	cfg.Settings, _ = MergeSettings(DefaultSettings(), patch)

	cfg.Version = models.ConfigVersion
	if r, ok := doc["version"]; ok {
		var v string
		if json.Unmarshal(r, &v) == nil && v != "" {
			cfg.Version = v
		}
	}
	if r, ok := doc["exportDate"]; ok {
		_ = json.Unmarshal(r, &cfg.ExportDate)
	}
	return cfg, nil
}

func isJSONArray(r json.RawMessage) bool {
	r = bytes.TrimSpace(r)
	return len(r) > 0 && r[0] == '['
}

// Export stamps the current catalog with the schema version and time.
func (c *Catalog) Export() models.ExportedConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exportLocked()
}

func (c *Catalog) exportLocked() models.ExportedConfig {
	return models.ExportedConfig{
		MenuData:      c.menu,
		Promotions:    c.promotions,
		GalleryImages: c.gallery,
		Settings:      c.settings,
		Version:       models.ConfigVersion,
		ExportDate:    c.clock.Now().UTC().Format(time.RFC3339Nano),
	}
}

// ExportFileName is the download name for an export taken at now.
func ExportFileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-config-%s.json", prefix, now.Format("2006-01-02"))
}

// Import replaces menu, promotions, gallery and settings with the
// document's content and persists the result. On error nothing changes.
func (c *Catalog) Import(ctx context.Context, raw []byte) (models.ExportedConfig, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return models.ExportedConfig{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replace(cfg)
	c.persistLocked(ctx)
	c.log.Info("configuration imported",
		zap.String("version", cfg.Version),
		zap.String("exportDate", cfg.ExportDate),
		zap.Int("sections", len(cfg.MenuData)),
	)
	return cfg, nil
}

// Bootstrap loads the persisted configuration. When none is stored, or
// the stored document is unusable, the built-in data is persisted in its
// place.
func (c *Catalog) Bootstrap(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if raw, ok := c.store.Raw(ctx, storage.KeyConfig); ok {
		cfg, err := ParseConfig(raw)
		if err == nil {
			c.replace(cfg)
			c.log.Info("configuration loaded", zap.String("version", cfg.Version))
			return
		}
		c.log.Warn("stored configuration unusable, reseeding", zap.Error(err))
		c.store.Remove(ctx, storage.KeyConfig)
	}
	c.replace(DefaultConfig())
	c.persistLocked(ctx)
	c.log.Info("configuration seeded from defaults")
}
