package services

import (
	"context"
	"sync"

	"cafe-storefront/models"
	"cafe-storefront/storage"

	"go.uber.org/zap"
)

// Catalog holds the menu, promotions, gallery and website settings.
//
// Mutations build new slices rather than editing in place, so values
// returned by readers stay valid after later edits. Callers must treat
// returned slices as read-only.
type Catalog struct {
	store *storage.Store
	clock Clock
	log   *zap.Logger

	mu         sync.RWMutex
	menu       []models.MenuSection
	promotions []models.Promotion
	gallery    []models.GalleryImage
	settings   models.WebsiteSettings
}

// NewCatalog returns a catalog preloaded with the built-in data. Call
// Bootstrap to replace it with the persisted configuration.
func NewCatalog(store *storage.Store, clock Clock, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{store: store, clock: clock, log: logger.Named("catalog")}
	c.replace(DefaultConfig())
	return c
}

func (c *Catalog) replace(cfg models.ExportedConfig) {
	c.menu = cfg.MenuData
	c.promotions = cfg.Promotions
	c.gallery = cfg.GalleryImages
	c.settings = cfg.Settings
}

func (c *Catalog) Sections() []models.MenuSection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.menu
}

func (c *Catalog) Promotions() []models.Promotion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.promotions
}

func (c *Catalog) Gallery() []models.GalleryImage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gallery
}

func (c *Catalog) Settings() models.WebsiteSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// FilterMenu hides every item carrying one of the excluded allergens
// and drops sections left without items.
func (c *Catalog) FilterMenu(excluded []string) []models.MenuSection {
	sections := c.Sections()
	if len(excluded) == 0 {
		return sections
	}
	set := make(map[string]bool, len(excluded))
	for _, a := range excluded {
		set[a] = true
	}
	var out []models.MenuSection
	for _, s := range sections {
		var items []models.MenuItem
		for _, it := range s.Items {
			if !it.HasAllergen(set) {
				items = append(items, it)
			}
		}
		if len(items) > 0 {
			out = append(out, models.MenuSection{Name: s.Name, Items: items})
		}
	}
	return out
}

// FindItem looks an item up by id and reports the section holding it.
func (c *Catalog) FindItem(id string) (models.MenuItem, string, bool) {
	for _, s := range c.Sections() {
		for _, it := range s.Items {
			if it.ID == id {
				return it, s.Name, true
			}
		}
	}
	return models.MenuItem{}, "", false
}

func (c *Catalog) FindItemByName(name string) (models.MenuItem, bool) {
	for _, s := range c.Sections() {
		for _, it := range s.Items {
			if it.Name == name {
				return it, true
			}
		}
	}
	return models.MenuItem{}, false
}

// Pairings resolves the item's pairing names; unknown names are skipped.
func (c *Catalog) Pairings(item models.MenuItem) []models.MenuItem {
	var out []models.MenuItem
	for _, name := range item.Pairings {
		if p, ok := c.FindItemByName(name); ok {
			out = append(out, p)
		}
	}
	return out
}

// MoreFromSection returns up to limit other items from the section that
// holds id.
func (c *Catalog) MoreFromSection(id string, limit int) []models.MenuItem {
	_, section, ok := c.FindItem(id)
	if !ok {
		return nil
	}
	var out []models.MenuItem
	for _, s := range c.Sections() {
		if s.Name != section {
			continue
		}
		for _, it := range s.Items {
			if it.ID == id {
				continue
			}
			if len(out) == limit {
				break
			}
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) sectionIndex(name string) int {
	for i, s := range c.menu {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// persistLocked writes the full configuration snapshot. c.mu must be held.
func (c *Catalog) persistLocked(ctx context.Context) {
	c.store.Set(ctx, storage.KeyConfig, c.exportLocked())
}
