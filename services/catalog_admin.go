package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"cafe-storefront/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// failedField names the first struct field rejected by validate, or ""
// for non-validation errors. Slice indexes are dropped.
func failedField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		name, _, _ := strings.Cut(verrs[0].StructField(), "[")
		return name
	}
	return ""
}

// failedTag is the validate tag that rejected the first field.
func failedTag(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return ""
}

// MenuItemForm is an admin create/update request. Section names the
// target section; saving an existing id under another section moves it.
type MenuItemForm struct {
	ID               string                 `json:"id" validate:"required,max=48,printascii"`
	Name             string                 `json:"name" validate:"required"`
	Section          string                 `json:"section" validate:"required"`
	VariantPricing   bool                   `json:"variantPricing"`
	Price            *float64               `json:"price"`
	PriceHot         *float64               `json:"priceHot"`
	PriceCold        *float64               `json:"priceCold"`
	Description      string                 `json:"description"`
	Image            string                 `json:"image"`
	IsRecommended    bool                   `json:"is_recommended"`
	IsBestSeller     bool                   `json:"is_best_seller"`
	IsCustomerChoice bool                   `json:"is_customer_choice"`
	Allergens        []string               `json:"potential_allergens" validate:"dive,oneof=Wheat Dairy Soy Seafood Nuts Peanuts Gluten"`
	Nutrition        map[string]string      `json:"nutrition"`
	TastingNotes     []string               `json:"tasting_notes"`
	Pairings         []string               `json:"pairings"`
	Ingredients      []string               `json:"ingredients"`
	TastingProfile   *models.TastingProfile `json:"tasting_profile"`
}

// Build validates the form and produces the item it describes.
func (f MenuItemForm) Build() (models.MenuItem, error) {
	f.ID = strings.TrimSpace(f.ID)
	f.Name = strings.TrimSpace(f.Name)
	f.Section = strings.TrimSpace(f.Section)
	if err := validate.Struct(f); err != nil {
		switch failedField(err) {
		case "ID":
			// ids end up in 64-byte Telegram callback data
			if failedTag(err) != "required" {
				return models.MenuItem{}, invalidArgument(ErrMsgItemIDFormat)
			}
			return models.MenuItem{}, invalidArgument(ErrMsgItemIDName)
		case "Name":
			return models.MenuItem{}, invalidArgument(ErrMsgItemIDName)
		case "Section":
			return models.MenuItem{}, invalidArgument(ErrMsgItemSection)
		case "Sweetness", "Body", "Acidity":
			return models.MenuItem{}, invalidArgument("Tasting profile values must be between 0 and 5.")
		case "Allergens":
			return models.MenuItem{}, invalidArgumentf("Allergens must be chosen from: %s.", strings.Join(models.Allergens, ", "))
		default:
			return models.MenuItem{}, invalidArgumentf("Invalid menu item: %v", err)
		}
	}
	price, err := f.price()
	if err != nil {
		return models.MenuItem{}, err
	}
	return models.MenuItem{
		ID:               f.ID,
		Name:             f.Name,
		Price:            price,
		Description:      f.Description,
		Image:            f.Image,
		IsRecommended:    f.IsRecommended,
		IsBestSeller:     f.IsBestSeller,
		IsCustomerChoice: f.IsCustomerChoice,
		Allergens:        f.Allergens,
		Nutrition:        f.Nutrition,
		TastingNotes:     f.TastingNotes,
		Pairings:         f.Pairings,
		Ingredients:      f.Ingredients,
		TastingProfile:   f.TastingProfile,
	}, nil
}

func (f MenuItemForm) price() (models.Price, error) {
	if f.VariantPricing {
		if f.PriceHot == nil {
			return models.Price{}, invalidArgument(ErrMsgHotPrice)
		}
		if !validAmount(*f.PriceHot) || (f.PriceCold != nil && !validAmount(*f.PriceCold)) {
			return models.Price{}, invalidArgument(ErrMsgValidPrice)
		}
		return models.VariantPrice(*f.PriceHot, f.PriceCold), nil
	}
	if f.Price == nil {
		return models.Price{}, invalidArgument(ErrMsgBasePrice)
	}
	if !validAmount(*f.Price) {
		return models.Price{}, invalidArgument(ErrMsgValidPrice)
	}
	return models.SimplePrice(*f.Price), nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// SaveMenuItem inserts or replaces the item in its target section,
// removing it from any other section that held the same id.
func (c *Catalog) SaveMenuItem(ctx context.Context, form MenuItemForm) (models.MenuItem, error) {
	item, err := form.Build()
	if err != nil {
		return models.MenuItem{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.sectionIndex(strings.TrimSpace(form.Section))
	if target < 0 {
		return models.MenuItem{}, invalidArgumentf("Unknown menu section %q.", form.Section)
	}
	for _, s := range c.menu {
		for _, it := range s.Items {
			if it.Name == item.Name && it.ID != item.ID {
				return models.MenuItem{}, invalidArgumentf("An item named %q already exists.", item.Name)
			}
		}
	}

	menu := make([]models.MenuSection, len(c.menu))
	for i, s := range c.menu {
		items := make([]models.MenuItem, 0, len(s.Items)+1)
		placed := false
		for _, it := range s.Items {
			if it.ID != item.ID {
				items = append(items, it)
				continue
			}
			if i == target {
				items = append(items, item)
				placed = true
			}
		}
		if i == target && !placed {
			items = append(items, item)
		}
		menu[i] = models.MenuSection{Name: s.Name, Items: items}
	}
	c.menu = menu
	c.persistLocked(ctx)
	c.log.Info("menu item saved", zap.String("id", item.ID), zap.String("section", menu[target].Name))
	return item, nil
}

func (c *Catalog) DeleteMenuItem(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	menu := make([]models.MenuSection, len(c.menu))
	for i, s := range c.menu {
		items := make([]models.MenuItem, 0, len(s.Items))
		for _, it := range s.Items {
			if it.ID != id {
				items = append(items, it)
			}
		}
		menu[i] = models.MenuSection{Name: s.Name, Items: items}
	}
	c.menu = menu
	c.persistLocked(ctx)
	c.log.Info("menu item deleted", zap.String("id", id))
}

type PromotionForm struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Tagline     string `json:"tagline" validate:"required"`
	Image       string `json:"image" validate:"required"`
}

func (f PromotionForm) Build() (models.Promotion, error) {
	p := models.Promotion{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Tagline:     strings.TrimSpace(f.Tagline),
		Image:       strings.TrimSpace(f.Image),
	}
	if err := validate.Struct(PromotionForm(p)); err != nil {
		return models.Promotion{}, invalidArgument(ErrMsgPromotion)
	}
	return p, nil
}

func (c *Catalog) AddPromotion(ctx context.Context, form PromotionForm) (models.Promotion, error) {
	p, err := form.Build()
	if err != nil {
		return models.Promotion{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	promos := make([]models.Promotion, 0, len(c.promotions)+1)
	promos = append(promos, c.promotions...)
	c.promotions = append(promos, p)
	c.persistLocked(ctx)
	return p, nil
}

// UpdatePromotion replaces the promotion at index.
func (c *Catalog) UpdatePromotion(ctx context.Context, index int, form PromotionForm) (models.Promotion, error) {
	p, err := form.Build()
	if err != nil {
		return models.Promotion{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.promotions) {
		return models.Promotion{}, ErrNotFound
	}
	promos := append([]models.Promotion(nil), c.promotions...)
	promos[index] = p
	c.promotions = promos
	c.persistLocked(ctx)
	return p, nil
}

// DeletePromotion removes the promotion at index; out of range is a no-op.
func (c *Catalog) DeletePromotion(ctx context.Context, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.promotions) {
		return
	}
	promos := make([]models.Promotion, 0, len(c.promotions)-1)
	promos = append(promos, c.promotions[:index]...)
	c.promotions = append(promos, c.promotions[index+1:]...)
	c.persistLocked(ctx)
}

type GalleryForm struct {
	URL         string `json:"url" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func (f GalleryForm) build(id string) (models.GalleryImage, error) {
	f.URL = strings.TrimSpace(f.URL)
	f.Title = strings.TrimSpace(f.Title)
	if err := validate.Struct(f); err != nil {
		return models.GalleryImage{}, invalidArgument(ErrMsgGallery)
	}
	return models.GalleryImage{
		ID:          id,
		URL:         f.URL,
		Title:       f.Title,
		Category:    strings.TrimSpace(f.Category),
		Description: strings.TrimSpace(f.Description),
	}, nil
}

func (c *Catalog) AddGalleryImage(ctx context.Context, form GalleryForm) (models.GalleryImage, error) {
	img, err := form.build("g-" + uuid.NewString())
	if err != nil {
		return models.GalleryImage{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	gallery := make([]models.GalleryImage, 0, len(c.gallery)+1)
	gallery = append(gallery, c.gallery...)
	c.gallery = append(gallery, img)
	c.persistLocked(ctx)
	return img, nil
}

func (c *Catalog) UpdateGalleryImage(ctx context.Context, id string, form GalleryForm) (models.GalleryImage, error) {
	img, err := form.build(id)
	if err != nil {
		return models.GalleryImage{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, g := range c.gallery {
		if g.ID != id {
			continue
		}
		gallery := append([]models.GalleryImage(nil), c.gallery...)
		gallery[i] = img
		c.gallery = gallery
		c.persistLocked(ctx)
		return img, nil
	}
	return models.GalleryImage{}, ErrNotFound
}

func (c *Catalog) DeleteGalleryImage(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gallery := make([]models.GalleryImage, 0, len(c.gallery))
	for _, g := range c.gallery {
		if g.ID != id {
			gallery = append(gallery, g)
		}
	}
	c.gallery = gallery
	c.persistLocked(ctx)
}

// UpdateSettings merges patch over the current settings. Unknown keys or
// unsupported modes reject the whole patch.
func (c *Catalog) UpdateSettings(ctx context.Context, patch map[string]json.RawMessage) (models.WebsiteSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	merged, rejected := MergeSettings(c.settings, patch)
	if len(rejected) > 0 {
		return models.WebsiteSettings{}, invalidArgumentf("Unsupported settings: %s.", strings.Join(rejected, ", "))
	}
	c.settings = merged
	c.persistLocked(ctx)
	return merged, nil
}
