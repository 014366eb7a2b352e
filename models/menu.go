package models

import "encoding/json"

// Allergens is the vocabulary offered by the menu filter.
var Allergens = []string{"Wheat", "Dairy", "Soy", "Seafood", "Nuts", "Peanuts", "Gluten"}

// Variant is hot/cold pricing. Hot is mandatory; it is the price used
// for the cart.
type Variant struct {
	Hot  float64
	Cold *float64
}

// Price is either a simple amount or a hot/cold Variant.
type Price struct {
	amount  float64
	variant *Variant
}

func SimplePrice(amount float64) Price { return Price{amount: amount} }

func VariantPrice(hot float64, cold *float64) Price {
	v := &Variant{Hot: hot}
	if cold != nil {
		c := *cold
		v.Cold = &c
	}
	return Price{amount: hot, variant: v}
}

// Effective is the amount a cart line captures.
func (p Price) Effective() float64 {
	if p.variant != nil {
		return p.variant.Hot
	}
	return p.amount
}

// Variant returns the hot/cold pair, or nil for simple pricing.
func (p Price) Variant() *Variant { return p.variant }

type TastingProfile struct {
	Sweetness int `json:"sweetness" validate:"gte=0,lte=5"`
	Body      int `json:"body" validate:"gte=0,lte=5"`
	Acidity   int `json:"acidity" validate:"gte=0,lte=5"`
}

type MenuItem struct {
	ID               string
	Name             string
	Price            Price
	Description      string
	Image            string
	IsRecommended    bool
	IsBestSeller     bool
	IsCustomerChoice bool
	Allergens        []string
	Nutrition        map[string]string
	TastingNotes     []string
	Pairings         []string
	Ingredients      []string
	TastingProfile   *TastingProfile
}

// menuItemWire is the flat document shape used in storage, exports and
// the API.
type menuItemWire struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Price            float64           `json:"price"`
	PriceHot         *float64          `json:"priceHot,omitempty"`
	PriceCold        *float64          `json:"priceCold,omitempty"`
	Description      string            `json:"description"`
	Image            string            `json:"image,omitempty"`
	IsRecommended    bool              `json:"is_recommended,omitempty"`
	IsBestSeller     bool              `json:"is_best_seller,omitempty"`
	IsCustomerChoice bool              `json:"is_customer_choice,omitempty"`
	Allergens        []string          `json:"potential_allergens,omitempty"`
	Nutrition        map[string]string `json:"nutrition,omitempty"`
	TastingNotes     []string          `json:"tasting_notes,omitempty"`
	Pairings         []string          `json:"pairings,omitempty"`
	Ingredients      []string          `json:"ingredients,omitempty"`
	TastingProfile   *TastingProfile   `json:"tasting_profile,omitempty"`
}

func (m MenuItem) wire() menuItemWire {
	w := menuItemWire{
		ID:               m.ID,
		Name:             m.Name,
		Price:            m.Price.Effective(),
		Description:      m.Description,
		Image:            m.Image,
		IsRecommended:    m.IsRecommended,
		IsBestSeller:     m.IsBestSeller,
		IsCustomerChoice: m.IsCustomerChoice,
		Allergens:        m.Allergens,
		Nutrition:        m.Nutrition,
		TastingNotes:     m.TastingNotes,
		Pairings:         m.Pairings,
		Ingredients:      m.Ingredients,
		TastingProfile:   m.TastingProfile,
	}
	if v := m.Price.Variant(); v != nil {
		hot := v.Hot
		w.PriceHot = &hot
		w.PriceCold = v.Cold
	}
	return w
}

func (w menuItemWire) item() MenuItem {
	m := MenuItem{
		ID:               w.ID,
		Name:             w.Name,
		Price:            SimplePrice(w.Price),
		Description:      w.Description,
		Image:            w.Image,
		IsRecommended:    w.IsRecommended,
		IsBestSeller:     w.IsBestSeller,
		IsCustomerChoice: w.IsCustomerChoice,
		Allergens:        w.Allergens,
		Nutrition:        w.Nutrition,
		TastingNotes:     w.TastingNotes,
		Pairings:         w.Pairings,
		Ingredients:      w.Ingredients,
		TastingProfile:   w.TastingProfile,
	}
	switch {
	case w.PriceHot != nil:
		m.Price = VariantPrice(*w.PriceHot, w.PriceCold)
	case w.PriceCold != nil:
		// Cold-only documents keep the base price as the hot side.
		m.Price = VariantPrice(w.Price, w.PriceCold)
	}
	return m
}

func (m MenuItem) MarshalJSON() ([]byte, error) { return json.Marshal(m.wire()) }

func (m *MenuItem) UnmarshalJSON(b []byte) error {
	var w menuItemWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*m = w.item()
	return nil
}

// HasAllergen reports whether any of the item's allergens is in set.
func (m MenuItem) HasAllergen(set map[string]bool) bool {
	for _, a := range m.Allergens {
		if set[a] {
			return true
		}
	}
	return false
}

type MenuSection struct {
	Name  string     `json:"section_name"`
	Items []MenuItem `json:"items"`
}

type Promotion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tagline     string `json:"tagline"`
	Image       string `json:"image"`
}

type GalleryImage struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

type CafeInfo struct {
	Address        string            `json:"address"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email"`
	OperatingHours OperatingHours    `json:"operatingHours"`
	Social         map[string]string `json:"social"`
	MapsEmbedURL   string            `json:"mapsEmbedUrl"`
}

type OperatingHours struct {
	Notice   string `json:"notice"`
	Schedule string `json:"schedule"`
}
