package services

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"cafe-storefront/models"
)

func TestMenuItemFormPricing(t *testing.T) {
	tests := []struct {
		name    string
		form    MenuItemForm
		wantErr string
		want    float64
	}{
		{"simple", MenuItemForm{ID: "x", Name: "X", Section: "Coffee", Price: floatPtr(120)}, "", 120},
		{"variant", MenuItemForm{ID: "x", Name: "X", Section: "Coffee", VariantPricing: true, PriceHot: floatPtr(130), PriceCold: floatPtr(150)}, "", 130},
		{"variant hot only", MenuItemForm{ID: "x", Name: "X", Section: "Coffee", VariantPricing: true, PriceHot: floatPtr(130)}, "", 130},
		{"variant without hot", MenuItemForm{ID: "x", Name: "X", Section: "Coffee", VariantPricing: true, PriceCold: floatPtr(150)}, ErrMsgHotPrice, 0},
		{"no base price", MenuItemForm{ID: "x", Name: "X", Section: "Coffee"}, ErrMsgBasePrice, 0},
		{"negative", MenuItemForm{ID: "x", Name: "X", Section: "Coffee", Price: floatPtr(-1)}, ErrMsgValidPrice, 0},
		{"nan", MenuItemForm{ID: "x", Name: "X", Section: "Coffee", Price: floatPtr(math.NaN())}, ErrMsgValidPrice, 0},
		{"missing name", MenuItemForm{ID: "x", Name: "  ", Section: "Coffee", Price: floatPtr(1)}, ErrMsgItemIDName, 0},
		{"missing section", MenuItemForm{ID: "x", Name: "X", Price: floatPtr(1)}, ErrMsgItemSection, 0},
		{"longest id", MenuItemForm{ID: strings.Repeat("x", 48), Name: "X", Section: "Coffee", Price: floatPtr(1)}, "", 1},
		{"id too long", MenuItemForm{ID: strings.Repeat("x", 49), Name: "X", Section: "Coffee", Price: floatPtr(1)}, ErrMsgItemIDFormat, 0},
		{"non-ascii id", MenuItemForm{ID: "café-au-lait", Name: "X", Section: "Coffee", Price: floatPtr(1)}, ErrMsgItemIDFormat, 0},
	}
	for _, tt := range tests {
		item, err := tt.form.Build()
		if tt.wantErr != "" {
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("%s: err = %v, want %q", tt.name, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: err = %v", tt.name, err)
			continue
		}
		if got := item.Price.Effective(); got != tt.want {
			t.Errorf("%s: Effective() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMenuItemFormRejectsBadTastingProfile(t *testing.T) {
	f := MenuItemForm{ID: "x", Name: "X", Section: "Coffee", Price: floatPtr(1), TastingProfile: &models.TastingProfile{Sweetness: 6}}
	if _, err := f.Build(); ErrorCode(err) != CodeInvalidArgument {
		t.Errorf("Build() err = %v, want invalid argument", err)
	}
	f = MenuItemForm{ID: "x", Name: "X", Section: "Coffee", Price: floatPtr(1), Allergens: []string{"Kale"}}
	if _, err := f.Build(); ErrorCode(err) != CodeInvalidArgument {
		t.Errorf("Build() with unknown allergen err = %v", err)
	}
}

func TestSaveMenuItemRejectedLeavesCatalog(t *testing.T) {
	env := newTestEnv(t)
	cat := env.cafe.Catalog
	before := mustJSON(t, cat.Sections())
	_, err := cat.SaveMenuItem(env.ctx, MenuItemForm{ID: "new", Name: "New", Section: "Coffee", VariantPricing: true})
	if err == nil || err.Error() != ErrMsgHotPrice {
		t.Fatalf("err = %v, want %q", err, ErrMsgHotPrice)
	}
	if mustJSON(t, cat.Sections()) != before {
		t.Error("catalog changed by rejected save")
	}
	if _, err := cat.SaveMenuItem(env.ctx, MenuItemForm{ID: "new", Name: "New", Section: "Nowhere", Price: floatPtr(1)}); ErrorCode(err) != CodeInvalidArgument {
		t.Errorf("unknown section err = %v", err)
	}
	if _, err := cat.SaveMenuItem(env.ctx, MenuItemForm{ID: "new", Name: "Americano", Section: "Coffee", Price: floatPtr(1)}); ErrorCode(err) != CodeInvalidArgument {
		t.Errorf("duplicate name err = %v", err)
	}
}

func TestSaveMenuItemMovesBetweenSections(t *testing.T) {
	env := newTestEnv(t)
	cat := env.cafe.Catalog
	if _, err := cat.SaveMenuItem(env.ctx, MenuItemForm{ID: "americano", Name: "Americano", Section: "Signatures", Price: floatPtr(110)}); err != nil {
		t.Fatal(err)
	}
	it, section, ok := cat.FindItem("americano")
	if !ok || section != "Signatures" || it.Price.Effective() != 110 {
		t.Errorf("FindItem(americano) = %v in %q, %v", it.Price.Effective(), section, ok)
	}
	count := 0
	for _, s := range cat.Sections() {
		for _, i := range s.Items {
			if i.ID == "americano" {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("americano appears %d times", count)
	}

	cat.DeleteMenuItem(env.ctx, "americano")
	if _, _, ok := cat.FindItem("americano"); ok {
		t.Error("deleted item still present")
	}
}

func TestSaveMenuItemPersists(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.cafe.Catalog.SaveMenuItem(env.ctx, MenuItemForm{ID: "owl", Name: "Owl Latte", Section: "Coffee", Price: floatPtr(175)}); err != nil {
		t.Fatal(err)
	}
	reloaded := NewCafe(env.ctx, env.store, Options{Clock: env.clock}, nil)
	if _, _, ok := reloaded.Catalog.FindItem("owl"); !ok {
		t.Error("saved item not persisted")
	}
}

func TestPromotionCRUD(t *testing.T) {
	env := newTestEnv(t)
	cat := env.cafe.Catalog
	n := len(cat.Promotions())

	if _, err := cat.AddPromotion(env.ctx, PromotionForm{Name: "N", Description: "D", Tagline: "T"}); err == nil || err.Error() != ErrMsgPromotion {
		t.Errorf("promotion without image err = %v", err)
	}
	if _, err := cat.AddPromotion(env.ctx, PromotionForm{Name: "N", Description: "D", Tagline: "T", Image: "i.png"}); err != nil {
		t.Fatal(err)
	}
	if got := len(cat.Promotions()); got != n+1 {
		t.Fatalf("len = %d, want %d", got, n+1)
	}
	if _, err := cat.UpdatePromotion(env.ctx, n, PromotionForm{Name: "M", Description: "D", Tagline: "T", Image: "i.png"}); err != nil {
		t.Fatal(err)
	}
	if got := cat.Promotions()[n].Name; got != "M" {
		t.Errorf("updated name = %q", got)
	}
	if _, err := cat.UpdatePromotion(env.ctx, n+1, PromotionForm{Name: "M", Description: "D", Tagline: "T", Image: "i"}); ErrorCode(err) != CodeNotFound {
		t.Errorf("update out of range err = %v", err)
	}
	cat.DeletePromotion(env.ctx, 99)
	cat.DeletePromotion(env.ctx, n)
	if got := len(cat.Promotions()); got != n {
		t.Errorf("len after delete = %d, want %d", got, n)
	}
}

func TestGalleryCRUD(t *testing.T) {
	env := newTestEnv(t)
	cat := env.cafe.Catalog
	if _, err := cat.AddGalleryImage(env.ctx, GalleryForm{Title: "No URL"}); err == nil || err.Error() != ErrMsgGallery {
		t.Errorf("gallery without url err = %v", err)
	}
	img, err := cat.AddGalleryImage(env.ctx, GalleryForm{URL: "u.jpg", Title: "Hall"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.UpdateGalleryImage(env.ctx, img.ID, GalleryForm{URL: "v.jpg", Title: "Hall", Description: "At night"}); err != nil {
		t.Fatal(err)
	}
	gallery := cat.Gallery()
	if last := gallery[len(gallery)-1]; last.URL != "v.jpg" || last.Description != "At night" {
		t.Errorf("updated image = %+v", last)
	}
	if _, err := cat.UpdateGalleryImage(env.ctx, "missing", GalleryForm{URL: "v", Title: "t"}); ErrorCode(err) != CodeNotFound {
		t.Errorf("update missing err = %v", err)
	}
	cat.DeleteGalleryImage(env.ctx, img.ID)
	for _, g := range cat.Gallery() {
		if g.ID == img.ID {
			t.Error("deleted image still present")
		}
	}
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	cat := env.cafe.Catalog
	patch := map[string]json.RawMessage{
		"cafeName":       json.RawMessage(`"The Three Broomsticks"`),
		"backgroundMode": json.RawMessage(`"solid"`),
	}
	s, err := cat.UpdateSettings(env.ctx, patch)
	if err != nil {
		t.Fatal(err)
	}
	if s.CafeName != "The Three Broomsticks" || s.BackgroundMode != models.BackgroundSolid {
		t.Errorf("settings = %+v", s)
	}

	before := cat.Settings()
	_, err = cat.UpdateSettings(env.ctx, map[string]json.RawMessage{
		"cafeName":      json.RawMessage(`"Other"`),
		"heroMediaType": json.RawMessage(`"hologram"`),
	})
	if ErrorCode(err) != CodeInvalidArgument {
		t.Errorf("bad enum err = %v", err)
	}
	if cat.Settings() != before {
		t.Error("rejected patch changed settings")
	}
}

func TestMergeSettingsRejected(t *testing.T) {
	patch := map[string]json.RawMessage{
		"zeta":          json.RawMessage(`"x"`),
		"alpha":         json.RawMessage(`"x"`),
		"textColor":     json.RawMessage(`12`),
		"panelColor":    json.RawMessage(`null`),
		"tagline":       json.RawMessage(`"ok"`),
		"heroMediaType": json.RawMessage(`"image"`),
	}
	merged, rejected := MergeSettings(DefaultSettings(), patch)
	want := []string{"alpha", "panelColor", "textColor", "zeta"}
	if len(rejected) != len(want) {
		t.Fatalf("rejected = %v, want %v", rejected, want)
	}
	for i := range want {
		if rejected[i] != want[i] {
			t.Errorf("rejected[%d] = %q, want %q", i, rejected[i], want[i])
		}
	}
	if merged.Tagline != "ok" || merged.HeroMediaType != models.HeroImage {
		t.Errorf("merged = %+v", merged)
	}
	if merged.TextColor != DefaultSettings().TextColor {
		t.Errorf("TextColor = %q, want default", merged.TextColor)
	}
}

func TestMenuQueries(t *testing.T) {
	env := newTestEnv(t)
	cat := env.cafe.Catalog

	filtered := cat.FilterMenu([]string{"Dairy"})
	for _, s := range filtered {
		if len(s.Items) == 0 {
			t.Errorf("section %q kept with no items", s.Name)
		}
		for _, it := range s.Items {
			if it.HasAllergen(map[string]bool{"Dairy": true}) {
				t.Errorf("%s carries Dairy but was not filtered", it.Name)
			}
		}
	}
	if got := cat.FilterMenu(nil); len(got) != len(cat.Sections()) {
		t.Errorf("FilterMenu(nil) returned %d sections", len(got))
	}

	butter, _, ok := cat.FindItem("classic-butter")
	if !ok {
		t.Fatal("classic-butter not in seed menu")
	}
	for _, p := range cat.Pairings(butter) {
		if p.Name != "Pumpkin Pasties" && p.Name != "TriBeCa Cookies" {
			t.Errorf("unexpected pairing %q", p.Name)
		}
	}

	more := cat.MoreFromSection("americano", 6)
	if len(more) == 0 || len(more) > 6 {
		t.Errorf("MoreFromSection returned %d items", len(more))
	}
	for _, it := range more {
		if it.ID == "americano" {
			t.Error("MoreFromSection includes the item itself")
		}
	}
	if got := cat.MoreFromSection("missing", 6); got != nil {
		t.Errorf("MoreFromSection(missing) = %v", got)
	}
}

func TestMenuItemFormAllergenMessage(t *testing.T) {
	f := MenuItemForm{ID: "x", Name: "X", Section: "Coffee", Price: floatPtr(1), Allergens: []string{"Dairy", "Kale"}}
	_, err := f.Build()
	if err == nil || err.Error() != "Allergens must be chosen from: Wheat, Dairy, Soy, Seafood, Nuts, Peanuts, Gluten." {
		t.Errorf("Build() err = %v", err)
	}
}
