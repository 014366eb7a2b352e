package services

import (
	"encoding/json"
	"slices"
	"sort"

	"cafe-storefront/models"
)

func settingsFields(s *models.WebsiteSettings) map[string]*string {
	return map[string]*string{
		"cafeName":               &s.CafeName,
		"tagline":                &s.Tagline,
		"primaryColor":           &s.PrimaryColor,
		"secondaryColor":         &s.SecondaryColor,
		"backgroundStart":        &s.BackgroundStart,
		"backgroundMid":          &s.BackgroundMid,
		"backgroundEnd":          &s.BackgroundEnd,
		"backgroundMode":         &s.BackgroundMode,
		"backgroundColor":        &s.BackgroundColor,
		"backgroundImageUrl":     &s.BackgroundImageURL,
		"textColor":              &s.TextColor,
		"mutedTextColor":         &s.MutedTextColor,
		"borderColor":            &s.BorderColor,
		"panelColor":             &s.PanelColor,
		"heroMediaType":          &s.HeroMediaType,
		"heroVideoUrl":           &s.HeroVideoURL,
		"heroPosterUrl":          &s.HeroPosterURL,
		"heroImageUrl":           &s.HeroImageURL,
		"menuBackgroundMode":     &s.MenuBackgroundMode,
		"menuBackgroundImageUrl": &s.MenuBackgroundImageURL,
		"menuBackgroundVideoUrl": &s.MenuBackgroundVideoURL,
		"allergenNotice":         &s.AllergenNotice,
	}
}

var settingsEnums = map[string][]string{
	"backgroundMode":     {models.BackgroundGradient, models.BackgroundSolid, models.BackgroundImage},
	"heroMediaType":      {models.HeroVideo, models.HeroImage},
	"menuBackgroundMode": {models.MenuBackgroundImage, models.MenuBackgroundVideo},
}

// MergeSettings overlays patch on base field by field. A patch key wins
// only when it names a known field and carries a string (and, for mode
// fields, a supported mode). Every other key is left out of the result
// and reported in rejected, sorted.
func MergeSettings(base models.WebsiteSettings, patch map[string]json.RawMessage) (merged models.WebsiteSettings, rejected []string) {
	merged = base
	fields := settingsFields(&merged)
	for key, raw := range patch {
		dst, ok := fields[key]
		if !ok {
			rejected = append(rejected, key)
			continue
		}
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil || v == nil {
			rejected = append(rejected, key)
			continue
		}
		if allowed, isEnum := settingsEnums[key]; isEnum && !slices.Contains(allowed, *v) {
			rejected = append(rejected, key)
			continue
		}
		*dst = *v
	}
	sort.Strings(rejected)
	return merged, rejected
}

