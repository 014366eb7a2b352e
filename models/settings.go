package models

// Background, hero and menu background modes.
const (
	BackgroundGradient = "gradient"
	BackgroundSolid    = "solid"
	BackgroundImage    = "image"

	HeroVideo = "video"
	HeroImage = "image"

	MenuBackgroundImage = "image"
	MenuBackgroundVideo = "video"
)

// WebsiteSettings is the flat theme and branding record.
type WebsiteSettings struct {
	CafeName               string `json:"cafeName"`
	Tagline                string `json:"tagline"`
	PrimaryColor           string `json:"primaryColor"`
	SecondaryColor         string `json:"secondaryColor"`
	BackgroundStart        string `json:"backgroundStart"`
	BackgroundMid          string `json:"backgroundMid"`
	BackgroundEnd          string `json:"backgroundEnd"`
	BackgroundMode         string `json:"backgroundMode"`
	BackgroundColor        string `json:"backgroundColor"`
	BackgroundImageURL     string `json:"backgroundImageUrl"`
	TextColor              string `json:"textColor"`
	MutedTextColor         string `json:"mutedTextColor"`
	BorderColor            string `json:"borderColor"`
	PanelColor             string `json:"panelColor"`
	HeroMediaType          string `json:"heroMediaType"`
	HeroVideoURL           string `json:"heroVideoUrl"`
	HeroPosterURL          string `json:"heroPosterUrl"`
	HeroImageURL           string `json:"heroImageUrl"`
	MenuBackgroundMode     string `json:"menuBackgroundMode"`
	MenuBackgroundImageURL string `json:"menuBackgroundImageUrl"`
	MenuBackgroundVideoURL string `json:"menuBackgroundVideoUrl"`
	AllergenNotice         string `json:"allergenNotice"`
}
