package api

import (
	"net/http"
	"strings"

	"cafe-storefront/models"
	"cafe-storefront/services"

	"github.com/julienschmidt/httprouter"
)

// moreFromSectionLimit caps the related items shown on an item page.
const moreFromSectionLimit = 6

func (s *Server) addCatalogRoutes(router *httprouter.Router) {
	router.GET("/api/info", s.limiter.Limit(s.getInfo))
	router.GET("/api/menu", s.limiter.Limit(s.getMenu))
	router.GET("/api/menu/items/:id", s.limiter.Limit(s.getMenuItem))
	router.GET("/api/allergens", s.limiter.Limit(getAllergens))
	router.GET("/api/promotions", s.limiter.Limit(s.getPromotions))
	router.GET("/api/gallery", s.limiter.Limit(s.getGallery))
	router.GET("/api/settings", s.limiter.Limit(s.getSettings))
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	RespondWithJSON(w, http.StatusOK, services.CafeDetails())
}

// getMenu lists the menu, hiding items that carry any allergen named in
// the comma separated exclude parameter.
func (s *Server) getMenu(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var excluded []string
	for _, a := range strings.Split(r.URL.Query().Get("exclude"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			excluded = append(excluded, a)
		}
	}
	sections := s.cafe.Catalog.FilterMenu(excluded)
	if sections == nil {
		sections = []models.MenuSection{}
	}
	RespondWithJSON(w, http.StatusOK, sections)
}

type itemDetail struct {
	Item     models.MenuItem   `json:"item"`
	Section  string            `json:"section"`
	Pairings []models.MenuItem `json:"pairings"`
	More     []models.MenuItem `json:"moreFromSection"`
}

// getMenuItem sends unknown ids back to the menu.
func (s *Server) getMenuItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	item, section, ok := s.cafe.Catalog.FindItem(ps.ByName("id"))
	if !ok {
		http.Redirect(w, r, "/api/menu", http.StatusSeeOther)
		return
	}
	detail := itemDetail{
		Item:     item,
		Section:  section,
		Pairings: s.cafe.Catalog.Pairings(item),
		More:     s.cafe.Catalog.MoreFromSection(item.ID, moreFromSectionLimit),
	}
	if detail.Pairings == nil {
		detail.Pairings = []models.MenuItem{}
	}
	if detail.More == nil {
		detail.More = []models.MenuItem{}
	}
	RespondWithJSON(w, http.StatusOK, detail)
}

func getAllergens(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	RespondWithJSON(w, http.StatusOK, models.Allergens)
}

func (s *Server) getPromotions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	RespondWithJSON(w, http.StatusOK, s.cafe.Catalog.Promotions())
}

func (s *Server) getGallery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	RespondWithJSON(w, http.StatusOK, s.cafe.Catalog.Gallery())
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	RespondWithJSON(w, http.StatusOK, s.cafe.Catalog.Settings())
}
