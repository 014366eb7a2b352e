package api

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"cafe-storefront/models"
	"cafe-storefront/services"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) addAdminRoutes(router *httprouter.Router) {
	router.POST("/api/admin/login", s.limiter.Limit(s.login))
	router.POST("/api/admin/logout", s.limiter.Limit(s.logout))
	router.GET("/api/admin/status", s.limiter.Limit(s.adminStatus))

	admin := func(h httprouter.Handle) httprouter.Handle { return s.limiter.Limit(s.adminOnly(h)) }
	router.PUT("/api/admin/menu/items", admin(s.saveMenuItem))
	router.DELETE("/api/admin/menu/items/:id", admin(s.deleteMenuItem))
	router.POST("/api/admin/promotions", admin(s.addPromotion))
	router.PUT("/api/admin/promotions/:index", admin(s.updatePromotion))
	router.DELETE("/api/admin/promotions/:index", admin(s.deletePromotion))
	router.POST("/api/admin/gallery", admin(s.addGalleryImage))
	router.PUT("/api/admin/gallery/:id", admin(s.updateGalleryImage))
	router.DELETE("/api/admin/gallery/:id", admin(s.deleteGalleryImage))
	router.PATCH("/api/admin/settings", admin(s.updateSettings))
	router.GET("/api/admin/config/export", admin(s.exportConfig))
	router.POST("/api/admin/config/import", admin(s.importConfig))
	router.DELETE("/api/admin/orders", admin(s.clearHistory))
	router.GET("/api/admin/analytics", admin(s.analytics))
	router.GET("/api/admin/stats", admin(s.dailyStats))
	router.GET("/api/admin/expenses", admin(s.listExpenses))
	router.POST("/api/admin/expenses", admin(s.addExpense))
	router.DELETE("/api/admin/expenses/:id", admin(s.deleteExpense))
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.cafe.Admin.Login(r.Context(), req.Password); err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.cafe.Admin.Logout(r.Context())
	RespondWithJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
}

func (s *Server) adminStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	RespondWithJSON(w, http.StatusOK, map[string]bool{"authenticated": s.cafe.Admin.Authenticated(r.Context())})
}

func (s *Server) saveMenuItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var form services.MenuItemForm
	if !decodeJSON(w, r, &form) {
		return
	}
	item, err := s.cafe.Catalog.SaveMenuItem(r.Context(), form)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, item)
}

func (s *Server) deleteMenuItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.cafe.Catalog.DeleteMenuItem(r.Context(), ps.ByName("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addPromotion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var form services.PromotionForm
	if !decodeJSON(w, r, &form) {
		return
	}
	p, err := s.cafe.Catalog.AddPromotion(r.Context(), form)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, p)
}

func indexParam(w http.ResponseWriter, ps httprouter.Params) (int, bool) {
	i, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid promotion index")
		return 0, false
	}
	return i, true
}

func (s *Server) updatePromotion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	i, ok := indexParam(w, ps)
	if !ok {
		return
	}
	var form services.PromotionForm
	if !decodeJSON(w, r, &form) {
		return
	}
	p, err := s.cafe.Catalog.UpdatePromotion(r.Context(), i, form)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, p)
}

func (s *Server) deletePromotion(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	i, ok := indexParam(w, ps)
	if !ok {
		return
	}
	s.cafe.Catalog.DeletePromotion(r.Context(), i)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addGalleryImage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var form services.GalleryForm
	if !decodeJSON(w, r, &form) {
		return
	}
	img, err := s.cafe.Catalog.AddGalleryImage(r.Context(), form)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, img)
}

func (s *Server) updateGalleryImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var form services.GalleryForm
	if !decodeJSON(w, r, &form) {
		return
	}
	img, err := s.cafe.Catalog.UpdateGalleryImage(r.Context(), ps.ByName("id"), form)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, img)
}

func (s *Server) deleteGalleryImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.cafe.Catalog.DeleteGalleryImage(r.Context(), ps.ByName("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var patch map[string]json.RawMessage
	if !decodeJSON(w, r, &patch) {
		return
	}
	settings, err := s.cafe.Catalog.UpdateSettings(r.Context(), patch)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, settings)
}

func (s *Server) exportConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name := services.ExportFileName(s.opts.ExportPrefix, time.Now())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	RespondWithJSON(w, http.StatusOK, s.cafe.Catalog.Export())
}

func (s *Server) importConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, services.ErrMsgImportMalformed)
		return
	}
	cfg, err := s.cafe.Catalog.Import(r.Context(), raw)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"version":    cfg.Version,
		"exportDate": cfg.ExportDate,
		"sections":   len(cfg.MenuData),
		"promotions": len(cfg.Promotions),
		"gallery":    len(cfg.GalleryImages),
	})
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.cafe.Orders.ClearHistory(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// floatParam reads a non-negative finite number, or def.
func floatParam(r *http.Request, name string, def float64) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return def
	}
	return v
}

func (s *Server) analytics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	def := services.DefaultProfitInput
	profit := services.ProfitInput{
		GoodsCost:         floatParam(r, "goodsCost", def.GoodsCost),
		OperatingExpenses: floatParam(r, "operatingExpenses", def.OperatingExpenses),
		DeductibleRate:    floatParam(r, "deductibleRate", def.DeductibleRate),
	}
	RespondWithJSON(w, http.StatusOK, s.cafe.Report(r.Context(), profit))
}

func (s *Server) dailyStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
		return
	}
	RespondWithJSON(w, http.StatusOK, services.DailyStats(s.cafe.Orders.History(r.Context()), date))
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries := s.cafe.Expenses.List(r.Context())
	if entries == nil {
		entries = []models.ExpenseEntry{}
	}
	RespondWithJSON(w, http.StatusOK, entries)
}

func (s *Server) addExpense(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var form services.ExpenseForm
	if !decodeJSON(w, r, &form) {
		return
	}
	entry, err := s.cafe.Expenses.Add(r.Context(), form)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, entry)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.cafe.Expenses.Delete(r.Context(), ps.ByName("id"))
	w.WriteHeader(http.StatusNoContent)
}
