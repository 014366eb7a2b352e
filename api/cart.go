package api

import (
	"net/http"

	"cafe-storefront/models"
	"cafe-storefront/services"

	"github.com/julienschmidt/httprouter"
)

// quoteResponse is a priced cart as sent to clients.
type quoteResponse struct {
	Items          []models.CartLine `json:"items"`
	ItemCount      int               `json:"itemCount"`
	Subtotal       float64           `json:"subtotal"`
	Discount       float64           `json:"discount"`
	Total          float64           `json:"total"`
	FormattedTotal string            `json:"formattedTotal"`
	VoucherCode    string            `json:"voucherCode,omitempty"`
	VoucherError   string            `json:"voucherError,omitempty"`
}

func newQuoteResponse(q services.Quote) quoteResponse {
	items := q.Lines
	if items == nil {
		items = []models.CartLine{}
	}
	return quoteResponse{
		Items:          items,
		ItemCount:      q.ItemCount,
		Subtotal:       services.Money(q.Subtotal),
		Discount:       services.Money(q.Discount),
		Total:          services.Money(q.Total),
		FormattedTotal: services.FormatPeso(q.Total),
		VoucherCode:    q.VoucherCode,
		VoucherError:   q.VoucherError,
	}
}

func (s *Server) addCartRoutes(router *httprouter.Router) {
	router.GET("/api/cart", s.limiter.Limit(s.getCart))
	router.POST("/api/cart/items", s.limiter.Limit(s.addCartItem))
	router.PUT("/api/cart/items/:name", s.limiter.Limit(s.updateCartItem))
	router.DELETE("/api/cart/items/:name", s.limiter.Limit(s.removeCartItem))
	router.DELETE("/api/cart", s.limiter.Limit(s.clearCart))
	router.POST("/api/cart/voucher", s.limiter.Limit(s.applyVoucher))
	router.DELETE("/api/cart/voucher", s.limiter.Limit(s.removeVoucher))

	router.GET("/api/favorites", s.limiter.Limit(s.getFavorites))
	router.PUT("/api/favorites/:name", s.limiter.Limit(s.addFavorite))
	router.DELETE("/api/favorites/:name", s.limiter.Limit(s.removeFavorite))

	router.GET("/api/notifications", s.limiter.Limit(s.getNotifications))
	router.DELETE("/api/notifications/:id", s.limiter.Limit(s.dismissNotification))
}

func (s *Server) respondQuote(w http.ResponseWriter, r *http.Request, sess string) {
	RespondWithJSON(w, http.StatusOK, newQuoteResponse(s.cafe.Carts.Quote(r.Context(), sess)))
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.respondQuote(w, r, session(w, r))
}

type addItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session(w, r)
	var req addItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if _, err := s.cafe.AddToCart(r.Context(), sess, req.ID, req.Quantity); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondQuote(w, r, sess)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session(w, r)
	var req quantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.cafe.Carts.UpdateQuantity(r.Context(), sess, ps.ByName("name"), req.Quantity)
	s.respondQuote(w, r, sess)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session(w, r)
	s.cafe.Carts.RemoveItem(r.Context(), sess, ps.ByName("name"))
	s.respondQuote(w, r, sess)
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session(w, r)
	s.cafe.Carts.Clear(r.Context(), sess)
	s.respondQuote(w, r, sess)
}

type voucherRequest struct {
	Code string `json:"code"`
}

// applyVoucher answers a rejected code with 400 and the unchanged quote.
func (s *Server) applyVoucher(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session(w, r)
	var req voucherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := s.cafe.Carts.ApplyVoucher(r.Context(), sess, req.Code)
	if err != nil {
		RespondWithJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "cart": newQuoteResponse(q)})
		return
	}
	RespondWithJSON(w, http.StatusOK, newQuoteResponse(q))
}

func (s *Server) removeVoucher(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session(w, r)
	RespondWithJSON(w, http.StatusOK, newQuoteResponse(s.cafe.Carts.RemoveVoucher(r.Context(), sess)))
}

func (s *Server) getFavorites(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session(w, r)
	RespondWithJSON(w, http.StatusOK, nonNil(s.cafe.Favorites.List(r.Context(), sess)))
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session(w, r)
	RespondWithJSON(w, http.StatusOK, nonNil(s.cafe.Favorites.Add(r.Context(), sess, ps.ByName("name"))))
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session(w, r)
	RespondWithJSON(w, http.StatusOK, nonNil(s.cafe.Favorites.Remove(r.Context(), sess, ps.ByName("name"))))
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func (s *Server) getNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	RespondWithJSON(w, http.StatusOK, s.cafe.Feed.List(session(w, r)))
}

func (s *Server) dismissNotification(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.cafe.Feed.Dismiss(session(w, r), ps.ByName("id"))
	w.WriteHeader(http.StatusNoContent)
}
