package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"cafe-storefront/models"
	"cafe-storefront/services"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

func (s *Server) addOrderRoutes(router *httprouter.Router) {
	router.POST("/api/checkout", s.limiter.Limit(s.checkout))
	router.GET("/api/orders", s.limiter.Limit(s.getOrders))
	router.POST("/api/orders/:id/reorder", s.limiter.Limit(s.reorder))
	router.GET("/api/orders/:id/receipt", s.limiter.Limit(s.getReceipt))
	router.GET("/api/orders/:id/track", s.limiter.Limit(s.getTracking))
	router.GET("/ws/orders/:id/track", s.trackOrder)
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session(w, r)
	var req services.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Session = sess
	order, err := s.cafe.Checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			// client went away mid-checkout
			return
		}
		s.respondErr(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, order)
}

// getOrders lists the caller's own orders, newest first.
func (s *Server) getOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sess := session(w, r)
	orders := services.SessionHistory(s.cafe.Orders.History(r.Context()), sess)
	if orders == nil {
		orders = []models.Order{}
	}
	RespondWithJSON(w, http.StatusOK, orders)
}

func (s *Server) reorder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess := session(w, r)
	if _, ok := s.ownOrder(r, sess, ps.ByName("id")); !ok {
		RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if _, err := s.cafe.Checkout.Reorder(r.Context(), sess, ps.ByName("id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondQuote(w, r, sess)
}

// ownOrder finds an order placed by sess.
func (s *Server) ownOrder(r *http.Request, sess, id string) (models.Order, bool) {
	o, ok := s.cafe.Orders.Find(r.Context(), id)
	if !ok || o.Session != sess {
		return models.Order{}, false
	}
	return o, true
}

func (s *Server) getReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, ok := s.ownOrder(r, session(w, r), ps.ByName("id"))
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	pdf, err := services.RenderReceipt(o, s.cafe.Catalog.Settings().CafeName)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ReceiptFileName(o)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) getTracking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	st, ok := s.cafe.Tracker.Status(ps.ByName("id"))
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Order is not being tracked")
		return
	}
	RespondWithJSON(w, http.StatusOK, st)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

const trackWriteTimeout = 10 * time.Second

// trackOrder streams stage updates until the order is delivered or the
// client disconnects. Disconnecting does not affect the order.
func (s *Server) trackOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	updates, cancel, ok := s.cafe.Tracker.Watch(id)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Order is not being tracked")
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case u := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(trackWriteTimeout))
			if err := conn.WriteJSON(u); err != nil {
				return
			}
			if u.Final {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "delivered"))
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
