package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"greek-irini/internal/domain"
	"greek-irini/internal/service"
)

// Services is everything the API talks to. Refresh reloads the local state
// from the record store.
type Services struct {
	Menu         service.MenuServiceInterface
	Cart         service.CartServiceInterface
	Checkout     service.CheckoutServiceInterface
	Orders       service.OrderServiceInterface
	Settings     service.SettingsServiceInterface
	Content      service.ContentServiceInterface
	Reservations service.ReservationServiceInterface
	Drivers      service.DriverServiceInterface
	Analytics    service.AnalyticsServiceInterface
	Printer      service.ReceiptPrinterInterface
	Sessions     service.SessionStore
	Refresh      func(ctx context.Context) service.RefreshReport
}

type Handler struct {
	Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{Services: svc}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/menu", h.getMenu).Methods("GET")
	r.HandleFunc("/api/settings", h.getSettings).Methods("GET")
	r.HandleFunc("/api/content", h.getContent).Methods("GET")

	r.HandleFunc("/api/sessions/{sid}/language", h.getLanguage).Methods("GET")
	r.HandleFunc("/api/sessions/{sid}/language", h.setLanguage).Methods("PUT")

	r.HandleFunc("/api/sessions/{sid}/cart", h.getCart).Methods("GET")
	r.HandleFunc("/api/sessions/{sid}/cart", h.clearCart).Methods("DELETE")
	r.HandleFunc("/api/sessions/{sid}/cart/items", h.addCartItem).Methods("POST")
	r.HandleFunc("/api/sessions/{sid}/cart/items/{itemId}", h.updateCartItem).Methods("PATCH")
	r.HandleFunc("/api/sessions/{sid}/cart/items/{itemId}", h.removeCartItem).Methods("DELETE")

	r.HandleFunc("/api/sessions/{sid}/checkout", h.getCheckout).Methods("GET")
	r.HandleFunc("/api/sessions/{sid}/checkout/delivery-type", h.setDeliveryType).Methods("PUT")
	r.HandleFunc("/api/sessions/{sid}/checkout/fields", h.touchField).Methods("POST")
	r.HandleFunc("/api/sessions/{sid}/checkout/details", h.submitDetails).Methods("POST")
	r.HandleFunc("/api/sessions/{sid}/checkout/payment-method", h.setPaymentMethod).Methods("PUT")
	r.HandleFunc("/api/sessions/{sid}/checkout/back", h.checkoutBack).Methods("POST")
	r.HandleFunc("/api/sessions/{sid}/checkout/confirm", h.confirmCheckout).Methods("POST")

	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")

	r.HandleFunc("/api/reservations", h.createReservation).Methods("POST")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "greek-irini",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	category := domain.MenuCategory(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, h.Menu.List(category, false))
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Settings.Get())
}

func (h *Handler) getContent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Content.List(r.URL.Query().Get("section")))
}

type languageRequest struct {
	Language string `json:"language"`
}

func (h *Handler) getLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := h.Sessions.Language(r.Context(), mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, languageRequest{Language: string(lang)})
}

func (h *Handler) setLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if !decode(w, r, &req) {
		return
	}
	lang, ok := domain.ParseLanguage(req.Language)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported language " + req.Language})
		return
	}
	if err := h.Sessions.SetLanguage(r.Context(), mux.Vars(r)["sid"], lang); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, languageRequest{Language: string(lang)})
}

type cartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Quote service.Quote     `json:"quote"`
}

type cartItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Delta    int    `json:"delta"`
}

func deliveryTypeParam(r *http.Request) domain.DeliveryType {
	t := domain.DeliveryType(r.URL.Query().Get("delivery_type"))
	if !t.Valid() {
		return domain.DeliveryTypeDelivery
	}
	return t
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, lines []domain.CartLine) {
	quote, err := h.Cart.Quote(r.Context(), mux.Vars(r)["sid"], deliveryTypeParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	writeJSON(w, http.StatusOK, cartResponse{Lines: lines, Quote: quote})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.Cart.Get(r.Context(), mux.Vars(r)["sid"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCart(w, r, lines)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.Clear(r.Context(), mux.Vars(r)["sid"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	lines, err := h.Cart.Add(r.Context(), mux.Vars(r)["sid"], req.ID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCart(w, r, lines)
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if !decode(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	lines, err := h.Cart.Update(r.Context(), vars["sid"], vars["itemId"], req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCart(w, r, lines)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lines, err := h.Cart.Remove(r.Context(), vars["sid"], vars["itemId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCart(w, r, lines)
}

type checkoutResponse struct {
	Checkout service.CheckoutView `json:"checkout"`
	Error    string               `json:"error,omitempty"`
	Fields   map[string]string    `json:"fields,omitempty"`
}

// writeCheckout sends the wizard view. Failed actions still carry the view so
// the site can render the step it is back on.
func writeCheckout(w http.ResponseWriter, r *http.Request, view service.CheckoutView, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, checkoutResponse{Checkout: view})
		return
	}
	status := statusFor(err)
	resp := checkoutResponse{Checkout: view, Error: err.Error()}
	if fields, ok := service.IsValidation(err); ok {
		resp.Fields = fields.Messages()
	}
	if status == http.StatusInternalServerError {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, resp)
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	view, err := h.Checkout.View(r.Context(), mux.Vars(r)["sid"])
	writeCheckout(w, r, view, err)
}

func (h *Handler) setDeliveryType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeliveryType domain.DeliveryType `json:"delivery_type"`
	}
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Checkout.SetDeliveryType(r.Context(), mux.Vars(r)["sid"], req.DeliveryType)
	writeCheckout(w, r, view, err)
}

func (h *Handler) touchField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field    string              `json:"field"`
		Customer domain.CustomerInfo `json:"customer"`
	}
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Checkout.TouchField(r.Context(), mux.Vars(r)["sid"], req.Field, req.Customer)
	writeCheckout(w, r, view, err)
}

func (h *Handler) submitDetails(w http.ResponseWriter, r *http.Request) {
	var customer domain.CustomerInfo
	if !decode(w, r, &customer) {
		return
	}
	view, err := h.Checkout.SubmitDetails(r.Context(), mux.Vars(r)["sid"], customer)
	writeCheckout(w, r, view, err)
}

func (h *Handler) setPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod domain.PaymentMethod `json:"payment_method"`
	}
	if !decode(w, r, &req) {
		return
	}
	view, err := h.Checkout.SetPaymentMethod(r.Context(), mux.Vars(r)["sid"], req.PaymentMethod)
	writeCheckout(w, r, view, err)
}

func (h *Handler) checkoutBack(w http.ResponseWriter, r *http.Request) {
	view, err := h.Checkout.Back(r.Context(), mux.Vars(r)["sid"])
	writeCheckout(w, r, view, err)
}

func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	view, err := h.Checkout.Confirm(r.Context(), mux.Vars(r)["sid"])
	writeCheckout(w, r, view, err)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.Orders.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	png, err := h.Orders.QRCode(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	var res domain.Reservation
	if !decode(w, r, &res) {
		return
	}
	created, err := h.Reservations.Create(r.Context(), res)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
