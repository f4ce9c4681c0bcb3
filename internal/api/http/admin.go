package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"greek-irini/internal/domain"
	"greek-irini/internal/service"
)

// RegisterAdminRoutes mounts the staff console API on r, usually the
// /api/admin subrouter.
func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/orders", h.listOrders).Methods("GET")
	r.HandleFunc("/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/orders/{id}/status", h.updateOrderStatus).Methods("PUT")
	r.HandleFunc("/orders/{id}/payment-status", h.updatePaymentStatus).Methods("PUT")
	r.HandleFunc("/orders/{id}/notes", h.addStaffNote).Methods("POST")
	r.HandleFunc("/orders/{id}/driver", h.assignDriver).Methods("PUT")
	r.HandleFunc("/orders/{id}/start-delivery", h.startDelivery).Methods("POST")
	r.HandleFunc("/orders/{id}/print", h.printReceipt).Methods("POST")
	r.HandleFunc("/print-jobs/{jobId}", h.getPrintJob).Methods("GET")
	r.HandleFunc("/print-jobs/{jobId}", h.cancelPrintJob).Methods("DELETE")

	r.HandleFunc("/analytics", h.getAnalytics).Methods("GET")
	r.HandleFunc("/analytics.xlsx", h.exportAnalytics).Methods("GET")

	r.HandleFunc("/menu", h.listAllMenu).Methods("GET")
	r.HandleFunc("/menu", h.createMenuItem).Methods("POST")
	r.HandleFunc("/menu/{id}", h.updateMenuItem).Methods("PATCH")
	r.HandleFunc("/menu/{id}/toggle", h.toggleMenuItem).Methods("POST")
	r.HandleFunc("/menu/{id}", h.deleteMenuItem).Methods("DELETE")

	r.HandleFunc("/settings", h.getSettings).Methods("GET")
	r.HandleFunc("/settings", h.updateSettings).Methods("PUT")
	r.HandleFunc("/settings/reset", h.resetSettings).Methods("POST")

	r.HandleFunc("/content", h.putContent).Methods("PUT")

	r.HandleFunc("/drivers", h.listDrivers).Methods("GET")
	r.HandleFunc("/drivers/available", h.availableDrivers).Methods("GET")
	r.HandleFunc("/drivers", h.createDriver).Methods("POST")
	r.HandleFunc("/drivers/{id}/status", h.setDriverStatus).Methods("PUT")
	r.HandleFunc("/drivers/{id}", h.deleteDriver).Methods("DELETE")

	r.HandleFunc("/reservations", h.listReservations).Methods("GET")
	r.HandleFunc("/reservations/{id}/status", h.setReservationStatus).Methods("PUT")
	r.HandleFunc("/reservations/{id}/notes", h.setReservationNotes).Methods("PUT")
	r.HandleFunc("/reservations/{id}/confirm", h.confirmReservation).Methods("POST")
	r.HandleFunc("/reservations/{id}/reject", h.rejectReservation).Methods("POST")

	r.HandleFunc("/refresh", h.refresh).Methods("POST")
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	asc, _ := strconv.ParseBool(q.Get("asc"))
	writeJSON(w, http.StatusOK, h.Orders.List(service.OrderQuery{
		View:   service.OrderView(q.Get("view")),
		Search: q.Get("search"),
		Status: domain.OrderStatus(q.Get("status")),
		SortBy: q.Get("sort"),
		Asc:    asc,
	}))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.UpdateStatus(r.Context(), mux.Vars(r)["id"], domain.OrderStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.UpdatePaymentStatus(r.Context(), mux.Vars(r)["id"], domain.PaymentStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) addStaffNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text"`
		Author string `json:"author"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Author == "" {
		req.Author = adminSubject(r)
	}
	order, err := h.Orders.AddStaffNote(r.Context(), mux.Vars(r)["id"], req.Text, req.Author)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) assignDriver(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DriverID string `json:"driver_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.AssignDriver(r.Context(), mux.Vars(r)["id"], req.DriverID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) startDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if !decode(w, r, &req) {
		return
	}
	order, err := h.Orders.StartDelivery(r.Context(), mux.Vars(r)["id"], req.Minutes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) printReceipt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.Orders.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.Printer.Start(id))
}

func (h *Handler) getPrintJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Printer.Job(mux.Vars(r)["jobId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) cancelPrintJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Printer.Cancel(mux.Vars(r)["jobId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func periodParam(w http.ResponseWriter, r *http.Request) (service.Period, bool) {
	p, ok := service.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "period must be daily, weekly or monthly"})
	}
	return p, ok
}

func (h *Handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	p, ok := periodParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Analytics.Report(p))
}

func (h *Handler) exportAnalytics(w http.ResponseWriter, r *http.Request) {
	p, ok := periodParam(w, r)
	if !ok {
		return
	}
	data, err := h.Analytics.Export(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="analytics-%s.xlsx"`, p))
	w.Write(data)
}

func (h *Handler) listAllMenu(w http.ResponseWriter, r *http.Request) {
	category := domain.MenuCategory(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, h.Menu.List(category, true))
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var item domain.MenuItem
	if !decode(w, r, &item) {
		return
	}
	created, err := h.Menu.Create(r.Context(), item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var patch domain.MenuItemPatch
	if !decode(w, r, &patch) {
		return
	}
	item, err := h.Menu.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) toggleMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.Menu.ToggleAvailability(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Menu.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if !decode(w, r, &patch) {
		return
	}
	settings, err := h.Settings.Update(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) resetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Settings.Reset(r.Context()))
}

func (h *Handler) putContent(w http.ResponseWriter, r *http.Request) {
	var c domain.SiteContent
	if !decode(w, r, &c) {
		return
	}
	saved, err := h.Content.Put(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) listDrivers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Drivers.List())
}

func (h *Handler) availableDrivers(w http.ResponseWriter, r *http.Request) {
	drivers := h.Drivers.Available()
	if drivers == nil {
		drivers = []domain.Driver{}
	}
	writeJSON(w, http.StatusOK, drivers)
}

func (h *Handler) createDriver(w http.ResponseWriter, r *http.Request) {
	var d domain.Driver
	if !decode(w, r, &d) {
		return
	}
	created, err := h.Drivers.Create(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) setDriverStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.Drivers.SetStatus(r.Context(), mux.Vars(r)["id"], domain.DriverStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) deleteDriver(w http.ResponseWriter, r *http.Request) {
	if err := h.Drivers.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	status := domain.ReservationStatus(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, h.Reservations.List(status))
}

func (h *Handler) setReservationStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Reservations.SetStatus(r.Context(), mux.Vars(r)["id"], domain.ReservationStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) setReservationNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Reservations.SetNotes(r.Context(), mux.Vars(r)["id"], req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type reservationReply struct {
	Reservation domain.Reservation `json:"reservation"`
	EmailSent   bool               `json:"email_sent"`
	Message     string             `json:"message"`
}

type reservationMailRequest struct {
	Notes       string `json:"notes"`
	Alternative string `json:"alternative"`
	Language    string `json:"language"`
}

func (req reservationMailRequest) language() domain.Language {
	if lang, ok := domain.ParseLanguage(req.Language); ok {
		return lang
	}
	return domain.LangDutch
}

func (h *Handler) confirmReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationMailRequest
	if !decode(w, r, &req) {
		return
	}
	res, mail, err := h.Reservations.Confirm(r.Context(), mux.Vars(r)["id"], req.Notes, req.language())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationReply{Reservation: res, EmailSent: mail.Success, Message: mail.Message})
}

func (h *Handler) rejectReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationMailRequest
	if !decode(w, r, &req) {
		return
	}
	res, mail, err := h.Reservations.Reject(r.Context(), mux.Vars(r)["id"], req.Alternative, req.language())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationReply{Reservation: res, EmailSent: mail.Success, Message: mail.Message})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if h.Refresh == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "record store not configured"})
		return
	}
	writeJSON(w, http.StatusOK, h.Refresh(r.Context()))
}
