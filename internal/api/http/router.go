package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func NewRouter(handler *Handler, jwtSecret []byte) http.Handler {
	r := mux.NewRouter()
	r.Use(LogRequests)
	handler.RegisterRoutes(r)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(RequireAdmin(jwtSecret))
	handler.RegisterAdminRoutes(admin)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}
