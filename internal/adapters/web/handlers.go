package web

import (
	"net/http"

	"inventory-api/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// Replenishment engine
	r.Post("/api/replenishment/check", h.checkReplenishment)

	// Transfer lifecycle
	r.Get("/api/transfers", h.listTransfers)
	r.Post("/api/transfers", h.createTransfer)
	r.Get("/api/transfers/{transferID}", h.getTransfer)
	r.Post("/api/transfers/{transferID}/approve", h.approveTransfer)
	r.Post("/api/transfers/{transferID}/dispatch", h.dispatchTransfer)
	r.Post("/api/transfers/{transferID}/receive", h.receiveTransfer)
	r.Post("/api/transfers/{transferID}/cancel", h.cancelTransfer)

	// Stock
	r.Get("/api/stock", h.listStock)
	r.Post("/api/stock/receive", h.receiveStock)
	r.Post("/api/stock/adjust", h.adjustStock)

	// Master data
	r.Get("/api/locations", h.listLocations)
	r.Post("/api/locations", h.createLocation)
	r.Get("/api/products", h.listProducts)
	r.Post("/api/products", h.createProduct)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Service string `json:"service"`
	}
	writeSuccess(w, http.StatusOK, response{Service: "inventory-api"})
}

// transferID extracts the {transferID} URL parameter.
func transferID(r *http.Request) string {
	return chi.URLParam(r, "transferID")
}
