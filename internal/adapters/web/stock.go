package web

import (
	"net/http"
	"strconv"

	"inventory-api/internal/app"
)

// checkReplenishment handles POST /api/replenishment/check.
// Body: { location_id?, trigger_type?, force_check? } — all optional; an empty
// body sweeps every eligible destination.
func (h *Handler) checkReplenishment(w http.ResponseWriter, r *http.Request) {
	var req app.CheckReplenishmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorStatus(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result, err := h.svc.CheckReplenishment(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Summary)
}

// listStock handles GET /api/stock. Query param: location_id (optional).
func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	var locationID *int
	if v := r.URL.Query().Get("location_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeErrorStatus(w, r, http.StatusBadRequest, "location_id must be an integer")
			return
		}
		locationID = &id
	}

	result, err := h.svc.GetStockLevels(r.Context(), locationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Levels)
}

// receiveStock handles POST /api/stock/receive.
// Body: { location_id, product_id, quantity, unit_cost, notes? }
func (h *Handler) receiveStock(w http.ResponseWriter, r *http.Request) {
	var req app.ReceiveStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ReceiveStock(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Entry)
}

// adjustStock handles POST /api/stock/adjust.
// Body: { location_id, product_id, delta, notes? }
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req app.AdjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.AdjustStock(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Entry)
}
