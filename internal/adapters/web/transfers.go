package web

import (
	"net/http"
	"strconv"

	"inventory-api/internal/app"
	"inventory-api/internal/core"
)

// listTransfers handles GET /api/transfers.
// Query params: status, from, to, request_type (all optional).
func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := core.TransferFilters{
		Status:      q.Get("status"),
		RequestType: q.Get("request_type"),
	}
	if v := q.Get("from"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeErrorStatus(w, r, http.StatusBadRequest, "from must be a location ID")
			return
		}
		filters.FromLocationID = id
	}
	if v := q.Get("to"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeErrorStatus(w, r, http.StatusBadRequest, "to must be a location ID")
			return
		}
		filters.ToLocationID = id
	}

	result, err := h.svc.ListTransfers(r.Context(), filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Transfers)
}

// createTransfer handles POST /api/transfers.
// Body: { from_location, to_location, created_by, request_type?, notes?, items: [{product_id, quantity}] }
func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req app.CreateTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateTransfer(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, result.Transfer)
}

// getTransfer handles GET /api/transfers/{transferID}.
func (h *Handler) getTransfer(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetTransfer(r.Context(), transferID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Transfer)
}

// approveTransfer handles POST /api/transfers/{transferID}/approve.
func (h *Handler) approveTransfer(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ApproveTransfer(r.Context(), transferID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Transfer)
}

// dispatchTransfer handles POST /api/transfers/{transferID}/dispatch.
func (h *Handler) dispatchTransfer(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.DispatchTransfer(r.Context(), transferID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Transfer)
}

// receiveTransfer handles POST /api/transfers/{transferID}/receive.
// Body: { received_items?: [{product_id, received_quantity}] } — items without
// an override receive their full requested quantity.
func (h *Handler) receiveTransfer(w http.ResponseWriter, r *http.Request) {
	var req app.ReceiveTransferRequest
	// An empty body means full receipt of every line; a malformed one is
	// rejected before any state change.
	if err := decodeBody(r, &req); err != nil {
		writeErrorStatus(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	req.TransferID = transferID(r)

	result, err := h.svc.ReceiveTransfer(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Transfer)
}

// cancelTransfer handles POST /api/transfers/{transferID}/cancel.
func (h *Handler) cancelTransfer(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CancelTransfer(r.Context(), transferID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, result.Transfer)
}
