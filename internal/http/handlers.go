package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/booth-auction-manager/internal/domain"
	"github.com/robertarktes/booth-auction-manager/internal/engine"
	"github.com/robertarktes/booth-auction-manager/internal/idempotency"
)

// Handlers adapts HTTP requests onto engine operations. Validation failures
// come back as HTTP 200 with success=false in the body; the UI branches on
// the body, and the bid-limit rejection carries kind="bid_limit" so callers
// can route it to the dedicated limit dialog.
type Handlers struct {
	eng   *engine.Engine
	idemp *idempotency.Idempotency
}

func NewHandlers(eng *engine.Engine, idemp *idempotency.Idempotency) *Handlers {
	return &Handlers{eng: eng, idemp: idemp}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, res domain.Result) {
	writeJSON(w, http.StatusOK, res)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// ---- vendor-facing ----

func (h *Handlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.StateSnapshot())
}

func (h *Handlers) ListBooths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.ListBooths())
}

func (h *Handlers) GetBooth(w http.ResponseWriter, r *http.Request) {
	b, err := h.eng.GetBooth(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "booth not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) BoothBids(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.BoothBids(chi.URLParam(r, "id")))
}

func (h *Handlers) PlaceBid(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	if existing, err := h.idemp.Get(r.Context(), key); err == nil && existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		Vendor   string  `json:"vendor"`
		Amount   float64 `json:"amount"`
		Circuits int     `json:"circuits"`
	}
	if !decode(w, r, &req) {
		return
	}
	res := h.eng.PlaceBid(r.Context(), req.Vendor, chi.URLParam(r, "id"), req.Amount, req.Circuits)

	data, _ := json.Marshal(res)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusOK, Result: data})
}

func (h *Handlers) RemoveBid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vendor string `json:"vendor"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.RemoveBid(r.Context(), req.Vendor, chi.URLParam(r, "id")))
}

func (h *Handlers) RequestBuyOut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vendor   string `json:"vendor"`
		Circuits int    `json:"circuits"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.RequestBuyOut(r.Context(), req.Vendor, chi.URLParam(r, "id"), req.Circuits))
}

func (h *Handlers) DirectBuyOut(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	if existing, err := h.idemp.Get(r.Context(), key); err == nil && existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		Vendor   string `json:"vendor"`
		Circuits int    `json:"circuits"`
	}
	if !decode(w, r, &req) {
		return
	}
	res := h.eng.DirectBuyOut(r.Context(), req.Vendor, chi.URLParam(r, "id"), req.Circuits)

	data, _ := json.Marshal(res)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusOK, Result: data})
}

func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.eng.SubmitPayment(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handlers) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vendor string `json:"vendor"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.ToggleWatchlist(r.Context(), req.Vendor, chi.URLParam(r, "id")))
}

func (h *Handlers) VendorNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.VendorNotifications(chi.URLParam(r, "vendor")))
}

func (h *Handlers) VendorWatchlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.VendorWatchlist(chi.URLParam(r, "vendor")))
}

// ---- admin ----

func (h *Handlers) AddBooth(w http.ResponseWriter, r *http.Request) {
	var booth domain.Booth
	if !decode(w, r, &booth) {
		return
	}
	writeResult(w, h.eng.AddBooth(r.Context(), booth))
}

func (h *Handlers) UpdateBooth(w http.ResponseWriter, r *http.Request) {
	var booth domain.Booth
	if !decode(w, r, &booth) {
		return
	}
	writeResult(w, h.eng.UpdateBooth(r.Context(), chi.URLParam(r, "id"), booth))
}

func (h *Handlers) BulkUpdateBooths(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BoothIDs    []string           `json:"booth_ids"`
		Action      string             `json:"action"`
		NewStatus   domain.BoothStatus `json:"new_status,omitempty"`
		ExtendHours int                `json:"extend_hours,omitempty"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.BulkUpdateBooths(r.Context(), req.BoothIDs, engine.BulkAction{
		Kind:        req.Action,
		NewStatus:   req.NewStatus,
		ExtendHours: req.ExtendHours,
	}))
}

func (h *Handlers) BoothBuyoutRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.BoothBuyoutRequests(chi.URLParam(r, "id")))
}

func (h *Handlers) ApproveBuyOut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vendor string `json:"vendor"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.ApproveBuyOut(r.Context(), chi.URLParam(r, "id"), req.Vendor))
}

func (h *Handlers) ConfirmBid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BidID string `json:"bid_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.ConfirmBid(r.Context(), chi.URLParam(r, "id"), req.BidID))
}

func (h *Handlers) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.eng.ConfirmPayment(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handlers) RevokeBid(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.eng.RevokeBid(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handlers) AssignBooth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vendor string  `json:"vendor"`
		Price  float64 `json:"price"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.AssignBoothToVendor(r.Context(), chi.URLParam(r, "id"), req.Vendor, req.Price))
}

func (h *Handlers) UnassignBooth(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.eng.UnassignBooth(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handlers) AddLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.AddLocation(r.Context(), req.Name))
}

func (h *Handlers) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.eng.DeleteLocation(r.Context(), chi.URLParam(r, "name")))
}

func (h *Handlers) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.NotifyAllVendors(r.Context(), req.Title, req.Message))
}

func (h *Handlers) BroadcastHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.BroadcastHistory())
}

func (h *Handlers) SetEventStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.EventStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.eng.SetEventStatus(r.Context(), req.Status))
}

func (h *Handlers) AuditLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.AuditLog())
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
