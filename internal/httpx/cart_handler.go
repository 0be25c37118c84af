package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuskart/api/internal/cart"
)

type CartHandler struct {
	Cart *cart.Service
}

type cartLineReq struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Post("/cart/add", h.add)
	r.Put("/cart/update", h.update)
	r.Delete("/cart/remove/{itemID}", h.remove)
	r.Get("/cart", h.read)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing item_id"})
		return
	}
	if err := h.Cart.Add(r.Context(), Principal(r.Context()), req.ItemID, req.Qty); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing item_id"})
		return
	}
	if err := h.Cart.UpdateQuantity(r.Context(), Principal(r.Context()), req.ItemID, req.Qty); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if err := h.Cart.Remove(r.Context(), Principal(r.Context()), itemID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) read(w http.ResponseWriter, r *http.Request) {
	lines, err := h.Cart.Read(r.Context(), Principal(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}
