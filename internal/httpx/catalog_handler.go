package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/campuskart/api/internal/catalog"
	"github.com/campuskart/api/internal/market"
	"github.com/campuskart/api/internal/notifier"
	"github.com/campuskart/api/internal/ratings"
)

type CatalogHandler struct {
	Catalog *catalog.Service
	Ratings *ratings.Service
	Redis   *redis.Client
}

type itemReq struct {
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Stock      int    `json:"stock"`
	Category   string `json:"category"`
}

type rateReq struct {
	Rating int `json:"rating"`
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/items", h.browse)
	r.Post("/items", h.create)
	r.Get("/my-items", h.mine)
	r.Get("/items/{id}", h.get)
	r.Put("/items/{id}", h.update)
	r.Delete("/items/{id}", h.remove)
	r.Post("/items/{id}/rate", h.rate)
	r.Get("/notifications", h.notifications)
}

func (h *CatalogHandler) create(w http.ResponseWriter, r *http.Request) {
	var req itemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	it, err := h.Catalog.Create(r.Context(), Principal(r.Context()), req.Name, req.PriceCents, req.Stock, market.Category(req.Category))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *CatalogHandler) update(w http.ResponseWriter, r *http.Request) {
	var req itemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	err := h.Catalog.Update(r.Context(), Principal(r.Context()), chi.URLParam(r, "id"),
		req.Name, req.PriceCents, req.Stock, market.Category(req.Category))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	it, err := h.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *CatalogHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Delete(r.Context(), Principal(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CatalogHandler) mine(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Mine(r.Context(), Principal(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.writeItems(w, items)
}

func (h *CatalogHandler) browse(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Browse(r.Context(), Principal(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.writeItems(w, items)
}

func (h *CatalogHandler) writeItems(w http.ResponseWriter, items []market.Item) {
	if items == nil {
		items = []market.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) rate(w http.ResponseWriter, r *http.Request) {
	var req rateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	avg, err := h.Ratings.Rate(r.Context(), Principal(r.Context()), chi.URLParam(r, "id"), req.Rating)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "seller_average_rating": avg})
}

func (h *CatalogHandler) notifications(w http.ResponseWriter, r *http.Request) {
	feed, err := notifier.Feed(r.Context(), h.Redis, Principal(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}
