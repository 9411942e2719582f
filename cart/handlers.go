package cart

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kirana/models"
	"kirana/utils"
)

type Handler struct {
	Cart *Aggregate
}

func NewHandler(agg *Aggregate) *Handler {
	return &Handler{Cart: agg}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"items":       h.Cart.Items(ctx),
		"totalItems":  h.Cart.TotalItems(ctx),
		"totalAmount": h.Cart.TotalAmount(ctx),
	})
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var snap models.ProductSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		log.Println("AddToCart decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if snap.ProductID == "" || snap.Title == "" || snap.Price < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing or invalid fields")
		return
	}

	if err := h.Cart.AddItem(r.Context(), snap); err != nil {
		log.Println("AddToCart error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add to cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := h.Cart.SetQuantity(r.Context(), ps.ByName("productid"), payload.Qty); err != nil {
		log.Println("UpdateQuantity error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update quantity")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.Cart.RemoveItem(r.Context(), ps.ByName("productid")); err != nil {
		log.Println("RemoveFromCart error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to remove item")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.Cart.Clear(r.Context()); err != nil {
		log.Println("ClearCart error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
