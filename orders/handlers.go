package orders

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kirana/cart"
	"kirana/errs"
	"kirana/models"
	"kirana/utils"
)

// Handler exposes the ledger over HTTP. Checkout also touches the cart:
// a full-cart purchase clears it, a buy-now purchase leaves it alone.
type Handler struct {
	Ledger *Ledger
	Cart   *cart.Aggregate
}

func NewHandler(ledger *Ledger, agg *cart.Aggregate) *Handler {
	return &Handler{Ledger: ledger, Cart: agg}
}

type buyNowItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	Image     string  `json:"image,omitempty"`
}

type checkoutRequest struct {
	BuyNow  *buyNowItem `json:"buyNow,omitempty"`
	Name    string      `json:"name"`
	Address string      `json:"address"`
	City    string      `json:"city"`
	Pincode string      `json:"pincode"`
	Payment string      `json:"payment"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Println("Checkout decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var items []models.OrderItem
	fromCart := req.BuyNow == nil
	if fromCart {
		for _, line := range h.Cart.Items(ctx) {
			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Name:      line.Title,
				Price:     line.Price,
				Qty:       line.Qty,
				Image:     line.Thumbnail,
			})
		}
	} else {
		items = []models.OrderItem{{
			ProductID: req.BuyNow.ProductID,
			Name:      req.BuyNow.Title,
			Price:     req.BuyNow.Price,
			Qty:       req.BuyNow.Qty,
			Image:     req.BuyNow.Image,
		}}
	}

	o, err := h.Ledger.Place(ctx, PlaceInput{
		Items: items,
		ShippingAddress: models.ShippingAddress{
			Address: req.Address,
			City:    req.City,
			Pincode: req.Pincode,
		},
		PaymentMethod: req.Payment,
		UserID:        userID,
		UserName:      req.Name,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	// Only a full-cart checkout empties the cart.
	if fromCart {
		if err := h.Cart.Clear(ctx); err != nil {
			log.Println("Checkout: failed to clear cart:", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, o)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h.Ledger.ListForUser(r.Context(), userID))
}

func (h *Handler) AllOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, h.Ledger.ListAll(r.Context()))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	o, err := h.Ledger.UpdateStatus(r.Context(), ps.ByName("orderid"), payload.Status)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, o)
}

func writeLedgerError(w http.ResponseWriter, err error) {
	var ve *errs.ValidationError
	var nf *errs.NotFoundError
	switch {
	case errors.As(err, &ve):
		utils.RespondWithError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		utils.RespondWithError(w, http.StatusNotFound, nf.Error())
	default:
		log.Println("orders: mutation failed:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Operation failed")
	}
}
