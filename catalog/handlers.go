package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"kirana/errs"
	"kirana/models"
	"kirana/utils"
)

// Handler exposes the products repository over HTTP.
type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

type productView struct {
	models.Product
	LowStock bool `json:"lowStock"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	items := h.Repo.List(r.Context())
	views := make([]productView, 0, len(items))
	for _, p := range items {
		views = append(views, productView{Product: p, LowStock: p.LowStock()})
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := h.Repo.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var draft models.Product
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		log.Println("CreateProduct decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	p, err := h.Repo.Create(r.Context(), draft)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch models.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Println("UpdateProduct decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	p, err := h.Repo.Update(r.Context(), ps.ByName("id"), patch)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	// Deletion confirmation is a UI concern; by the time the request lands
	// here it is taken as confirmed.
	if err := h.Repo.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeRepoError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeRepoError(w http.ResponseWriter, err error) {
	var ve *errs.ValidationError
	var nf *errs.NotFoundError
	switch {
	case errors.As(err, &ve):
		utils.RespondWithError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		utils.RespondWithError(w, http.StatusNotFound, nf.Error())
	default:
		log.Println("catalog: mutation failed:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Operation failed")
	}
}
