package dummyjson

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"kirana/utils"
)

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	opts := utils.ParseQueryOptions(r)

	var page interface{}
	if opts.Search != "" {
		page = h.Client.Search(r.Context(), opts.Search, opts.Limit, opts.Skip)
	} else {
		page = h.Client.List(r.Context(), opts.Limit, opts.Skip)
	}
	utils.RespondWithJSON(w, http.StatusOK, page)
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.Atoi(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	p, err := h.Client.Get(r.Context(), id)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}
