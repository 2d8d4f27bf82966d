package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

type SuppliesHandler struct {
	supplies    store.Collection
	filterLimit int64
}

func NewSuppliesHandler(supplies store.Collection, filterLimit int) *SuppliesHandler {
	return &SuppliesHandler{
		supplies:    supplies,
		filterLimit: int64(filterLimit),
	}
}

func (h *SuppliesHandler) Create(ctx *gin.Context) {
	insertBody(ctx, h.supplies, "supplies.insert", "New Supply Added successfully!")
}

func (h *SuppliesHandler) List(ctx *gin.Context) {
	listDocuments(ctx, h.supplies, "supplies.list", store.Filter{}, 0, "Supplies are retrieved successfully!")
}

// Featured returns the first few supplies in natural order.
func (h *SuppliesHandler) Featured(ctx *gin.Context) {
	listDocuments(ctx, h.supplies, "supplies.featured", store.Filter{}, h.filterLimit, "Supplies are retrieved successfully!")
}

func (h *SuppliesHandler) Get(ctx *gin.Context) {
	findByID(ctx, h.supplies, "supplies.get", "Supplies is retrieved successfully!", nil)
}

// Update merges the body into the supply and answers with the updated
// document, or null when the id matches nothing.
func (h *SuppliesHandler) Update(ctx *gin.Context) {
	filter, err := store.IDFilter(ctx.Param("id"))
	if err != nil {
		respondStoreFault(ctx, "supplies.update", err)
		return
	}

	body, ok := bindDocument(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	doc, err := h.supplies.FindOneAndUpdate(cctx, filter, store.Document(body))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondStoreFault(ctx, "supplies.update", err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, "Supplies is updated successfully!", nullable(doc))
}

func (h *SuppliesHandler) Delete(ctx *gin.Context) {
	filter, err := store.IDFilter(ctx.Param("id"))
	if err != nil {
		respondStoreFault(ctx, "supplies.delete", err)
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	res, err := h.supplies.DeleteOne(cctx, filter)
	if err != nil {
		respondStoreFault(ctx, "supplies.delete", err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, "Supplies is deleted successfully!", res)
}
