package handlers

import (
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

type VolunteersHandler struct {
	volunteers  store.Collection
	filterLimit int64
}

func NewVolunteersHandler(volunteers store.Collection, filterLimit int) *VolunteersHandler {
	return &VolunteersHandler{
		volunteers:  volunteers,
		filterLimit: int64(filterLimit),
	}
}

func (h *VolunteersHandler) Create(ctx *gin.Context) {
	insertBody(ctx, h.volunteers, "volunteers.insert", "New Volunteer Added successfully!")
}

func (h *VolunteersHandler) List(ctx *gin.Context) {
	listDocuments(ctx, h.volunteers, "volunteers.list", store.Filter{}, 0, "volunteers are retrieved successfully!")
}

func (h *VolunteersHandler) Featured(ctx *gin.Context) {
	listDocuments(ctx, h.volunteers, "volunteers.featured", store.Filter{}, h.filterLimit, "volunteers are retrieved successfully!")
}
