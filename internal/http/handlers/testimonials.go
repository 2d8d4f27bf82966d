package handlers

import (
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

type TestimonialsHandler struct {
	testimonials store.Collection
}

func NewTestimonialsHandler(testimonials store.Collection) *TestimonialsHandler {
	return &TestimonialsHandler{testimonials: testimonials}
}

func (h *TestimonialsHandler) Create(ctx *gin.Context) {
	insertBody(ctx, h.testimonials, "testimonials.insert", "New Testimonial Added successfully!")
}

func (h *TestimonialsHandler) List(ctx *gin.Context) {
	listDocuments(ctx, h.testimonials, "testimonials.list", store.Filter{}, 0, "Testimonial are Retrieved successfully!")
}
