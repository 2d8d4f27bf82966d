package handlers

import (
	"net/http"

	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

type CommentsHandler struct {
	comments store.Collection
}

func NewCommentsHandler(comments store.Collection) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

func (h *CommentsHandler) Create(ctx *gin.Context) {
	insertBody(ctx, h.comments, "comments.insert", "New Comments Added successfully!")
}

func (h *CommentsHandler) List(ctx *gin.Context) {
	listDocuments(ctx, h.comments, "comments.list", store.Filter{}, 0, "Comments are retrieved successfully!")
}

// CountByEmail answers with the number of comments posted by :email.
func (h *CommentsHandler) CountByEmail(ctx *gin.Context) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()

	n, err := h.comments.CountDocuments(cctx, store.Filter{"email": ctx.Param("email")})
	if err != nil {
		respondStoreFault(ctx, "comments.count_by_email", err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, "Comments are retrieved successfully!", n)
}
