package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/reliefhub/internal/domain/user"
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

type UsersHandler struct {
	users store.Collection
}

func NewUsersHandler(users store.Collection) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()

	docs, err := h.users.Find(cctx, store.Filter{}, store.FindOptions{})
	if err != nil {
		respondStoreFault(ctx, "users.list", err)
		return
	}

	for i, d := range docs {
		docs[i] = user.Public(d)
	}

	RespondSuccess(ctx, http.StatusCreated, "Users are retrieved successfully!", docs)
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	findByID(ctx, h.users, "users.get", "User is retrieved successfully!", user.Public)
}

// UpdateProfile overwrites the profile fields of :id. Fields missing from
// the body are cleared.
func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	body, ok := bindDocument(ctx)
	if !ok {
		return
	}

	filter, err := store.IDFilter(ctx.Param("id"))
	if err != nil {
		respondProfileError(ctx, err)
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	res, err := h.users.UpdateOne(cctx, filter, user.ProfileUpdate(body))
	if err != nil {
		respondProfileError(ctx, err)
		return
	}

	if res.MatchedCount == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func respondProfileError(ctx *gin.Context, err error) {
	slog.Default().ErrorContext(ctx.Request.Context(), "profile update failed", "err", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating user"})
}
