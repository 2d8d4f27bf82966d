package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/reliefhub/internal/domain/user"
	"github.com/geocoder89/reliefhub/internal/http/middlewares"
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	users store.Collection
}

func NewAdminHandler(users store.Collection) *AdminHandler {
	return &AdminHandler{users: users}
}

// CheckAdmin reports whether :email is an admin. Callers may only ask about
// themselves; any other email is answered with admin=false.
func (h *AdminHandler) CheckAdmin(ctx *gin.Context) {
	email := ctx.Param("email")

	claims, ok := middlewares.ClaimsFromContext(ctx)
	if !ok || claims.Email() != email {
		ctx.JSON(http.StatusOK, gin.H{"admin": false})
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	doc, err := h.users.FindOne(cctx, store.Filter{user.FieldEmail: email})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondStoreFault(ctx, "users.find_by_email", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"admin": doc != nil && user.FromDocument(doc).IsAdmin()})
}

// MakeAdmin sets role=admin on the user with id :id and answers with the raw
// update result.
func (h *AdminHandler) MakeAdmin(ctx *gin.Context) {
	filter, err := store.IDFilter(ctx.Param("id"))
	if err != nil {
		respondStoreFault(ctx, "users.promote", err)
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	res, err := h.users.UpdateOne(cctx, filter, store.Document{user.FieldRole: user.RoleAdmin})
	if err != nil {
		respondStoreFault(ctx, "users.promote", err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}
