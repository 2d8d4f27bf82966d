package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/reliefhub/internal/domain/user"
	"github.com/geocoder89/reliefhub/internal/security"
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

type SessionTokenIssuer interface {
	IssueSessionToken(claims map[string]any) (string, error)
}

type LoginTokenIssuer interface {
	IssueLoginToken(email string) (string, error)
}

type AuthHandler struct {
	users    store.Collection
	sessions SessionTokenIssuer
	logins   LoginTokenIssuer
}

func NewAuthHandler(users store.Collection, sessions SessionTokenIssuer, logins LoginTokenIssuer) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		logins:   logins,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IssueJWT signs whatever the caller posts as the token claims.
func (h *AuthHandler) IssueJWT(ctx *gin.Context) {
	body, ok := bindDocument(ctx)
	if !ok {
		return
	}

	token, err := h.sessions.IssueSessionToken(body)
	if err != nil {
		RespondError(ctx, http.StatusInternalServerError, "Could not generate token", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	_, err := h.users.FindOne(cctx, store.Filter{user.FieldEmail: req.Email})
	switch {
	case err == nil:
		ctx.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "User already exists",
		})
		return
	case !errors.Is(err, store.ErrNotFound):
		respondStoreFault(ctx, "users.find_by_email", err)
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondError(ctx, http.StatusInternalServerError, "Could not create user", nil)
		return
	}

	if _, err := h.users.InsertOne(cctx, user.NewDocument(req.Name, req.Email, hash)); err != nil {
		respondStoreFault(ctx, "users.insert", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	doc, err := h.users.FindOne(cctx, store.Filter{user.FieldEmail: req.Email})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondBadCredentials(ctx)
			return
		}
		respondStoreFault(ctx, "users.find_by_email", err)
		return
	}

	found := user.FromDocument(doc)

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		respondBadCredentials(ctx)
		return
	}

	token, err := h.logins.IssueLoginToken(found.Email)
	if err != nil {
		RespondError(ctx, http.StatusInternalServerError, "Could not generate token", nil)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   token,
	})
}

func respondBadCredentials(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
}
