package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// RespondSuccess writes the {success, message, data} envelope every
// collection route answers with.
func RespondSuccess(ctx *gin.Context, status int, message string, data any) {
	ctx.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func RespondError(ctx *gin.Context, status int, message string, details any) {
	body := gin.H{
		"error":   true,
		"message": message,
	}

	if id := requestIDFrom(ctx); id != "" {
		body["requestId"] = id
	}
	if details != nil {
		body["details"] = details
	}

	ctx.JSON(status, body)
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondInternal(ctx *gin.Context) {
	RespondError(ctx, http.StatusInternalServerError, "internal server error", nil)
}

// respondStoreFault logs a failed store call and answers 500.
func respondStoreFault(ctx *gin.Context, op string, err error) {
	slog.Default().ErrorContext(ctx.Request.Context(), "store call failed",
		"op", op,
		"err", err,
	)

	RespondInternal(ctx)
}
