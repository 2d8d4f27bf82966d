package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into out. An empty body leaves out
// untouched. On failure the 4xx response has been written and false is
// returned.
func BindJSON(ctx *gin.Context, out any) bool {
	err := ctx.ShouldBindJSON(out)

	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "request entity too large", gin.H{
			"limit": tooLarge.Limit,
		})
		return false
	}

	RespondBadRequest(ctx, "Invalid request body", parseBindError(err))
	return false
}

// bindDocument decodes a JSON object body. Anything other than an object is
// rejected, an empty body yields an empty document.
func bindDocument(ctx *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if !BindJSON(ctx, &body) {
		return nil, false
	}

	if body == nil {
		body = map[string]any{}
	}
	return body, true
}

func parseBindError(err error) any {
	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return gin.H{
			"json":   "invalid_json_syntax",
			"offset": syntaxError.Offset,
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)

		details := gin.H{
			"json":    "invalid_json_type",
			"message": fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
		}
		if field != "" {
			details["field"] = field
		}
		return details
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": err.Error()}
}
