package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

const storeTimeout = 3 * time.Second

// storeCtx bounds a single store call by the request context.
func storeCtx(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), storeTimeout)
}

// insertBody stores the request body verbatim and answers 201 with the
// insert result.
func insertBody(ctx *gin.Context, coll store.Collection, op, message string) {
	body, ok := bindDocument(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	res, err := coll.InsertOne(cctx, store.Document(body))
	if err != nil {
		respondStoreFault(ctx, op, err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, message, res)
}

func listDocuments(ctx *gin.Context, coll store.Collection, op string, filter store.Filter, limit int64, message string) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()

	docs, err := coll.Find(cctx, filter, store.FindOptions{Limit: limit})
	if err != nil {
		respondStoreFault(ctx, op, err)
		return
	}

	RespondSuccess(ctx, http.StatusCreated, message, docs)
}

// findByID answers with the document or a null data field when nothing
// matches.
func findByID(ctx *gin.Context, coll store.Collection, op, message string, view func(store.Document) store.Document) {
	filter, err := store.IDFilter(ctx.Param("id"))
	if err != nil {
		respondStoreFault(ctx, op, err)
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	doc, err := coll.FindOne(cctx, filter)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondStoreFault(ctx, op, err)
		return
	}

	if doc != nil && view != nil {
		doc = view(doc)
	}

	RespondSuccess(ctx, http.StatusCreated, message, nullable(doc))
}

// nullable keeps a missing document encoding as JSON null.
func nullable(doc store.Document) any {
	if doc == nil {
		return nil
	}
	return doc
}
