package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/geocoder89/reliefhub/internal/cache"
	"github.com/geocoder89/reliefhub/internal/domain/donation"
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

const (
	leaderboardCacheKey = "donations:leaderboard"
	totalAmountCacheKey = "donations:total_amount"
	// generationKey is bumped by every new donation. Aggregates are cached
	// under the generation they were computed in, so a read that started
	// before a donation can only ever fill a key nobody looks up again.
	generationKey = "donations:gen"
)

func aggregateKey(family string, gen int64) string {
	return family + ":" + strconv.FormatInt(gen, 10)
}

type CacheObserver interface {
	ObserveCache(key string, hit bool, err error)
}

type DonationsHandler struct {
	donations store.Collection
	cache     cache.Cache
	metrics   CacheObserver
}

// NewDonationsHandler wires the donation routes. cache and metrics may be nil.
func NewDonationsHandler(donations store.Collection, c cache.Cache, metrics CacheObserver) *DonationsHandler {
	return &DonationsHandler{
		donations: donations,
		cache:     c,
		metrics:   metrics,
	}
}

// Create stores a donation and moves the aggregates to a new generation.
func (h *DonationsHandler) Create(ctx *gin.Context) {
	insertBody(ctx, h.donations, "donations.insert", "Donation Added successfully!")

	if ctx.Writer.Status() != http.StatusCreated || h.cache == nil {
		return
	}

	rctx := ctx.Request.Context()

	gen, err := h.cache.Bump(rctx, generationKey)
	if err != nil {
		slog.Default().WarnContext(rctx, "donation cache generation bump failed", "err", err)
		return
	}

	// entries of the previous generation are unreachable now
	prev := gen - 1
	if err := h.cache.Delete(rctx, aggregateKey(leaderboardCacheKey, prev), aggregateKey(totalAmountCacheKey, prev)); err != nil {
		slog.Default().WarnContext(rctx, "donation cache cleanup failed", "err", err)
	}
}

func (h *DonationsHandler) ByEmail(ctx *gin.Context) {
	filter := store.Filter{"email": ctx.Param("email")}

	listDocuments(ctx, h.donations, "donations.by_email", filter, 0, "Donation is retrieved successfully!")
}

func (h *DonationsHandler) Leaderboard(ctx *gin.Context) {
	var board []donation.Entry

	rctx := ctx.Request.Context()
	gen, cacheable := h.generation(rctx)

	if cacheable && h.cached(rctx, leaderboardCacheKey, gen, &board) {
		RespondSuccess(ctx, http.StatusOK, "Donations are retrieved successfully!", board)
		return
	}

	docs, ok := h.all(ctx, "donations.leaderboard")
	if !ok {
		return
	}

	board = donation.Leaderboard(docs)
	if cacheable {
		h.remember(rctx, aggregateKey(leaderboardCacheKey, gen), board)
	}

	RespondSuccess(ctx, http.StatusOK, "Donations are retrieved successfully!", board)
}

func (h *DonationsHandler) TotalAmount(ctx *gin.Context) {
	var total float64

	rctx := ctx.Request.Context()
	gen, cacheable := h.generation(rctx)

	if !cacheable || !h.cached(rctx, totalAmountCacheKey, gen, &total) {
		docs, ok := h.all(ctx, "donations.total_amount")
		if !ok {
			return
		}

		total = donation.TotalAmount(docs)
		if cacheable {
			h.remember(rctx, aggregateKey(totalAmountCacheKey, gen), total)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Total donation amount are retrieved successfully!",
		"totalAmount": total,
	})
}

func (h *DonationsHandler) all(ctx *gin.Context, op string) ([]store.Document, bool) {
	cctx, cancel := storeCtx(ctx)
	defer cancel()

	docs, err := h.donations.Find(cctx, store.Filter{}, store.FindOptions{})
	if err != nil {
		respondStoreFault(ctx, op, err)
		return nil, false
	}
	return docs, true
}

// generation must be read before the store is queried. Without a cache, or
// when the counter cannot be read, the aggregates are not cached.
func (h *DonationsHandler) generation(ctx context.Context) (int64, bool) {
	if h.cache == nil {
		return 0, false
	}

	gen, err := h.cache.Generation(ctx, generationKey)
	if err != nil {
		slog.Default().WarnContext(ctx, "donation cache generation read failed", "err", err)
		return 0, false
	}
	return gen, true
}

// cached reads the family's entry for gen into out. Cache failures count as
// a miss.
func (h *DonationsHandler) cached(ctx context.Context, family string, gen int64, out any) bool {
	key := aggregateKey(family, gen)

	hit, err := h.cache.Get(ctx, key, out)
	if h.metrics != nil {
		h.metrics.ObserveCache(family, hit, err)
	}
	if err != nil {
		slog.Default().WarnContext(ctx, "donation cache read failed", "key", key, "err", err)
		return false
	}
	return hit
}

func (h *DonationsHandler) remember(ctx context.Context, key string, val any) {
	if h.cache == nil {
		return
	}

	if err := h.cache.Set(ctx, key, val); err != nil {
		slog.Default().WarnContext(ctx, "donation cache write failed", "key", key, "err", err)
	}
}
