package http

import (
	"log/slog"

	"github.com/geocoder89/reliefhub/internal/auth"
	"github.com/geocoder89/reliefhub/internal/cache"
	"github.com/geocoder89/reliefhub/internal/config"
	"github.com/geocoder89/reliefhub/internal/http/handlers"
	"github.com/geocoder89/reliefhub/internal/http/middlewares"
	"github.com/geocoder89/reliefhub/internal/observability"
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the long-lived collaborators the routes are built on.
type Deps struct {
	Store store.Store
	// Cache is optional; without it aggregates are computed on every request.
	Cache cache.Cache
	Prom  *observability.Prom
	// Sessions signs /jwt tokens and verifies bearer tokens.
	Sessions *auth.Manager
	// Logins signs /api/v1/login tokens.
	Logins *auth.Manager
}

func NewRouter(log *slog.Logger, deps Deps, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.OTelServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	st := deps.Store
	var cacheMetrics handlers.CacheObserver
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))

		st = store.Observe(st, deps.Prom)
		cacheMetrics = deps.Prom
	}

	users := st.Collection(store.Users)

	authMw := middlewares.NewAuthMiddleware(deps.Sessions)

	// wire up handlers
	healthHandler := handlers.NewHealthHandler(st)
	authHandler := handlers.NewAuthHandler(users, deps.Sessions, deps.Logins)
	adminHandler := handlers.NewAdminHandler(users)
	usersHandler := handlers.NewUsersHandler(users)
	suppliesHandler := handlers.NewSuppliesHandler(st.Collection(store.Supplies), cfg.FilterSuppliesLimit)
	donationsHandler := handlers.NewDonationsHandler(st.Collection(store.Donations), deps.Cache, cacheMetrics)
	commentsHandler := handlers.NewCommentsHandler(st.Collection(store.Communities))
	testimonialsHandler := handlers.NewTestimonialsHandler(st.Collection(store.Testimonials))
	volunteersHandler := handlers.NewVolunteersHandler(st.Collection(store.Volunteers), cfg.FilterVolunteersLimit)

	// health
	r.GET("/", healthHandler.Liveness)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	// session tokens and admin
	r.POST("/jwt", authHandler.IssueJWT)
	r.GET("/users/admin/:email", authMw.RequireAuth(), adminHandler.CheckAdmin)

	if cfg.AdminPromotionOpen {
		log.Warn("admin promotion route is open to unauthenticated callers")
		r.PATCH("/users/admin/:id", adminHandler.MakeAdmin)
	} else {
		r.PATCH("/users/admin/:id", authMw.RequireAuth(), middlewares.RequireAdmin(users), adminHandler.MakeAdmin)
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/register", authHandler.Register)
		v1.POST("/login", authHandler.Login)

		v1.POST("/create-supply", suppliesHandler.Create)
		v1.GET("/supplies", suppliesHandler.List)
		v1.GET("/filter-supplies", suppliesHandler.Featured)
		v1.GET("/supply/:id", suppliesHandler.Get)
		v1.PUT("/supply/:id", suppliesHandler.Update)
		v1.DELETE("/supply/:id", suppliesHandler.Delete)

		v1.POST("/add-donation", donationsHandler.Create)
		v1.GET("/donation/:email", donationsHandler.ByEmail)
		v1.GET("/donations", donationsHandler.Leaderboard)
		v1.GET("/donation-amount", donationsHandler.TotalAmount)

		v1.POST("/create-comment", commentsHandler.Create)
		v1.GET("/comments", commentsHandler.List)
		v1.GET("/comments/:email", commentsHandler.CountByEmail)

		v1.POST("/create-testimonial", testimonialsHandler.Create)
		v1.GET("/testimonials", testimonialsHandler.List)

		v1.POST("/create-volunteer", volunteersHandler.Create)
		v1.GET("/volunteers", volunteersHandler.List)
		v1.GET("/filter-volunteers", volunteersHandler.Featured)

		v1.GET("/users", usersHandler.List)
		v1.GET("/user/:id", usersHandler.Get)
		v1.PUT("/user/:id", usersHandler.UpdateProfile)
	}

	return r
}
