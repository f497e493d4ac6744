package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"storefront-checkout/internal/domain"
	cartsvc "storefront-checkout/internal/service/cart"
	checkoutsvc "storefront-checkout/internal/service/checkout"
)

type ctxKey string

const projectCtxKey ctxKey = "project"

type projectRepo interface {
	GetByKey(ctx context.Context, key string) (*domain.Project, error)
}

type cartService interface {
	Create(ctx context.Context, projectID string, in cartsvc.CreateInput) (*domain.Cart, error)
	Get(ctx context.Context, projectID, id string) (*domain.Cart, error)
	Update(ctx context.Context, projectID, cartID string, in cartsvc.UpdateInput) (*domain.Cart, error)
	Delete(ctx context.Context, projectID, cartID string) (*domain.Cart, error)
}

type checkoutService interface {
	Create(ctx context.Context, projectID string, in checkoutsvc.CreateInput) (*domain.Checkout, error)
	Get(ctx context.Context, projectID, token string) (*domain.Checkout, error)
	Update(ctx context.Context, projectID, token string, in checkoutsvc.UpdateInput) (*domain.Checkout, error)
	RemoveGiftCard(ctx context.Context, projectID, token string, id int64) (*domain.Checkout, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries the collaborators the router dispatches to. Cache and
// Gatherer are optional.
type Deps struct {
	ProjectRepo projectRepo
	CartSvc     cartService
	CheckoutSvc checkoutService
	Cache       pinger
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.ProjectRepo == nil || deps.CartSvc == nil || deps.CheckoutSvc == nil {
		return nil, errors.New("httpserver: project repository, cart and checkout services are required")
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(requestLogger(logger), gin.CustomRecoveryWithWriter(logger, func(c *gin.Context, _ any) {
		abortWithError(c, http.StatusInternalServerError, "General", "internal error")
	}))
	router.Use(corsMiddleware(deps.CORSOrigins))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db, deps.Cache))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	project := router.Group("/:projectKey", projectMiddleware(deps.ProjectRepo))

	carts := project.Group("/carts")
	carts.POST("", createCartHandler(deps.CartSvc))
	carts.GET("/:id", getCartHandler(deps.CartSvc))
	carts.POST("/:id", updateCartHandler(deps.CartSvc))
	carts.DELETE("/:id", deleteCartHandler(deps.CartSvc))

	checkouts := project.Group("/checkouts")
	checkouts.POST("", createCheckoutHandler(deps.CheckoutSvc))
	checkouts.GET("/:token", getCheckoutHandler(deps.CheckoutSvc))
	checkouts.POST("/:token", updateCheckoutHandler(deps.CheckoutSvc))
	checkouts.GET("/:token/gift-cards/:id", getGiftCardHandler(deps.CheckoutSvc))
	checkouts.DELETE("/:token/gift-cards/:id", removeGiftCardHandler(deps.CheckoutSvc))

	return router, nil
}

func projectMiddleware(repo projectRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Param("projectKey"))
		if key == "" {
			abortWithError(c, http.StatusBadRequest, "InvalidInput", "project key required")
			return
		}
		project, err := repo.GetByKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				abortWithError(c, http.StatusNotFound, "ResourceNotFound", "project not found")
				return
			}
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "General", "internal error")
			return
		}
		ctx := context.WithValue(c.Request.Context(), projectCtxKey, project)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func projectFrom(c *gin.Context) *domain.Project {
	p, _ := c.Request.Context().Value(projectCtxKey).(*domain.Project)
	return p
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}

// requestLogger writes one structured line per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
