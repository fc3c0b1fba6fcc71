package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dtroode/yourplaces-server/internal/api/http/handler"
	"github.com/dtroode/yourplaces-server/internal/api/http/middleware"
	"github.com/dtroode/yourplaces-server/internal/apierror"
	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

// Services groups what the HTTP surface calls into.
type Services struct {
	Places handler.PlaceService
	Users  handler.UserService
	Tokens interface {
		handler.TokenService
		middleware.TokenService
	}
}

// Options holds HTTP surface settings.
type Options struct {
	PublicDir      string
	MaxUploadBytes int64
	AllowOrigins   []string
}

// Router builds the gin engine for the REST API.
type Router struct {
	services       Services
	storage        model.Storage
	contextManager model.ContextManager
	options        Options
	logger         *logger.Logger
}

func New(
	services Services,
	storage model.Storage,
	contextManager model.ContextManager,
	options Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		storage:        storage,
		contextManager: contextManager,
		options:        options,
		logger:         logger,
	}
}

// Register wires middleware and routes into a new engine.
func (r *Router) Register() *gin.Engine {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logging := middleware.NewLogging(r.logger)
	metrics := middleware.NewMetrics(registry)
	responder := middleware.NewErrorResponder(r.storage, r.logger)
	authenticate := middleware.NewAuthenticate(r.services.Tokens, r.contextManager, r.logger)
	upload := middleware.NewUpload(r.storage, r.options.MaxUploadBytes, r.logger)

	e := gin.New()
	e.HandleMethodNotAllowed = false
	e.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			r.logger.Error("HTTP panic recovered", "panic", recovered, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": apierror.DefaultMessage})
		}),
		logging.Handle,
		metrics.Handle,
		cors.New(corsConfig(r.options.AllowOrigins)),
		responder.Handle,
	)

	e.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	images := handler.NewImage(r.storage, r.logger)
	e.GET("/uploads/images/:name", images.GetImage)

	api := e.Group("/api")
	{
		places := handler.NewPlace(r.services.Places, r.contextManager, r.logger)
		p := api.Group("/places")
		{
			p.GET("/user/:uid", places.GetPlacesByUserID)
			p.GET("/:pid", places.GetPlaceByID)

			p.POST("", authenticate.Handle, upload.Handle, places.CreatePlace)
			p.PATCH("/:pid", authenticate.Handle, places.UpdatePlace)
			p.DELETE("/:pid", authenticate.Handle, places.DeletePlace)
		}

		users := handler.NewUser(r.services.Users, r.services.Tokens, r.logger)
		u := api.Group("/users")
		{
			u.GET("", users.ListUsers)
			u.POST("/signup", upload.Handle, users.Signup)
			u.POST("/login", users.Login)
			u.POST("/refresh", users.Refresh)
			u.POST("/logout", users.Logout)
		}
	}

	e.NoRoute(handler.NewFallback(r.options.PublicDir).Handle)

	return e
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
