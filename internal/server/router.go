package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"sales-order-backend/internal/config"
	"sales-order-backend/internal/handlers"
	"sales-order-backend/internal/middleware"
	"sales-order-backend/internal/models"
	"sales-order-backend/internal/services"
	"sales-order-backend/internal/store"
)

// Deps is everything the router needs.
type Deps struct {
	Config   *config.Config
	Store    store.Store
	Services *services.Services
	Logger   *zap.Logger
	Metrics  *middleware.Metrics
	// Stop ends background work such as rate limiter pruning.
	Stop <-chan struct{}
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Logger))
	if d.Metrics != nil {
		router.Use(d.Metrics.Middleware())
	}
	router.Use(middleware.CORS(d.Config.CORSAllowedOrigins))
	if d.Config.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(d.Config.RateLimitRPS, d.Config.RateLimitBurst, d.Logger)
		if d.Stop != nil {
			limiter.StartPruning(10*time.Minute, d.Stop)
		}
		router.Use(limiter.Middleware())
	}

	health := handlers.NewHealthHandler(d.Store.Ping, d.Logger)
	router.GET("/health", health.Health)
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	orders := handlers.NewOrdersHandler(d.Services.Orders, d.Logger)
	windows := handlers.NewWindowsHandler(d.Services.Windows, d.Logger)
	subElements := handlers.NewSubElementsHandler(d.Services.SubElements, d.Logger)

	api := router.Group("/api")
	api.GET("/health", health.Health)

	// canonical paths plus lower-case aliases
	for _, name := range []string{"Orders", "orders"} {
		mountOrders(api.Group("/"+name), orders)
	}
	for _, name := range []string{"Windows", "windows"} {
		mountWindows(api.Group("/"+name), windows)
	}
	for _, name := range []string{"SubElements", "subelements", "subElements"} {
		mountSubElements(api.Group("/"+name), subElements)
	}

	router.NoRoute(func(c *gin.Context) {
		msg := "route not found"
		c.JSON(http.StatusNotFound, models.Response{Success: false, Message: &msg})
	})

	return router
}

func mountOrders(g *gin.RouterGroup, h *handlers.OrdersHandler) {
	g.GET("", h.ListOrders)
	g.POST("", h.CreateOrder)
	g.GET("/:id", h.GetOrder)
	g.PUT("/:id", h.UpdateOrder)
	g.DELETE("/:id", h.DeleteOrder)
}

func mountWindows(g *gin.RouterGroup, h *handlers.WindowsHandler) {
	g.GET("", h.ListWindows)
	g.POST("", h.CreateWindow)
	g.GET("/:id", h.GetWindow)
	g.PUT("/:id", h.UpdateWindow)
	g.DELETE("/:id", h.DeleteWindow)
}

func mountSubElements(g *gin.RouterGroup, h *handlers.SubElementsHandler) {
	g.GET("", h.ListSubElements)
	g.POST("", h.CreateSubElement)
	g.GET("/:id", h.GetSubElement)
	g.PUT("/:id", h.UpdateSubElement)
	g.DELETE("/:id", h.DeleteSubElement)
}
