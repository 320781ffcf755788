// Package router assembles the gin engine.
package router

import (
	"net/http"
	"time"

	"quickcart/internal/handler"
	"quickcart/internal/middleware"
	"quickcart/internal/model"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Product      *handler.ProductHandler
	Order        *handler.OrderHandler
	OTP          *handler.OTPHandler
	Notification *handler.NotificationHandler
	Assignment   *handler.AssignmentHandler
}

// Options carries the router's non-handler dependencies.
type Options struct {
	APIKey      string
	RateLimiter *middleware.RateLimiter
	Logger      zerolog.Logger
}

// New creates the HTTP engine with all routes and middleware configured.
func New(h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", middleware.APIKeyHeader}
	corsCfg.MaxAge = 12 * time.Hour

	// Recovery -> Logging -> CORS
	r.Use(
		middleware.Recovery(opts.Logger),
		middleware.Logging(opts.Logger),
		cors.New(corsCfg),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")

	otp := api.Group("/auth/otp")
	if opts.RateLimiter != nil {
		otp.Use(opts.RateLimiter.Middleware(opts.Logger))
	}
	{
		otp.POST("/send-otp", h.OTP.Send)
		otp.POST("/verify-otp", h.OTP.Verify)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.APIKeyAuth(opts.APIKey, opts.Logger))
	{
		assigned := admin.Group("/assigned")
		assigned.POST("/assign-order", h.Assignment.Assign)
		assigned.PUT("/update-order-status", h.Assignment.UpdateStatus)
		assigned.GET("/assigned-orders/:userId", h.Assignment.GetAssigned)
		assigned.DELETE("/delete-assigned-order", h.Assignment.Delete)

		notifications := admin.Group("/notifications")
		notifications.POST("/store-token", h.Notification.StoreToken)
		notifications.POST("/send", h.Notification.Broadcast)
		notifications.POST("/send-to-user", h.Notification.SendToUser)
	}

	shop := api.Group("/shop")
	{
		order := shop.Group("/order")
		order.POST("/create", h.Order.Create)
		// Gateway callback; PhonePe posts, browsers get.
		order.GET("/status", h.Order.Status)
		order.POST("/status", h.Order.Status)
		order.GET("/list/:userId", h.Order.ListByUser)
		order.GET("/details/:id", h.Order.GetByID)
		order.POST("/add-review", h.Order.AddReview)

		shop.GET("/products", h.Product.List)
		shop.POST("/products/availability", h.Product.CheckAvailability)
		shop.GET("/products/:id", h.Product.GetByID)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: model.ErrCodeNotFound, Message: "route not found"})
	})

	return r
}
