package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tradepost-dev/tradepost/internal/admin"
	"github.com/tradepost-dev/tradepost/internal/alerts"
	"github.com/tradepost-dev/tradepost/internal/auth"
	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/listing"
	"github.com/tradepost-dev/tradepost/internal/messaging"
	appmw "github.com/tradepost-dev/tradepost/internal/middleware"
	"github.com/tradepost-dev/tradepost/internal/order"
	"github.com/tradepost-dev/tradepost/internal/review"
	"github.com/tradepost-dev/tradepost/internal/user"
)

func main() {
	_ = godotenv.Load()

	db.Init()
	alerts.ConfigureMailerFromEnv()
	alerts.Init()
	defer alerts.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// Public auth routes, rate limited
	authGroup := e.Group("")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	authGroup.POST("/signup", auth.Signup)
	authGroup.POST("/login", auth.Login)

	// Public discovery
	e.GET("/products", listing.GetAllProducts)
	e.GET("/products/:id", listing.GetProduct)
	e.GET("/products/:id/reviews", review.GetProductReviews)
	e.GET("/users/:id/profile", user.GetPublicProfile)
	e.GET("/users/:id/reviews", review.GetSellerReviews)

	// Authenticated group
	g := e.Group("")
	g.Use(appmw.JWTMiddleware)

	g.GET("/me", auth.Me)
	g.PATCH("/users/profile", user.UpdateProfile)

	// Listings
	g.POST("/products", listing.CreateProduct)
	g.GET("/products/me", listing.GetMyProducts)
	g.PUT("/products/:id", listing.UpdateProduct)
	g.DELETE("/products/:id", listing.DeleteProduct)
	g.POST("/products/:id/purchase", listing.Purchase)
	g.POST("/products/:id/confirm-purchase", listing.ConfirmPurchase)
	g.POST("/products/:id/cancel-purchase", listing.CancelPurchase)

	// Orders
	g.POST("/orders", order.CreateOrder)
	g.GET("/orders", order.GetUserOrders)
	g.GET("/orders/:id", order.GetOrder)
	g.PUT("/orders/:id/confirm", order.ConfirmOrder)
	g.PUT("/orders/:id/ship", order.ShipOrder)
	g.PUT("/orders/:id/confirm-delivery", order.ConfirmDelivery)
	g.PUT("/orders/:id/cancel", order.CancelOrder)

	// Order messaging
	g.POST("/orders/:id/messages", messaging.SendMessage)
	g.GET("/orders/:id/messages", messaging.ListMessages)
	g.GET("/orders/:id/messages/unread", messaging.UnreadCount)
	g.PUT("/orders/:id/messages/:message_id/read", messaging.MarkMessageRead)
	g.GET("/orders/:id/ws", messaging.OrderWS)

	// Reviews
	g.POST("/reviews", review.CreateReview)
	g.PUT("/reviews/:id", review.UpdateReview)
	g.DELETE("/reviews/:id", review.DeleteReview)

	// Notifications
	g.GET("/notifications", alerts.ListNotifications)
	g.PUT("/notifications/:id/read", alerts.MarkNotificationRead)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWTMiddleware)
	adminGroup.Use(appmw.AdminGuard)
	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/users", admin.ListUsers)
	adminGroup.POST("/users/:id/suspend", admin.SuspendUser)
	adminGroup.POST("/users/:id/activate", admin.ActivateUser)
	adminGroup.GET("/products", admin.ListProducts)
	adminGroup.POST("/products/:id/suspend", admin.SuspendProduct)
	adminGroup.POST("/products/:id/restore", admin.RestoreProduct)
	adminGroup.GET("/orders", admin.ListOrders)
	adminGroup.GET("/reviews", admin.ListReviews)
	adminGroup.DELETE("/reviews/:id", admin.DeleteReview)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("API server listening on :%s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
