package main

import (
	"log"
	"os"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/exchange"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/handlers"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/middleware"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}

	database.Connect()
	r := gin.Default()

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:5173"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)

	// Only opens if we explicitly allow it in .env
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", handlers.Register)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	// Background workers: nightly maintenance + exchange rate cache
	scheduler.Start(database.DB)

	poller := exchange.NewPoller()
	poller.Start()
	handlers.SetRatePoller(poller)

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// PUBLIC TO STAFF & ADMIN
		api.GET("/clients", handlers.GetClients)
		api.POST("/clients", handlers.AddClient)
		api.PUT("/clients/:id", handlers.UpdateClient)

		api.GET("/debts", handlers.GetDebts)
		api.POST("/debts", handlers.AddDebt)
		api.PUT("/debts/:id", handlers.UpdateDebt)
		api.GET("/debts/:id/payments", handlers.GetDebtPayments)
		api.POST("/debts/:id/payments", handlers.RegisterPayment)
		api.POST("/debts/settle", handlers.SettleDebtGroup)

		api.GET("/payment-history", handlers.GetPaymentHistory)

		api.GET("/categories", handlers.GetCategories)
		api.POST("/categories", handlers.AddCategory)
		api.PUT("/categories/:id", handlers.UpdateCategory)

		api.GET("/products", handlers.GetProducts)
		api.POST("/products", handlers.AddProduct)
		api.PUT("/products/:id", handlers.UpdateProduct)
		api.POST("/products/:id/stock", handlers.RegisterStockMovement)
		api.GET("/stock-movements", handlers.GetStockMovements)

		api.GET("/settings", handlers.GetSettings)
		api.GET("/reports", handlers.GetDashboardReport)
		api.GET("/exchange-rate", handlers.GetExchangeRate)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.DELETE("/clients/:id", handlers.DeleteClient)
			admin.DELETE("/debts/:id", handlers.DeleteDebt)
			admin.POST("/debts/:id/surcharge", handlers.ApplySurcharge)
			admin.POST("/debts/surcharges/apply", handlers.ApplySurcharges)
			admin.POST("/payment-history/cleanup", handlers.CleanupPaymentHistory)
			admin.DELETE("/categories/:id", handlers.DeleteCategory)
			admin.DELETE("/products/:id", handlers.DeleteProduct)
			admin.PUT("/settings", handlers.UpdateSettings)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Server starting on port " + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
