package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"bizadmin-system/config"
	"bizadmin-system/internal/database"
	"bizadmin-system/internal/database/models"
	"bizadmin-system/internal/gateway/handlers"
	"bizadmin-system/internal/gateway/middleware"
	authsvc "bizadmin-system/internal/services/auth/handler"
	customersvc "bizadmin-system/internal/services/customer/handler"
	invoicesvc "bizadmin-system/internal/services/invoice/handler"
	notificationsvc "bizadmin-system/internal/services/notification/handler"
	reportsvc "bizadmin-system/internal/services/report/handler"
	sysutils "bizadmin-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	sysutils.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	authService := authsvc.NewAuthHandler(db, redisClient, cfg.Auth.TokenTTL)
	customerService := customersvc.NewCustomerHandler(db, redisClient)
	invoiceService := invoicesvc.NewInvoiceHandler(db, redisClient)
	reportService := reportsvc.NewReportHandler(db)
	notificationService := notificationsvc.NewNotificationHandler(db, redisClient)

	authHandler := handlers.NewAuthHTTPHandler(authService)
	customerHandler := handlers.NewCustomerHTTPHandler(customerService)
	invoiceHandler := handlers.NewInvoiceHTTPHandler(invoiceService)
	reportHandler := handlers.NewReportHTTPHandler(reportService)
	notificationHandler := handlers.NewNotificationHTTPHandler(notificationService)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	revoked := func(c *gin.Context, token string) bool {
		return authService.IsTokenRevoked(c.Request.Context(), token)
	}

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(revoked))
	{
		auth := protected.Group("/auth")
		{
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authHandler.Me)
		}

		users := protected.Group("/users")
		users.Use(middleware.RequireRole(models.RoleAdmin))
		{
			users.GET("", authHandler.ListUsers)
		}

		customers := protected.Group("/customers")
		{
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("", customerHandler.ListCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PUT("/:id", customerHandler.UpdateCustomer)
			customers.DELETE("/:id", middleware.RequireRole(models.RoleManager), customerHandler.DeleteCustomer)
			customers.GET("/:id/invoices", invoiceHandler.GetCustomerInvoices)
			customers.GET("/debt-summary", customerHandler.GetDebtSummary)
			customers.GET("/overdue-debts", customerHandler.GetOverdueDebts)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.POST("", invoiceHandler.CreateInvoice)
			invoices.GET("/overdue", invoiceHandler.GetOverdueInvoices)
			invoices.POST("/:id/payments", invoiceHandler.RecordPayment)
			invoices.GET("/:id/payments", invoiceHandler.GetInvoicePayments)
		}

		reports := protected.Group("/reports")
		reports.Use(middleware.RequireRole(models.RoleManager))
		{
			reports.GET("/debts", reportHandler.DebtReport)
			reports.GET("/payments", reportHandler.PaymentReport)
			reports.GET("/customers/:id/activity", reportHandler.CustomerActivity)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
			notifications.POST("/check-overdue", notificationHandler.CheckOverdue)
		}
	}

	r.GET("/health", healthCheckHandler())
	r.GET("/health/detailed", detailedHealthCheckHandler(db, redisClient))

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	}
}

func detailedHealthCheckHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		overallStatus := "healthy"

		dbStatus := "healthy"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "unavailable"
			overallStatus = "degraded"
		}

		redisStatus := "disabled"
		if redisClient != nil {
			redisStatus = "healthy"
			if redisClient.Ping(ctx).Err() != nil {
				redisStatus = "unavailable"
				overallStatus = "degraded"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"overall_status": overallStatus,
			"services": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
			"timestamp": time.Now(),
		})
	}
}
