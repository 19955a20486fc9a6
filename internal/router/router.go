// Package router assembles the HTTP engine: middleware chain, public
// routes and the authenticated expense API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "tally/internal/docs" // swagger docs
	"tally/internal/events"
	"tally/internal/handlers"
	"tally/internal/identity"
	"tally/internal/middleware"
	"tally/internal/services"
	"tally/internal/telemetry"
)

// Deps carries everything the routes need.
type Deps struct {
	DB        *gorm.DB
	Verifier  identity.Verifier
	OTP       identity.OTPProvider // nil disables the /auth/otp routes
	Publisher events.Publisher
	Metrics   *telemetry.Metrics // nil disables /metrics

	DefaultCurrency  string
	RequestTimeout   time.Duration
	CORSAllowOrigins []string
	OTPRateLimit     int
	OTPRateBurst     int
	MetricsAPIKey    string

	// TracingService, when set, instruments requests with OpenTelemetry.
	TracingService string
}

// New builds the gin engine.
func New(d Deps) *gin.Engine {
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}

	userService := services.NewUserService(d.DB)
	expenseService := services.NewExpenseService(d.DB, d.DefaultCurrency)
	favoriteService := services.NewFavoriteService(d.DB)
	billingPeriodService := services.NewBillingPeriodService(d.DB)
	recurringService := services.NewRecurringExpenseService(d.DB, d.DefaultCurrency)

	expenseHandler := handlers.NewExpenseHandler(expenseService, d.Publisher)
	groceryHandler := handlers.NewGroceryHandler(expenseService)
	userHandler := handlers.NewUserHandler(userService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	billingPeriodHandler := handlers.NewBillingPeriodHandler(billingPeriodService)
	recurringHandler := handlers.NewRecurringExpenseHandler(recurringService)

	r := gin.New()
	r.Use(gin.Recovery())
	if d.TracingService != "" {
		r.Use(otelgin.Middleware(d.TracingService))
	}
	r.Use(middleware.RequestLogging())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORS(d.CORSAllowOrigins))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if d.Metrics != nil {
		r.GET("/metrics", middleware.APIKeyAuth(d.MetricsAPIKey), gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.OTP != nil {
		authHandler := handlers.NewAuthHandler(d.OTP)
		limiter := middleware.NewRateLimiter(d.OTPRateLimit, d.OTPRateBurst)

		auth := api.Group("/auth", limiter.Middleware())
		auth.POST("/otp", authHandler.RequestOTP)
		auth.POST("/otp/verify", authHandler.VerifyOTP)
	}

	authed := api.Group("")
	authed.Use(middleware.Auth(d.Verifier))

	// Signup writes the chosen name, so it runs before provisioning.
	authed.POST("/users", userHandler.CreateUser)

	protected := authed.Group("")
	protected.Use(middleware.ProvisionUser(userService))

	protected.GET("/users", userHandler.GetUser)

	// Expenses
	expenses := protected.Group("/expenses")
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/:id", expenseHandler.GetExpenseByID)
	expenses.POST("/:id", expenseHandler.CreateExpenseItem)
	expenses.PATCH("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.DELETE("/:id/items/:itemId", expenseHandler.DeleteExpenseItem)
	expenses.POST("/:id/groceries", groceryHandler.CreateExpenseGrocery)
	expenses.POST("/:id/favorite", favoriteHandler.AddFavorite)
	expenses.DELETE("/:id/favorite", favoriteHandler.RemoveFavorite)

	protected.POST("/groceries", groceryHandler.CreateGrocery)
	protected.GET("/favorites", favoriteHandler.ListFavorites)

	// Billing periods
	periods := protected.Group("/billing-periods")
	periods.POST("", billingPeriodHandler.CreateBillingPeriod)
	periods.GET("", billingPeriodHandler.GetBillingPeriods)
	periods.DELETE("/:id", billingPeriodHandler.DeleteBillingPeriod)

	// Recurring expenses
	recurring := protected.Group("/recurring-expenses")
	recurring.POST("", recurringHandler.CreateRecurringExpense)
	recurring.GET("", recurringHandler.GetRecurringExpenses)
	recurring.GET("/:id", recurringHandler.GetRecurringExpenseByID)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurringExpense)

	return r
}
