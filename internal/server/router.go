// Package server wires services and handlers into the HTTP router.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "pyggy/internal/docs" // Import swagger docs
	"pyggy/internal/handlers"
	"pyggy/internal/middleware"
	"pyggy/internal/realtime"
	"pyggy/internal/services"
)

// Options configures NewRouter.
type Options struct {
	DefaultCurrency string
	DefaultLocale   string
	AllowedOrigins  []string
	// Swagger mounts the API docs under /swagger.
	Swagger bool
}

// NewRouter builds the services on db and returns the router serving the
// full API. Budget changes are published on hub.
func NewRouter(db *gorm.DB, hub *realtime.Hub, opts Options) *gin.Engine {
	settingsService := services.NewSettingsService(db, opts.DefaultCurrency, opts.DefaultLocale)
	auditService := services.NewAuditService(db)
	budgetService := services.NewBudgetService(db)
	monthService := services.NewMonthService(db)
	expenseService := services.NewExpenseService(db)
	itemService := services.NewExpenseItemService(db)
	paymentService := services.NewPaymentService(db)
	payeeService := services.NewPayeeService(db)
	methodService := services.NewPaymentMethodService(db)

	budgetHandler := handlers.NewBudgetHandler(budgetService, settingsService, auditService, hub)
	monthHandler := handlers.NewMonthHandler(monthService, auditService, hub)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService, hub)
	itemHandler := handlers.NewItemHandler(itemService, auditService, hub)
	paymentHandler := handlers.NewPaymentHandler(paymentService, auditService, hub)
	payeeHandler := handlers.NewPayeeHandler(payeeService, auditService)
	methodHandler := handlers.NewPaymentMethodHandler(methodService, auditService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, auditService)
	wsHandler := handlers.NewWSHandler(budgetService, hub)
	auditHandler := handlers.NewAuditHandler(auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}

	if opts.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "websocket_clients": hub.Sessions()})
	})

	v1 := router.Group("/api/v1")
	v1.GET("/ws/budgets/:id", wsHandler.Subscribe)

	// Budget routes
	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.ListBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/balance", budgetHandler.GetBalance)
	budgets.GET("/:id/dashboard", monthHandler.GetDashboard)

	// Month routes
	budgets.GET("/:id/months", monthHandler.ListMonths)
	budgets.GET("/:id/months/next", monthHandler.GetNextMonth)
	budgets.POST("/:id/months", monthHandler.ProcessMonth)
	budgets.POST("/:id/months/process", monthHandler.ProcessNextMonth)
	budgets.GET("/:id/months/:year/:month", monthHandler.GetMonth)
	budgets.DELETE("/:id/months/:year/:month", monthHandler.DeleteMonth)

	// Expense routes
	budgets.POST("/:id/expenses", expenseHandler.CreateExpense)
	budgets.POST("/:id/expenses/quick", expenseHandler.CreateQuickExpense)
	budgets.GET("/:id/expenses", expenseHandler.ListExpenses)
	budgets.GET("/:id/expenses/:expenseID", expenseHandler.GetExpense)
	budgets.PUT("/:id/expenses/:expenseID", expenseHandler.UpdateExpense)
	budgets.DELETE("/:id/expenses/:expenseID", expenseHandler.DeleteExpense)
	budgets.POST("/:id/expenses/:expenseID/close", expenseHandler.CloseExpense)
	budgets.GET("/:id/expenses/:expenseID/restrictions", expenseHandler.GetRestrictions)

	// Item and payment routes
	budgets.GET("/:id/items/:itemID", itemHandler.GetItem)
	budgets.PUT("/:id/items/:itemID", itemHandler.UpdateItem)
	budgets.DELETE("/:id/items/:itemID", itemHandler.DeleteItem)
	budgets.GET("/:id/items/:itemID/payments", paymentHandler.ListPayments)
	budgets.POST("/:id/items/:itemID/payments", paymentHandler.RecordPayment)
	budgets.POST("/:id/items/:itemID/pay-in-full", paymentHandler.PayInFull)
	budgets.DELETE("/:id/payments/:paymentID", paymentHandler.DeletePayment)

	// Reference data
	payees := v1.Group("/payees")
	payees.POST("", payeeHandler.CreatePayee)
	payees.GET("", payeeHandler.ListPayees)
	payees.GET("/:payeeID", payeeHandler.GetPayee)
	payees.PUT("/:payeeID", payeeHandler.UpdatePayee)
	payees.DELETE("/:payeeID", payeeHandler.DeletePayee)
	payees.POST("/:payeeID/hide", payeeHandler.HidePayee)
	payees.POST("/:payeeID/unhide", payeeHandler.UnhidePayee)

	methods := v1.Group("/payment-methods")
	methods.POST("", methodHandler.CreatePaymentMethod)
	methods.GET("", methodHandler.ListPaymentMethods)
	methods.GET("/:methodID", methodHandler.GetPaymentMethod)
	methods.PUT("/:methodID", methodHandler.UpdatePaymentMethod)
	methods.DELETE("/:methodID", methodHandler.DeletePaymentMethod)

	v1.GET("/settings", settingsHandler.GetSettings)
	v1.PUT("/settings", settingsHandler.UpdateSettings)
	v1.GET("/audit-logs", auditHandler.ListAuditLogs)

	return router
}
