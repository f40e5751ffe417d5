package handler

import (
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers bundles every HTTP handler served under /api/v1
type Handlers struct {
	Auth        *AuthHandler
	Company     *CompanyHandler
	Project     *ProjectHandler
	Category    *CategoryHandler
	Transaction *TransactionHandler
	Period      *PeriodHandler
	Dashboard   *DashboardHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes. Every /api/v1 route is authenticated; writes are
// additionally rate limited per company.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	registerDocs(e)

	// WebSocket authenticates with a query token, outside the API group
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	auth := api.Group("/auth")
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me)

	company := api.Group("/company")
	company.GET("", h.Company.GetCompany)
	company.PUT("/logo", h.Company.UploadLogo)
	company.GET("/logo", h.Company.GetLogo)

	projects := api.Group("/projects")
	projects.POST("", h.Project.CreateProject)
	projects.GET("", h.Project.GetProjects)
	projects.GET("/:id", h.Project.GetProject)
	projects.PUT("/:id", h.Project.UpdateProject)
	projects.DELETE("/:id", h.Project.DeleteProject)

	categories := api.Group("/categories")
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.GetCategories)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	transactions := api.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/installments/:groupId", h.Transaction.GetInstallmentGroup)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	api.GET("/periods", h.Period.GetPeriod)
	api.GET("/dashboard", h.Dashboard.GetDashboard)
}
