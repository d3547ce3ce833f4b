package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/services"
	"github.com/fabienng71/Rclx-sub001/utils"
)

// API bundles what the route handlers need.
type API struct {
	Credentials *repository.CredentialStore
	Quotations  *repository.QuotationStore
	Renderer    *services.QuotationRenderer
	Exporter    *services.RegisterExporter
	Mail        *services.MailComposer
	Clock       utils.Clock
}

// RegisterRoutes mounts the /api tree on r.
func RegisterRoutes(r gin.IRouter, api API) {
	if api.Clock == nil {
		api.Clock = utils.SystemClock{}
	}

	r.POST("/api/login", LoginHandler(api.Credentials))

	authed := r.Group("/api", RequireAuth(api.Credentials))
	authed.GET("/me", MeHandler())

	// ==================== QUOTATIONS ====================
	q := authed.Group("/quotations")
	q.GET("", GetQuotationsHandler(api.Quotations))
	q.POST("", SaveQuotationHandler(api.Quotations, api.Credentials, api.Clock))
	q.POST("/draft", DraftQuotationHandler(api.Credentials, api.Clock))
	q.POST("/preview.pdf", PreviewQuotationPDF(api.Credentials, api.Renderer, api.Clock))
	q.GET("/export", ExportQuotationsHandler(api.Quotations, api.Exporter, api.Clock))
	q.GET("/:id", GetQuotationHandler(api.Quotations))
	q.DELETE("/:id", DeleteQuotationHandler(api.Quotations))
	q.PATCH("/:id/status", UpdateQuotationStatusHandler(api.Quotations))
	q.POST("/:id/archive", ArchiveQuotationHandler(api.Quotations))
	q.POST("/:id/restore", RestoreQuotationHandler(api.Quotations))
	q.GET("/:id/pdf", GenerateQuotationPDF(api.Quotations, api.Renderer, api.Clock))
	q.GET("/:id/mailto", QuotationMailtoHandler(api.Quotations, api.Mail))

	// ==================== ADMIN ====================
	admin := authed.Group("", RequireAdmin())
	admin.GET("/users", GetUsersHandler(api.Credentials))
	admin.POST("/users", CreateUserHandler(api.Credentials))
	admin.GET("/users/:id", GetUserHandler(api.Credentials))
	admin.PUT("/users/:id", UpdateUserHandler(api.Credentials))
	admin.DELETE("/users/:id", DeleteUserHandler(api.Credentials))
	admin.GET("/login-journal", GetLoginJournalHandler(api.Credentials))
	admin.GET("/login-journal/export", ExportLoginJournalHandler(api.Credentials, api.Exporter))
}
