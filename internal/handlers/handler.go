// Package handlers exposes the terminal over a JSON API.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"go-pos-local/internal/ai"
	"go-pos-local/internal/checkout"
	"go-pos-local/internal/config"
	"go-pos-local/internal/middleware"
	"go-pos-local/internal/models"
	"go-pos-local/internal/reports"
	"go-pos-local/internal/repository"
	"go-pos-local/internal/session"
	"go-pos-local/internal/store"
	"go-pos-local/internal/terminal"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	term  *terminal.Terminal
	repos *repository.Repositories
	cfg   *config.Config
	agent *ai.Agent
}

// New builds the handlers. agent may be nil, in which case /api/ask is not served.
func New(term *terminal.Terminal, cfg *config.Config, agent *ai.Agent) *Handler {
	return &Handler{term: term, repos: term.Repos(), cfg: cfg, agent: agent}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/login", h.Login)
	r.GET("/api/system/status", h.GetSystemStatus)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.term))
	{
		// STAFF & ADMIN
		api.POST("/logout", h.Logout)
		api.GET("/session", h.Session)

		api.GET("/products", h.GetProducts)
		api.GET("/products/categories", h.GetCategories)
		api.GET("/products/scan/:barcode", h.ScanProduct)

		api.GET("/cart", h.GetCart)
		api.DELETE("/cart", h.ClearCart)
		api.POST("/cart/items", h.AddCartItem)
		api.PUT("/cart/items/:id", h.UpdateCartItem)
		api.DELETE("/cart/items/:id", h.RemoveCartItem)
		api.POST("/cart/voucher", h.ApplyVoucher)
		api.DELETE("/cart/voucher", h.RemoveVoucher)

		api.GET("/checkout", h.GetCheckout)
		api.POST("/checkout", h.Checkout)
		api.POST("/checkout/dismiss", h.DismissCheckout)

		api.GET("/timecard", h.GetTimeCard)
		api.POST("/timecard/punch-in", h.PunchIn)
		api.POST("/timecard/punch-out", h.PunchOut)

		api.GET("/settings", h.GetSettings)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/upload", h.UploadImage)
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.GET("/employees", h.GetEmployees)
			admin.POST("/employees", h.AddEmployee)
			admin.PUT("/employees/:id", h.UpdateEmployee)
			admin.DELETE("/employees/:id", h.DeleteEmployee)

			admin.GET("/vouchers", h.GetVouchers)
			admin.POST("/vouchers", h.AddVoucher)
			admin.PUT("/vouchers/:id", h.UpdateVoucher)
			admin.POST("/vouchers/:id/toggle", h.ToggleVoucher)
			admin.DELETE("/vouchers/:id", h.DeleteVoucher)

			admin.GET("/sales", h.GetSales)
			admin.PUT("/sales/:id", h.UpdateSale)
			admin.DELETE("/sales/:id", h.DeleteSale)

			admin.GET("/reports/sales", h.GetSalesReport)
			admin.GET("/reports/attendance", h.GetAttendanceReport)
			admin.GET("/reports/valuation", h.GetStockValuation)
			admin.POST("/reports/sales/export", h.ExportSalesReport)
			admin.POST("/reports/attendance/export", h.ExportAttendanceReport)

			admin.PUT("/settings", h.UpdateSettings)
			admin.PUT("/settings/admin-password", h.ChangeAdminPassword)
			admin.GET("/backup", h.ExportBackup)
			admin.POST("/backup/import", h.ImportBackup)

			if h.agent != nil {
				admin.POST("/ask", h.AskAI)
			}
		}
	}
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, terminal.ErrProductNotFound),
		errors.Is(err, terminal.ErrVoucherNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrInvalid),
		errors.Is(err, repository.ErrInvalidSnapshot),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingPaymentDetails),
		errors.Is(err, checkout.ErrUnknownPaymentMethod),
		errors.Is(err, session.ErrPasswordTooShort),
		errors.Is(err, session.ErrPasswordMismatch),
		errors.Is(err, session.ErrWrongPassword),
		errors.Is(err, reports.ErrPasswordRequired):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrNotLoggedIn):
		status = http.StatusUnauthorized
	case errors.Is(err, repository.ErrEditWindowClosed),
		errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrDuplicateCode),
		errors.Is(err, repository.ErrAlreadyPunchedIn),
		errors.Is(err, repository.ErrNotPunchedIn),
		errors.Is(err, terminal.ErrCheckoutInProgress),
		errors.Is(err, terminal.ErrCheckoutCancelled),
		errors.Is(err, checkout.ErrInProgress),
		errors.Is(err, checkout.ErrAwaitingDismiss),
		errors.Is(err, checkout.ErrNotProcessing):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
