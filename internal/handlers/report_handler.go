package handlers

import (
	"bytes"
	"net/http"

	"go-pos-local/internal/middleware"
	"go-pos-local/internal/reports"
	"go-pos-local/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// --- Sales history ---

func (h *Handler) GetSales(c *gin.Context) {
	c.JSON(http.StatusOK, h.repos.Sales.List())
}

// UpdateSale edits total and payment data. Sales older than 24 hours get 409.
func (h *Handler) UpdateSale(c *gin.Context) {
	var edit repository.SaleEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	sale, err := h.repos.Sales.Edit(c.Param("id"), edit, h.repos.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *Handler) DeleteSale(c *gin.Context) {
	if err := h.repos.Sales.Delete(c.Param("id"), h.repos.Now()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
}

// --- Reports ---

func (h *Handler) parseRange(c *gin.Context, raw string, def reports.Range) (reports.Range, bool) {
	r, err := reports.ParseRange(raw, def)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return r, true
}

// --- GET: /api/reports/sales?range=today|week|month|all ---
func (h *Handler) GetSalesReport(c *gin.Context) {
	r, ok := h.parseRange(c, c.Query("range"), reports.Today)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reports.Sales(h.repos.Sales.List(), r, h.repos.Now()))
}

// --- GET: /api/reports/attendance?range=...&employee_id=... ---
func (h *Handler) GetAttendanceReport(c *gin.Context) {
	r, ok := h.parseRange(c, c.Query("range"), reports.Week)
	if !ok {
		return
	}
	rep := reports.AttendanceFor(h.repos.TimeEntries.List(), r, c.Query("employee_id"), h.repos.Now())
	c.JSON(http.StatusOK, rep)
}

// --- GET: /api/reports/valuation ---
// The total monetary value of all physical inventory, grouped by category.
func (h *Handler) GetStockValuation(c *gin.Context) {
	c.JSON(http.StatusOK, reports.StockValuation(h.repos.Products.List()))
}

type ExportRequest struct {
	Range      string `json:"range"`
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password" binding:"required"`
}

func (h *Handler) ExportSalesReport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": reports.ErrPasswordRequired.Error()})
		return
	}
	r, ok := h.parseRange(c, req.Range, reports.Today)
	if !ok {
		return
	}
	now := h.repos.Now()
	sum := reports.Sales(h.repos.Sales.List(), r, now)
	f, err := reports.SalesWorkbook(sum, h.repos.Settings.Get(), h.generatedBy(c), now)
	if err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, f, req.Password, reports.Filename("sales", r, now))
}

func (h *Handler) ExportAttendanceReport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": reports.ErrPasswordRequired.Error()})
		return
	}
	r, ok := h.parseRange(c, req.Range, reports.Week)
	if !ok {
		return
	}
	label := "All Employees"
	if req.EmployeeID != "" && req.EmployeeID != "all" {
		emp, found := h.repos.Employees.Get(req.EmployeeID)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Employee not found"})
			return
		}
		label = emp.Name
	}
	now := h.repos.Now()
	rep := reports.AttendanceFor(h.repos.TimeEntries.List(), r, req.EmployeeID, now)
	f, err := reports.AttendanceWorkbook(rep, label, h.generatedBy(c), now)
	if err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, f, req.Password, reports.Filename("attendance", r, now))
}

func (h *Handler) generatedBy(c *gin.Context) string {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.Name
	}
	return "Unknown"
}

// sendWorkbook encrypts the workbook in memory so a failure can still be
// reported as JSON.
func sendWorkbook(c *gin.Context, f *excelize.File, password, filename string) {
	var buf bytes.Buffer
	if err := reports.Write(f, &buf, password); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
