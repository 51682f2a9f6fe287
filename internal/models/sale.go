package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentECash PaymentMethod = "ecash"
)

// SaleEditWindow is how long after creation a sale may still be edited or deleted.
const SaleEditWindow = 24 * time.Hour

type PaymentDetails struct {
	ReferenceNumber string `json:"reference_number,omitempty"`
	BankName        string `json:"bank_name,omitempty"`
	ContactInfo     string `json:"contact_info,omitempty"`
}

// SaleItem - Frozen copy of a cart line. Never points back at the live Product.
type SaleItem struct {
	ProductID   string          `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity" validate:"gte=1"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"` // Snapshot of price at time of sale
}

// Sale - The Transaction
type Sale struct {
	ID             string          `json:"id" validate:"required"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  PaymentMethod   `json:"payment_method" validate:"oneof=cash ecash"`
	PaymentDetails *PaymentDetails `json:"payment_details,omitempty"`
	Items          []SaleItem      `json:"items" validate:"dive"`
	EmployeeID     string          `json:"employee_id"`
	CreatedAt      time.Time       `json:"created_at"`

	// Pricing breakdown captured at checkout for invoices and reports.
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
	VoucherCode string           `json:"voucher_code,omitempty"`
}

// Editable reports whether now falls inside [CreatedAt, CreatedAt+24h).
func (s Sale) Editable(now time.Time) bool {
	if now.Before(s.CreatedAt) {
		return false
	}
	return now.Sub(s.CreatedAt) < SaleEditWindow
}

// TimeEntry - One punch-in/punch-out session
type TimeEntry struct {
	ID           string     `json:"id" validate:"required"`
	EmployeeID   string     `json:"employee_id" validate:"required"`
	EmployeeName string     `json:"employee_name"`
	PunchIn      time.Time  `json:"punch_in"`
	PunchOut     *time.Time `json:"punch_out,omitempty"`
	TotalHours   *float64   `json:"total_hours,omitempty"`
	Date         string     `json:"date"` // YYYY-MM-DD of punch_in
	CreatedAt    time.Time  `json:"created_at"`
}

func (e TimeEntry) IsOpen() bool { return e.PunchOut == nil }
