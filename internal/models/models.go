package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is persisted as plain JSON numbers, the same shape the terminal UI sends.
	decimal.MarshalJSONWithoutQuotes = true
}

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// User - The person operating the terminal (built-in account or stored employee)
type User struct {
	ID             string    `json:"id" validate:"required"`
	Email          string    `json:"email" validate:"required"`
	Name           string    `json:"name" validate:"required"`
	Role           Role      `json:"role" validate:"oneof=admin employee"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Password       string    `json:"password,omitempty"` // plaintext or hash, depending on the verifier
	CreatedAt      time.Time `json:"created_at"`
}

// Public strips the stored credential before the user leaves the process.
func (u User) Public() User {
	u.Password = ""
	return u
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Product - The Inventory
type Product struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Category  string          `json:"category"`
	Stock     int             `json:"stock" validate:"gte=0"`
	ImageURL  string          `json:"image_url,omitempty"`
	Barcode   string          `json:"barcode,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Voucher - A named discount rule. Codes are stored uppercase.
type Voucher struct {
	ID            string          `json:"id" validate:"required"`
	Code          string          `json:"code" validate:"required"`
	DiscountType  DiscountType    `json:"discount_type" validate:"oneof=percentage fixed"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"gte=0"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Settings - The singleton branding record
type Settings struct {
	ID             string    `json:"id"`
	LogoURL        string    `json:"logo_url,omitempty"`
	BrandName      string    `json:"brand_name" validate:"required"`
	PrimaryColor   string    `json:"primary_color"`
	Currency       string    `json:"currency"`
	CurrencySymbol string    `json:"currency_symbol"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func DefaultSettings() Settings {
	return Settings{
		ID:             "1",
		BrandName:      "POS System",
		PrimaryColor:   "#3B82F6",
		Currency:       "USD",
		CurrencySymbol: "$",
	}
}
