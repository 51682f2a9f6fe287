// Package voucher resolves voucher codes against the catalog and computes
// the discount they grant.
package voucher

import (
	"strings"

	"go-pos-local/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Normalize is the canonical form of a code: trimmed and uppercase.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve finds the active voucher whose code matches exactly after
// normalization. The catalog's order is authoritative: with duplicate codes
// the first one wins.
func Resolve(code string, catalog []models.Voucher) (models.Voucher, bool) {
	code = Normalize(code)
	if code == "" {
		return models.Voucher{}, false
	}
	for _, v := range catalog {
		if v.IsActive && Normalize(v.Code) == code {
			return v, true
		}
	}
	return models.Voucher{}, false
}

// Discount is the amount v takes off subtotal. Percentage vouchers scale with
// the subtotal; fixed vouchers are a flat amount and are not capped.
func Discount(v models.Voucher, subtotal decimal.Decimal) decimal.Decimal {
	switch v.DiscountType {
	case models.DiscountPercentage:
		return subtotal.Mul(v.DiscountValue).Div(hundred)
	case models.DiscountFixed:
		return v.DiscountValue
	}
	return decimal.Zero
}
