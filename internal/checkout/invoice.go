package checkout

import (
	"time"

	"go-pos-local/internal/models"

	"github.com/shopspring/decimal"
)

type InvoiceLine struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice is the printable view of a completed sale.
type Invoice struct {
	Number         string                 `json:"number"`
	Date           time.Time              `json:"date"`
	BrandName      string                 `json:"brand_name"`
	LogoURL        string                 `json:"logo_url,omitempty"`
	PrimaryColor   string                 `json:"primary_color"`
	CurrencySymbol string                 `json:"currency_symbol"`
	Lines          []InvoiceLine          `json:"lines"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	VoucherCode    string                 `json:"voucher_code,omitempty"`
	Discount       decimal.Decimal        `json:"discount"`
	Total          decimal.Decimal        `json:"total"`
	PaymentMethod  models.PaymentMethod   `json:"payment_method"`
	PaymentDetails *models.PaymentDetails `json:"payment_details,omitempty"`
}

// NewInvoice renders sale with the terminal's branding. Sales written before
// the pricing breakdown was stored get it derived from their lines.
func NewInvoice(sale models.Sale, settings models.Settings) Invoice {
	inv := Invoice{
		Number:         sale.ID,
		Date:           sale.CreatedAt,
		BrandName:      settings.BrandName,
		LogoURL:        settings.LogoURL,
		PrimaryColor:   settings.PrimaryColor,
		CurrencySymbol: settings.CurrencySymbol,
		Lines:          make([]InvoiceLine, 0, len(sale.Items)),
		VoucherCode:    sale.VoucherCode,
		Total:          sale.Total,
		PaymentMethod:  sale.PaymentMethod,
		PaymentDetails: sale.PaymentDetails,
	}

	sum := decimal.Zero
	for _, it := range sale.Items {
		amount := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(amount)
		inv.Lines = append(inv.Lines, InvoiceLine{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Amount:      amount,
		})
	}

	inv.Subtotal = sum
	if sale.Subtotal != nil {
		inv.Subtotal = *sale.Subtotal
	}
	switch {
	case sale.Discount != nil:
		inv.Discount = *sale.Discount
	case inv.Subtotal.GreaterThan(sale.Total):
		inv.Discount = inv.Subtotal.Sub(sale.Total)
	}
	return inv
}

// Format renders an amount with the currency symbol and two decimals.
func (inv Invoice) Format(amount decimal.Decimal) string {
	return inv.CurrencySymbol + amount.StringFixed(2)
}
