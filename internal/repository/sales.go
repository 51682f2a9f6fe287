package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-local/internal/models"
	"go-pos-local/internal/store"

	"github.com/shopspring/decimal"
)

var ErrEditWindowClosed = errors.New("sales can only be changed within 24 hours of creation")

type Sales struct {
	repo *Repositories
	c    *store.Collection[models.Sale]
}

// SaleEdit carries the fields an admin may change on a recent sale.
type SaleEdit struct {
	Total          *decimal.Decimal       `json:"total"`
	PaymentMethod  models.PaymentMethod   `json:"payment_method"`
	PaymentDetails *models.PaymentDetails `json:"payment_details"`
}

// Create persists a finished sale and reports storage failures.
func (s *Sales) Create(sale models.Sale) error {
	return s.c.Append(sale)
}

func (s *Sales) List() []models.Sale {
	return newestFirst(s.c.Load(), func(x models.Sale) time.Time { return x.CreatedAt })
}

func (s *Sales) Get(id string) (models.Sale, bool) {
	return s.c.Find(func(x models.Sale) bool { return x.ID == id })
}

// Edit changes total and payment data of a sale still inside its edit window.
// Line items are never touched.
func (s *Sales) Edit(id string, edit SaleEdit, now time.Time) (models.Sale, error) {
	sale, ok := s.Get(id)
	if !ok {
		return models.Sale{}, ErrNotFound
	}
	if !sale.Editable(now) {
		return models.Sale{}, ErrEditWindowClosed
	}

	fields := map[string]any{}
	if edit.Total != nil {
		if edit.Total.IsNegative() {
			return models.Sale{}, fmt.Errorf("%w: total must not be negative", ErrInvalid)
		}
		fields["total"] = *edit.Total
	}
	method := sale.PaymentMethod
	if edit.PaymentMethod != "" {
		method = edit.PaymentMethod
		fields["payment_method"] = method
	}
	details := sale.PaymentDetails
	if edit.PaymentDetails != nil {
		details = edit.PaymentDetails
	}
	switch method {
	case models.PaymentCash:
		fields["payment_details"] = nil
	case models.PaymentECash:
		if details == nil || strings.TrimSpace(details.ReferenceNumber) == "" || strings.TrimSpace(details.BankName) == "" {
			return models.Sale{}, fmt.Errorf("%w: e-cash sales need a reference number and bank name", ErrInvalid)
		}
		fields["payment_details"] = details
	default:
		return models.Sale{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalid, method)
	}

	updated := s.c.Update(id, fields)
	if updated == nil {
		return models.Sale{}, fmt.Errorf("%w: sale could not be saved", ErrInvalid)
	}
	return *updated, nil
}

// Delete removes a sale still inside its edit window.
func (s *Sales) Delete(id string, now time.Time) error {
	sale, ok := s.Get(id)
	if !ok {
		return ErrNotFound
	}
	if !sale.Editable(now) {
		return ErrEditWindowClosed
	}
	s.c.Delete(id)
	return nil
}
