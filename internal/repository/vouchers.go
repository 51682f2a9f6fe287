package repository

import (
	"errors"
	"fmt"
	"strings"

	"go-pos-local/internal/models"
	"go-pos-local/internal/store"

	"github.com/shopspring/decimal"
)

var ErrDuplicateCode = errors.New("voucher code already exists")

type Vouchers struct {
	repo *Repositories
	c    *store.Collection[models.Voucher]
}

type VoucherInput struct {
	Code          string              `json:"code" binding:"required"`
	DiscountType  models.DiscountType `json:"discount_type" binding:"required"`
	DiscountValue decimal.Decimal     `json:"discount_value"`
	IsActive      *bool               `json:"is_active"`
}

// DefaultVouchers is the catalog a fresh terminal starts with.
func DefaultVouchers() []VoucherInput {
	active := true
	return []VoucherInput{
		{Code: "SAVE10", DiscountType: models.DiscountPercentage, DiscountValue: decimal.NewFromInt(10), IsActive: &active},
		{Code: "WELCOME", DiscountType: models.DiscountFixed, DiscountValue: decimal.NewFromInt(5), IsActive: &active},
	}
}

// Seed writes the default catalog when the collection has never been written.
func (v *Vouchers) Seed() error {
	if v.c.Exists() {
		return nil
	}
	for _, in := range DefaultVouchers() {
		if _, err := v.Create(in); err != nil {
			return err
		}
	}
	return nil
}

// List returns the catalog in stored order, which is the order codes resolve in.
func (v *Vouchers) List() []models.Voucher {
	return v.c.Load()
}

func (v *Vouchers) Get(id string) (models.Voucher, bool) {
	return v.c.Find(func(x models.Voucher) bool { return x.ID == id })
}

func (v *Vouchers) Create(in VoucherInput) (models.Voucher, error) {
	code, err := checkVoucher(in)
	if err != nil {
		return models.Voucher{}, err
	}
	if v.codeTaken(code, "") {
		return models.Voucher{}, ErrDuplicateCode
	}
	id, now := v.repo.stamp()
	voucher := models.Voucher{
		ID:            id,
		Code:          code,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		IsActive:      in.IsActive == nil || *in.IsActive,
		CreatedAt:     now,
	}
	if err := v.c.Append(voucher); err != nil {
		return models.Voucher{}, err
	}
	return voucher, nil
}

func (v *Vouchers) Update(id string, in VoucherInput) (models.Voucher, error) {
	current, ok := v.Get(id)
	if !ok {
		return models.Voucher{}, ErrNotFound
	}
	code, err := checkVoucher(in)
	if err != nil {
		return models.Voucher{}, err
	}
	if v.codeTaken(code, id) {
		return models.Voucher{}, ErrDuplicateCode
	}
	active := current.IsActive
	if in.IsActive != nil {
		active = *in.IsActive
	}
	updated := v.c.Update(id, map[string]any{
		"code":           code,
		"discount_type":  in.DiscountType,
		"discount_value": in.DiscountValue,
		"is_active":      active,
	})
	if updated == nil {
		return models.Voucher{}, fmt.Errorf("%w: voucher could not be saved", ErrInvalid)
	}
	return *updated, nil
}

// Toggle flips is_active.
func (v *Vouchers) Toggle(id string) (models.Voucher, bool) {
	current, ok := v.Get(id)
	if !ok {
		return models.Voucher{}, false
	}
	updated := v.c.Update(id, map[string]any{"is_active": !current.IsActive})
	if updated == nil {
		return models.Voucher{}, false
	}
	return *updated, true
}

func (v *Vouchers) Delete(id string) {
	v.c.Delete(id)
}

func (v *Vouchers) codeTaken(code, exceptID string) bool {
	_, taken := v.c.Find(func(x models.Voucher) bool {
		return x.ID != exceptID && strings.EqualFold(x.Code, code)
	})
	return taken
}

func checkVoucher(in VoucherInput) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" {
		return "", fmt.Errorf("%w: voucher code is required", ErrInvalid)
	}
	if in.DiscountValue.IsNegative() {
		return "", fmt.Errorf("%w: discount must not be negative", ErrInvalid)
	}
	switch in.DiscountType {
	case models.DiscountPercentage:
		if in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return "", fmt.Errorf("%w: percentage discount must be between 0 and 100", ErrInvalid)
		}
	case models.DiscountFixed:
	default:
		return "", fmt.Errorf("%w: unknown discount type %q", ErrInvalid, in.DiscountType)
	}
	return code, nil
}
