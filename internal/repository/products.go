package repository

import (
	"fmt"
	"strings"
	"time"

	"go-pos-local/internal/models"
	"go-pos-local/internal/store"

	"github.com/shopspring/decimal"
)

type Products struct {
	repo *Repositories
	c    *store.Collection[models.Product]
}

type ProductInput struct {
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"image_url"`
	Barcode  string          `json:"barcode"`
}

// List returns every product, newest first.
func (p *Products) List() []models.Product {
	return newestFirst(p.c.Load(), func(x models.Product) time.Time { return x.CreatedAt })
}

func (p *Products) Get(id string) (models.Product, bool) {
	return p.c.Find(func(x models.Product) bool { return x.ID == id })
}

func (p *Products) FindByBarcode(barcode string) (models.Product, bool) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return models.Product{}, false
	}
	return p.c.Find(func(x models.Product) bool { return x.Barcode == barcode })
}

// Search filters by a case-insensitive name substring and an exact category;
// an empty category or "all" matches everything.
func (p *Products) Search(term, category string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []models.Product
	for _, x := range p.List() {
		if term != "" && !strings.Contains(strings.ToLower(x.Name), term) {
			continue
		}
		if category != "" && category != "all" && x.Category != category {
			continue
		}
		out = append(out, x)
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func (p *Products) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, x := range p.c.Load() {
		if !seen[x.Category] {
			seen[x.Category] = true
			out = append(out, x.Category)
		}
	}
	return out
}

func (p *Products) Create(in ProductInput) (models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Product{}, fmt.Errorf("%w: product name is required", ErrInvalid)
	}
	if in.Price.IsNegative() || in.Stock < 0 {
		return models.Product{}, fmt.Errorf("%w: price and stock must not be negative", ErrInvalid)
	}
	id, now := p.repo.stamp()
	product := models.Product{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		Category:  strings.TrimSpace(in.Category),
		Stock:     in.Stock,
		ImageURL:  in.ImageURL,
		Barcode:   strings.TrimSpace(in.Barcode),
		CreatedAt: now,
	}
	if err := p.c.Append(product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// Update merges the given fields into the product. id and created_at are fixed.
// A missing product is ErrNotFound; a merge that fails validation is ErrInvalid.
func (p *Products) Update(id string, fields map[string]any) (models.Product, error) {
	if _, ok := p.Get(id); !ok {
		return models.Product{}, ErrNotFound
	}
	updated := p.c.Update(id, withoutKeys(fields, "id", "created_at"))
	if updated == nil {
		return models.Product{}, fmt.Errorf("%w: product could not be saved", ErrInvalid)
	}
	return *updated, nil
}

func (p *Products) Delete(id string) {
	p.c.Delete(id)
}
