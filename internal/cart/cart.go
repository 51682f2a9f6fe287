// Package cart is the in-memory cart of the active checkout: the scanned
// products, their quantities and at most one applied voucher.
package cart

import (
	"go-pos-local/internal/models"
	"go-pos-local/internal/voucher"

	"github.com/shopspring/decimal"
)

// ProductFinder looks up the live product so prices are read at computation
// time rather than frozen when the item was added.
type ProductFinder interface {
	Get(id string) (models.Product, bool)
}

type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is not safe for concurrent use; the terminal serializes access.
type Cart struct {
	items   []Item
	voucher *models.Voucher
	finder  ProductFinder
}

// New returns an empty cart. finder may be nil, in which case prices are
// taken from the product value passed to AddItem.
func New(finder ProductFinder) *Cart {
	return &Cart{finder: finder}
}

// AddItem increments the quantity of an existing line or appends a new one.
func (c *Cart) AddItem(p models.Product) Item {
	for i := range c.items {
		if c.items[i].Product.ID == p.ID {
			c.items[i].Quantity++
			c.items[i].Product = p
			return c.items[i]
		}
	}
	item := Item{Product: p, Quantity: 1}
	c.items = append(c.items, item)
	return item
}

func (c *Cart) RemoveItem(productID string) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// SetQuantity replaces a line's quantity. Zero or less removes the line.
// Stock is not checked.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the items and keeps the voucher slot.
func (c *Cart) Clear() {
	c.items = nil
}

// Reset empties the items and the voucher slot.
func (c *Cart) Reset() {
	c.items = nil
	c.voucher = nil
}

// Items returns a copy of the lines in insertion order, refreshed with the
// live product when a finder is set. Lines whose product disappeared keep
// the last known copy.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		if c.finder != nil {
			if p, ok := c.finder.Get(it.Product.ID); ok {
				it.Product = p
			}
		}
		out[i] = it
	}
	return out
}

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items() {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// ApplyVoucher fills the single voucher slot, replacing any previous voucher.
func (c *Cart) ApplyVoucher(v models.Voucher) {
	c.voucher = &v
}

func (c *Cart) RemoveVoucher() {
	c.voucher = nil
}

func (c *Cart) Voucher() (models.Voucher, bool) {
	if c.voucher == nil {
		return models.Voucher{}, false
	}
	return *c.voucher, true
}

// Discount is the applied voucher's discount on the current subtotal. It is
// not capped at the subtotal.
func (c *Cart) Discount() decimal.Decimal {
	if c.voucher == nil {
		return decimal.Zero
	}
	return voucher.Discount(*c.voucher, c.Subtotal())
}

// Total is subtotal minus discount, never below zero.
func (c *Cart) Total() decimal.Decimal {
	total := c.Subtotal().Sub(c.Discount())
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Summary is a point-in-time view of the cart for display.
type Summary struct {
	Items    []Item          `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Voucher  *models.Voucher `json:"voucher,omitempty"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

func (c *Cart) Summary() Summary {
	s := Summary{
		Items:    c.Items(),
		Count:    c.Count(),
		Subtotal: c.Subtotal(),
		Discount: c.Discount(),
		Total:    c.Total(),
	}
	if v, ok := c.Voucher(); ok {
		s.Voucher = &v
	}
	return s
}
