// Package checkout turns the cart into a persisted Sale.
//
// A checkout attempt moves through
//
//	Idle -> Validating -> Processing -> Completed
//	                   \-> Rejected
//
// Processing stands in for payment settlement: it is a fixed, cancellable
// delay with no gateway call. The Finalizer is not safe for concurrent use;
// callers that release their lock during the delay must keep other work off
// the cart until Complete or Abort returns.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-local/internal/cart"
	"go-pos-local/internal/models"

	"github.com/google/uuid"
)

type State int

const (
	Idle State = iota
	Validating
	Processing
	Completed
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrMissingPaymentDetails = errors.New("reference number and bank name are required for e-cash payments")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
	ErrInProgress            = errors.New("a checkout is already being processed")
	ErrAwaitingDismiss       = errors.New("the completed sale must be dismissed first")
	ErrNotProcessing         = errors.New("no checkout is being processed")
	ErrSaveFailed            = errors.New("sale could not be saved")
)

// DefaultDelay matches the settlement pause of the browser build.
const DefaultDelay = 1500 * time.Millisecond

type Request struct {
	Method  models.PaymentMethod   `json:"payment_method"`
	Details *models.PaymentDetails `json:"payment_details"`
}

// SaleWriter persists a finished sale and reports whether it landed.
type SaleWriter interface {
	Create(sale models.Sale) error
}

type Finalizer struct {
	cart  *cart.Cart
	sales SaleWriter
	delay time.Duration
	now   func() time.Time
	newID func() string

	state    State
	req      Request
	employee string
	sale     *models.Sale
	err      error
}

type Option func(*Finalizer)

func WithDelay(d time.Duration) Option {
	return func(f *Finalizer) { f.delay = d }
}

func WithClock(now func() time.Time) Option {
	return func(f *Finalizer) { f.now = now }
}

func WithIDs(newID func() string) Option {
	return func(f *Finalizer) { f.newID = newID }
}

func New(c *cart.Cart, sales SaleWriter, opts ...Option) *Finalizer {
	f := &Finalizer{
		cart:  c,
		sales: sales,
		delay: DefaultDelay,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Finalizer) State() State         { return f.state }
func (f *Finalizer) Delay() time.Duration { return f.delay }

// Err is the reason of the last rejection.
func (f *Finalizer) Err() error { return f.err }

// Sale returns the completed sale until it is dismissed.
func (f *Finalizer) Sale() (models.Sale, bool) {
	if f.state != Completed || f.sale == nil {
		return models.Sale{}, false
	}
	return *f.sale, true
}

// Begin validates the cart and payment input and enters Processing.
func (f *Finalizer) Begin(req Request, employeeID string) error {
	switch f.state {
	case Processing:
		return ErrInProgress
	case Completed:
		return ErrAwaitingDismiss
	}
	f.state = Validating
	f.err = nil

	if f.cart.IsEmpty() {
		return f.reject(ErrEmptyCart)
	}
	switch req.Method {
	case models.PaymentCash:
		req.Details = nil
	case models.PaymentECash:
		if req.Details == nil {
			return f.reject(ErrMissingPaymentDetails)
		}
		d := models.PaymentDetails{
			ReferenceNumber: strings.TrimSpace(req.Details.ReferenceNumber),
			BankName:        strings.TrimSpace(req.Details.BankName),
			ContactInfo:     strings.TrimSpace(req.Details.ContactInfo),
		}
		if d.ReferenceNumber == "" || d.BankName == "" {
			return f.reject(ErrMissingPaymentDetails)
		}
		req.Details = &d
	default:
		return f.reject(fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, req.Method))
	}

	f.req = req
	f.employee = employeeID
	f.state = Processing
	return nil
}

// Complete snapshots the cart into a Sale and persists it. A failed write
// rejects the attempt and leaves the cart as it was.
func (f *Finalizer) Complete() (models.Sale, error) {
	if f.state != Processing {
		return models.Sale{}, ErrNotProcessing
	}
	sale := f.snapshot()
	if err := f.sales.Create(sale); err != nil {
		return models.Sale{}, f.reject(fmt.Errorf("%w: %v", ErrSaveFailed, err))
	}
	f.sale = &sale
	f.state = Completed
	return sale, nil
}

// Abort cancels a pending checkout. The cart is untouched.
func (f *Finalizer) Abort() {
	if f.state == Processing {
		f.state = Idle
		f.req = Request{}
		f.employee = ""
	}
}

// Finalize runs a whole attempt: validation, the settlement delay and the
// write. Cancelling ctx during the delay aborts without writing.
func (f *Finalizer) Finalize(ctx context.Context, req Request, employeeID string) (models.Sale, error) {
	if err := f.Begin(req, employeeID); err != nil {
		return models.Sale{}, err
	}
	if err := Wait(ctx, f.delay); err != nil {
		f.Abort()
		return models.Sale{}, err
	}
	return f.Complete()
}

// Dismiss closes the checkout flow. The cart is cleared only when a sale was
// completed; the voucher is always dropped.
func (f *Finalizer) Dismiss() error {
	if f.state == Processing {
		return ErrInProgress
	}
	if f.state == Completed {
		f.cart.Clear()
	}
	f.cart.RemoveVoucher()
	f.state = Idle
	f.sale = nil
	f.err = nil
	f.req = Request{}
	f.employee = ""
	return nil
}

// Reset drops every trace of the current attempt, pending or not.
func (f *Finalizer) Reset() {
	f.state = Idle
	f.sale = nil
	f.err = nil
	f.req = Request{}
	f.employee = ""
}

func (f *Finalizer) reject(err error) error {
	f.state = Rejected
	f.err = err
	return err
}

func (f *Finalizer) snapshot() models.Sale {
	lines := f.cart.Items()
	items := make([]models.SaleItem, 0, len(lines))
	for _, it := range lines {
		items = append(items, models.SaleItem{
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			Price:       it.Product.Price,
		})
	}
	subtotal := f.cart.Subtotal().Round(2)
	discount := f.cart.Discount().Round(2)
	sale := models.Sale{
		ID:             f.newID(),
		Total:          f.cart.Total().Round(2),
		PaymentMethod:  f.req.Method,
		PaymentDetails: f.req.Details,
		Items:          items,
		EmployeeID:     f.employee,
		CreatedAt:      f.now().UTC(),
		Subtotal:       &subtotal,
	}
	if v, ok := f.cart.Voucher(); ok {
		sale.Discount = &discount
		sale.VoucherCode = v.Code
	}
	return sale
}

// Wait blocks for d or until ctx is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
