// Package terminal is the application context of one POS terminal: the
// active session, its cart and its checkout flow. A single mutex serializes
// every operation, so only one logical task touches the cart at a time.
package terminal

import (
	"context"
	"errors"
	"sync"

	"go-pos-local/internal/cart"
	"go-pos-local/internal/checkout"
	"go-pos-local/internal/models"
	"go-pos-local/internal/repository"
	"go-pos-local/internal/session"
	"go-pos-local/internal/voucher"
)

var (
	ErrCheckoutInProgress = errors.New("a checkout is being processed")
	ErrCheckoutCancelled  = errors.New("checkout was cancelled")
	ErrProductNotFound    = errors.New("product not found")
	ErrVoucherNotFound    = errors.New("invalid or expired voucher code")
)

type Terminal struct {
	mu       sync.Mutex
	repos    *repository.Repositories
	session  *session.Provider
	cart     *cart.Cart
	checkout *checkout.Finalizer

	attempt int
	cancel  context.CancelFunc
}

func New(repos *repository.Repositories, sess *session.Provider, opts ...checkout.Option) *Terminal {
	c := cart.New(repos.Products)
	return &Terminal{
		repos:    repos,
		session:  sess,
		cart:     c,
		checkout: checkout.New(c, repos.Sales, opts...),
	}
}

func (t *Terminal) Repos() *repository.Repositories { return t.repos }
func (t *Terminal) Session() *session.Provider       { return t.session }

// --- session ---

// Login opens a session. Whatever the previous user left in the cart is
// discarded.
func (t *Terminal) Login(email, password string) (models.User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	user, err := t.session.Login(email, password)
	if err != nil {
		return models.User{}, err
	}
	t.teardown()
	return user, nil
}

// Logout ends the session and tears down the cart and any pending checkout.
func (t *Terminal) Logout() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardown()
	return t.session.Logout()
}

func (t *Terminal) CurrentUser() (models.User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Current()
}

func (t *Terminal) teardown() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.attempt++
	t.checkout.Reset()
	t.cart.Reset()
}

// --- cart ---

func (t *Terminal) Cart() cart.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Summary()
}

// editable guards cart mutations against a pending or unacknowledged checkout.
func (t *Terminal) editable() error {
	switch t.checkout.State() {
	case checkout.Processing:
		return ErrCheckoutInProgress
	case checkout.Completed:
		return checkout.ErrAwaitingDismiss
	}
	return nil
}

func (t *Terminal) mutate(fn func() error) (cart.Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.editable(); err != nil {
		return cart.Summary{}, err
	}
	if err := fn(); err != nil {
		return cart.Summary{}, err
	}
	return t.cart.Summary(), nil
}

func (t *Terminal) AddProduct(productID string) (cart.Summary, error) {
	return t.mutate(func() error {
		p, ok := t.repos.Products.Get(productID)
		if !ok {
			return ErrProductNotFound
		}
		t.cart.AddItem(p)
		return nil
	})
}

// Scan adds the product carrying barcode to the cart.
func (t *Terminal) Scan(barcode string) (models.Product, cart.Summary, error) {
	var found models.Product
	summary, err := t.mutate(func() error {
		p, ok := t.repos.Products.FindByBarcode(barcode)
		if !ok {
			return ErrProductNotFound
		}
		found = p
		t.cart.AddItem(p)
		return nil
	})
	return found, summary, err
}

func (t *Terminal) SetQuantity(productID string, quantity int) (cart.Summary, error) {
	return t.mutate(func() error {
		t.cart.SetQuantity(productID, quantity)
		return nil
	})
}

func (t *Terminal) RemoveItem(productID string) (cart.Summary, error) {
	return t.mutate(func() error {
		t.cart.RemoveItem(productID)
		return nil
	})
}

// ClearCart empties the cart and its voucher slot.
func (t *Terminal) ClearCart() (cart.Summary, error) {
	return t.mutate(func() error {
		t.cart.Reset()
		return nil
	})
}

// ApplyVoucher resolves code against the current catalog.
func (t *Terminal) ApplyVoucher(code string) (cart.Summary, error) {
	return t.mutate(func() error {
		v, ok := voucher.Resolve(code, t.repos.Vouchers.List())
		if !ok {
			return ErrVoucherNotFound
		}
		t.cart.ApplyVoucher(v)
		return nil
	})
}

func (t *Terminal) RemoveVoucher() (cart.Summary, error) {
	return t.mutate(func() error {
		t.cart.RemoveVoucher()
		return nil
	})
}

// --- checkout ---

// Status is the visible state of the checkout flow.
type Status struct {
	State   checkout.State    `json:"state"`
	Error   string            `json:"error,omitempty"`
	Sale    *models.Sale      `json:"sale,omitempty"`
	Invoice *checkout.Invoice `json:"invoice,omitempty"`
}

func (t *Terminal) CheckoutStatus() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Status{State: t.checkout.State()}
	if err := t.checkout.Err(); err != nil {
		st.Error = err.Error()
	}
	if sale, ok := t.checkout.Sale(); ok {
		inv := checkout.NewInvoice(sale, t.repos.Settings.Get())
		st.Sale = &sale
		st.Invoice = &inv
	}
	return st
}

// Checkout validates, waits out the settlement delay without holding the
// lock, then writes the sale. Cart edits made during the delay are refused.
// Cancelling ctx, or a logout during the delay, aborts without writing.
func (t *Terminal) Checkout(ctx context.Context, req checkout.Request) (models.Sale, error) {
	t.mu.Lock()
	user, ok := t.session.Current()
	if !ok {
		t.mu.Unlock()
		return models.Sale{}, session.ErrNotLoggedIn
	}
	if err := t.checkout.Begin(req, user.ID); err != nil {
		t.mu.Unlock()
		return models.Sale{}, err
	}
	t.attempt++
	mine := t.attempt
	waitCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	delay := t.checkout.Delay()
	t.mu.Unlock()

	waitErr := checkout.Wait(waitCtx, delay)

	t.mu.Lock()
	defer t.mu.Unlock()
	cancel()
	if t.attempt != mine {
		return models.Sale{}, ErrCheckoutCancelled
	}
	t.cancel = nil
	if waitErr != nil {
		t.checkout.Abort()
		return models.Sale{}, waitErr
	}
	return t.checkout.Complete()
}

// DismissCheckout closes the checkout flow; see checkout.Finalizer.Dismiss.
func (t *Terminal) DismissCheckout() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkout.Dismiss()
}

// --- time clock ---

func (t *Terminal) PunchIn() (models.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	user, ok := t.session.Current()
	if !ok {
		return models.TimeEntry{}, session.ErrNotLoggedIn
	}
	return t.repos.TimeEntries.PunchIn(user)
}

func (t *Terminal) PunchOut() (models.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	user, ok := t.session.Current()
	if !ok {
		return models.TimeEntry{}, session.ErrNotLoggedIn
	}
	return t.repos.TimeEntries.PunchOut(user.ID)
}

// TimeCard is the current user's clock state and history.
type TimeCard struct {
	Open    *models.TimeEntry  `json:"open,omitempty"`
	Entries []models.TimeEntry `json:"entries"`
}

func (t *Terminal) TimeCard() (TimeCard, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	user, ok := t.session.Current()
	if !ok {
		return TimeCard{}, session.ErrNotLoggedIn
	}
	card := TimeCard{Entries: t.repos.TimeEntries.ListByEmployee(user.ID)}
	if card.Entries == nil {
		card.Entries = []models.TimeEntry{}
	}
	if open, ok := t.repos.TimeEntries.Open(user.ID); ok {
		card.Open = &open
	}
	return card, nil
}

func (t *Terminal) ChangeAdminPassword(current, next, confirm string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.ChangeAdminPassword(current, next, confirm)
}
