package terminal

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"go-pos-local/internal/checkout"
	"go-pos-local/internal/models"
	"go-pos-local/internal/repository"
	"go-pos-local/internal/session"
	"go-pos-local/internal/store"

	"github.com/shopspring/decimal"
)

func newTerminal(t *testing.T, delay time.Duration) (*Terminal, *repository.Repositories) {
	t.Helper()
	s := repository.NewStore(store.NewMemoryBackend(), store.WithLogger(log.New(io.Discard, "", 0)))
	repos := repository.New(s)
	if err := repos.Vouchers.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	sess := session.New(s, repos.Employees, session.PlaintextVerifier{})
	return New(repos, sess, checkout.WithDelay(delay)), repos
}

func addProduct(t *testing.T, repos *repository.Repositories, name, price, barcode string) models.Product {
	t.Helper()
	p, err := repos.Products.Create(repository.ProductInput{Name: name, Price: decimal.RequireFromString(price), Category: "General", Stock: 10, Barcode: barcode})
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}
	return p
}

func login(t *testing.T, term *Terminal) models.User {
	t.Helper()
	u, err := term.Login("employee@pos.com", "emp123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return u
}

func TestTerminal_SaleFlow(t *testing.T) {
	term, repos := newTerminal(t, 0)
	a := addProduct(t, repos, "Product A", "5.00", "")
	b := addProduct(t, repos, "Product B", "3.50", "4800016644290")
	user := login(t, term)

	if _, err := term.AddProduct(a.ID); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if _, err := term.AddProduct(a.ID); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if p, _, err := term.Scan("4800016644290"); err != nil || p.ID != b.ID {
		t.Fatalf("Scan: %+v %v", p, err)
	}
	summary, err := term.ApplyVoucher("save10")
	if err != nil {
		t.Fatalf("ApplyVoucher: %v", err)
	}
	if !summary.Total.Equal(decimal.RequireFromString("12.15")) {
		t.Fatalf("cart total = %s", summary.Total)
	}

	sale, err := term.Checkout(context.Background(), checkout.Request{Method: models.PaymentCash})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if sale.EmployeeID != user.ID || !sale.Total.Equal(decimal.RequireFromString("12.15")) || len(sale.Items) != 2 {
		t.Fatalf("unexpected sale: %+v", sale)
	}
	if _, ok := repos.Sales.Get(sale.ID); !ok {
		t.Fatal("sale not persisted")
	}

	st := term.CheckoutStatus()
	if st.State != checkout.Completed || st.Invoice == nil || st.Invoice.BrandName != "POS System" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if _, err := term.AddProduct(a.ID); !errors.Is(err, checkout.ErrAwaitingDismiss) {
		t.Fatalf("expected ErrAwaitingDismiss, got %v", err)
	}

	if err := term.DismissCheckout(); err != nil {
		t.Fatalf("DismissCheckout: %v", err)
	}
	if c := term.Cart(); len(c.Items) != 0 || c.Voucher != nil {
		t.Fatalf("cart not cleared: %+v", c)
	}
}

func TestTerminal_CartLockedWhileProcessing(t *testing.T) {
	term, repos := newTerminal(t, time.Hour)
	a := addProduct(t, repos, "Product A", "5.00", "")
	login(t, term)
	_, _ = term.AddProduct(a.ID)

	done := make(chan error, 1)
	go func() {
		_, err := term.Checkout(context.Background(), checkout.Request{Method: models.PaymentCash})
		done <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for term.CheckoutStatus().State != checkout.Processing {
		if time.Now().After(deadline) {
			t.Fatal("checkout never reached processing")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := term.AddProduct(a.ID); !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
	if _, err := term.ApplyVoucher("WELCOME"); !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}

	if err := term.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrCheckoutCancelled) {
			t.Fatalf("expected ErrCheckoutCancelled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("checkout did not stop after logout")
	}
	if len(repos.Sales.List()) != 0 {
		t.Fatal("a cancelled checkout persisted a sale")
	}
	if c := term.Cart(); len(c.Items) != 0 {
		t.Fatalf("logout must tear down the cart, got %+v", c)
	}
}

func TestTerminal_ContextCancelKeepsCart(t *testing.T) {
	term, repos := newTerminal(t, time.Hour)
	a := addProduct(t, repos, "Product A", "5.00", "")
	login(t, term)
	_, _ = term.AddProduct(a.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := term.Checkout(ctx, checkout.Request{Method: models.PaymentCash}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if term.CheckoutStatus().State != checkout.Idle {
		t.Fatal("aborted checkout should return to idle")
	}
	if c := term.Cart(); len(c.Items) != 1 {
		t.Fatalf("cart must survive an aborted checkout, got %+v", c)
	}
}

func TestTerminal_RequiresSession(t *testing.T) {
	term, repos := newTerminal(t, 0)
	a := addProduct(t, repos, "Product A", "5.00", "")
	_, _ = term.AddProduct(a.ID)

	if _, err := term.Checkout(context.Background(), checkout.Request{Method: models.PaymentCash}); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	if _, err := term.PunchIn(); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestTerminal_Lookups(t *testing.T) {
	term, repos := newTerminal(t, 0)
	login(t, term)

	if _, err := term.AddProduct("missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, _, err := term.Scan("0000"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := term.ApplyVoucher("NOPE"); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound, got %v", err)
	}
	for _, v := range repos.Vouchers.List() {
		if v.Code == "WELCOME" {
			repos.Vouchers.Toggle(v.ID)
		}
	}
	if _, err := term.ApplyVoucher("WELCOME"); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("inactive voucher applied: %v", err)
	}
}

func TestTerminal_TimeClock(t *testing.T) {
	term, _ := newTerminal(t, 0)
	user := login(t, term)

	if _, err := term.PunchIn(); err != nil {
		t.Fatalf("PunchIn: %v", err)
	}
	if _, err := term.PunchIn(); !errors.Is(err, repository.ErrAlreadyPunchedIn) {
		t.Fatalf("expected ErrAlreadyPunchedIn, got %v", err)
	}
	card, err := term.TimeCard()
	if err != nil || card.Open == nil || card.Open.EmployeeID != user.ID {
		t.Fatalf("unexpected time card: %+v %v", card, err)
	}
	if _, err := term.PunchOut(); err != nil {
		t.Fatalf("PunchOut: %v", err)
	}
	card, _ = term.TimeCard()
	if card.Open != nil || len(card.Entries) != 1 {
		t.Fatalf("unexpected time card after punch out: %+v", card)
	}
}
