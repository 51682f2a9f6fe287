// Package repository holds the typed collections of the terminal: products,
// employees, sales, time entries, vouchers and the settings singleton.
package repository

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"go-pos-local/internal/models"
	"go-pos-local/internal/store"

	"github.com/google/uuid"
)

// Storage keys, shared with the browser build so its exports stay importable.
const (
	KeyProducts      = "pos_products"
	KeyEmployees     = "pos_employees"
	KeySales         = "pos_sales"
	KeyTimeEntries   = "pos_time_entries"
	KeyVouchers      = "pos_vouchers"
	KeySettings      = "pos_settings"
	KeyCurrentUser   = "pos_current_user"
	KeyAdminPassword = "admin_password"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrInvalid  = errors.New("invalid input")
)

// PasswordHasher turns a presented password into the form kept on disk.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return p, nil }

type Repositories struct {
	Store       *store.Store
	Products    *Products
	Employees   *Employees
	Sales       *Sales
	TimeEntries *TimeEntries
	Vouchers    *Vouchers
	Settings    *SettingsRepo

	now   func() time.Time
	newID func() string
}

type Option func(*Repositories)

func WithClock(now func() time.Time) Option {
	return func(r *Repositories) { r.now = now }
}

func WithIDs(newID func() string) Option {
	return func(r *Repositories) { r.newID = newID }
}

func WithHasher(h PasswordHasher) Option {
	return func(r *Repositories) { r.Employees.hasher = h }
}

func New(s *store.Store, opts ...Option) *Repositories {
	r := &Repositories{
		Store: s,
		now:   time.Now,
		newID: uuid.NewString,
	}
	r.Products = &Products{repo: r, c: store.NewCollection[models.Product](s, KeyProducts)}
	r.Employees = &Employees{repo: r, c: store.NewCollection[models.User](s, KeyEmployees), hasher: plainHasher{}}
	r.Sales = &Sales{repo: r, c: store.NewCollection[models.Sale](s, KeySales)}
	r.TimeEntries = &TimeEntries{repo: r, c: store.NewCollection[models.TimeEntry](s, KeyTimeEntries)}
	r.Vouchers = &Vouchers{repo: r, c: store.NewCollection[models.Voucher](s, KeyVouchers)}
	r.Settings = &SettingsRepo{repo: r}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewStore builds a Record Store with the migrations these collections need.
func NewStore(backend store.Backend, opts ...store.Option) *store.Store {
	opts = append([]store.Option{store.WithMigration(1, migrateV1)}, opts...)
	return store.New(backend, opts...)
}

// migrateV1 normalizes data written by the browser build: voucher codes are
// uppercased and sales without a payment method are treated as cash.
func migrateV1(key string, data json.RawMessage) (json.RawMessage, error) {
	switch key {
	case KeyVouchers:
		return store.MapRecords(data, func(r map[string]any) {
			if code, ok := r["code"].(string); ok {
				r["code"] = strings.ToUpper(code)
			}
		})
	case KeySales:
		return store.MapRecords(data, func(r map[string]any) {
			if m, _ := r["payment_method"].(string); m == "" {
				r["payment_method"] = "cash"
			}
			if r["items"] == nil {
				r["items"] = []any{}
			}
		})
	}
	return data, nil
}

func (r *Repositories) stamp() (string, time.Time) {
	return r.newID(), r.now().UTC()
}

// newestFirst sorts records by created_at descending, keeping stored order for ties.
func newestFirst[T any](records []T, createdAt func(T) time.Time) []T {
	sort.SliceStable(records, func(i, j int) bool {
		return createdAt(records[i]).After(createdAt(records[j]))
	})
	return records
}

// withoutKeys drops fields that callers may never overwrite through a partial update.
func withoutKeys(fields map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Now is the repositories' clock, used for edit windows and timestamps.
func (r *Repositories) Now() time.Time { return r.now() }
