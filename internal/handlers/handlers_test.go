package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-pos-local/internal/auth"
	"go-pos-local/internal/checkout"
	"go-pos-local/internal/config"
	"go-pos-local/internal/repository"
	"go-pos-local/internal/session"
	"go-pos-local/internal/store"
	"go-pos-local/internal/terminal"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type testServer struct {
	router *gin.Engine
	repos  *repository.Repositories
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.Configure("handlers-test")

	ts := &testServer{now: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return ts.now }

	s := repository.NewStore(store.NewMemoryBackend(), store.WithLogger(log.New(io.Discard, "", 0)))
	ts.repos = repository.New(s, repository.WithClock(clock))
	if err := ts.repos.Vouchers.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	sess := session.New(s, ts.repos.Employees, session.PlaintextVerifier{})
	term := terminal.New(ts.repos, sess, checkout.WithDelay(0), checkout.WithClock(clock))

	cfg := &config.Config{DBDriver: "memory", BaseURL: "http://localhost:8080", UploadDir: t.TempDir()}
	ts.router = gin.New()
	New(term, cfg, nil).Routes(ts.router)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/login", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body, err)
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do(t, http.MethodPost, "/login", "", gin.H{"email": "admin@pos.com", "password": "nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/login", "", gin.H{"email": "admin@pos.com"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	token := ts.login(t, "ADMIN@pos.com", "admin123")
	w := ts.do(t, http.MethodGet, "/api/session", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session: %d", w.Code)
	}
	var resp struct {
		User struct {
			ID       string `json:"id"`
			Password string `json:"password"`
		} `json:"user"`
	}
	decode(t, w, &resp)
	if resp.User.ID != "1" || resp.User.Password != "" {
		t.Fatalf("unexpected session user: %+v", resp.User)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "employee@pos.com", "emp123")
	if w := ts.do(t, http.MethodPost, "/api/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/cart", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestEmployeeCannotReachAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "employee@pos.com", "emp123")
	for _, path := range []string{"/api/sales", "/api/employees", "/api/vouchers", "/api/backup"} {
		if w := ts.do(t, http.MethodGet, path, token, nil); w.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", path, w.Code)
		}
	}
	if w := ts.do(t, http.MethodGet, "/api/products", token, nil); w.Code != http.StatusOK {
		t.Fatalf("products: %d", w.Code)
	}
}

func TestSaleFlowAndEditWindow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin@pos.com", "admin123")

	w := ts.do(t, http.MethodPost, "/api/products", token, gin.H{"name": "Product A", "price": 5, "category": "General", "stock": 10, "barcode": "111"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create product: %d %s", w.Code, w.Body)
	}
	w = ts.do(t, http.MethodPost, "/api/products", token, gin.H{"name": "Product B", "price": 3.5, "category": "General", "stock": 10})
	var b struct {
		ID string `json:"id"`
	}
	decode(t, w, &b)

	if w := ts.do(t, http.MethodGet, "/api/products/scan/111", token, nil); w.Code != http.StatusOK {
		t.Fatalf("scan: %d %s", w.Code, w.Body)
	}
	ts.do(t, http.MethodGet, "/api/products/scan/111", token, nil)
	if w := ts.do(t, http.MethodPost, "/api/cart/items", token, gin.H{"product_id": b.ID}); w.Code != http.StatusOK {
		t.Fatalf("add item: %d %s", w.Code, w.Body)
	}
	if w := ts.do(t, http.MethodPost, "/api/cart/voucher", token, gin.H{"code": "bogus"}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown voucher, got %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/api/cart/voucher", token, gin.H{"code": " save10 "})
	if w.Code != http.StatusOK {
		t.Fatalf("apply voucher: %d %s", w.Code, w.Body)
	}
	var summary struct {
		Total decimal.Decimal `json:"total"`
	}
	decode(t, w, &summary)
	if !summary.Total.Equal(decimal.RequireFromString("12.15")) {
		t.Fatalf("total = %s, want 12.15", summary.Total)
	}

	if w := ts.do(t, http.MethodPost, "/api/checkout", token, gin.H{"payment_method": "ecash"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without e-cash details, got %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/api/checkout", token, gin.H{"payment_method": "cash"})
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: %d %s", w.Code, w.Body)
	}
	var status struct {
		State string `json:"state"`
		Sale  struct {
			ID    string          `json:"id"`
			Total decimal.Decimal `json:"total"`
		} `json:"sale"`
	}
	decode(t, w, &status)
	if status.State != "completed" || !status.Sale.Total.Equal(decimal.RequireFromString("12.15")) {
		t.Fatalf("unexpected status: %+v", status)
	}

	if w := ts.do(t, http.MethodPost, "/api/cart/items", token, gin.H{"product_id": b.ID}); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 before dismiss, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/api/checkout/dismiss", token, nil); w.Code != http.StatusOK {
		t.Fatalf("dismiss: %d", w.Code)
	}

	path := "/api/sales/" + status.Sale.ID
	if w := ts.do(t, http.MethodPut, path, token, gin.H{"total": 12}); w.Code != http.StatusOK {
		t.Fatalf("edit inside window: %d %s", w.Code, w.Body)
	}
	ts.now = ts.now.Add(24 * time.Hour)
	if w := ts.do(t, http.MethodPut, path, token, gin.H{"total": 11}); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 after 24h, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodDelete, path, token, nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on delete after 24h, got %d", w.Code)
	}
}

func TestUpdateProductStatusCodes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin@pos.com", "admin123")
	w := ts.do(t, http.MethodPost, "/api/products", token, gin.H{"name": "Tea", "price": 2, "stock": 3})
	var p struct {
		ID string `json:"id"`
	}
	decode(t, w, &p)

	if w := ts.do(t, http.MethodPut, "/api/products/missing", token, gin.H{"stock": 1}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing product, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPut, "/api/products/"+p.ID, token, gin.H{"stock": -1}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative stock, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPut, "/api/products/"+p.ID, token, gin.H{"stock": 7}); w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body)
	}
}

func TestEmployeesRejectBuiltinEmail(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin@pos.com", "admin123")
	w := ts.do(t, http.MethodPost, "/api/employees", token, gin.H{"email": "employee@pos.com", "name": "Copy", "password": "secret"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/api/employees", token, gin.H{"email": "ana@pos.com", "name": "Ana", "password": "secret"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create employee: %d %s", w.Code, w.Body)
	}
	var created map[string]any
	decode(t, w, &created)
	if _, leaked := created["password"]; leaked {
		t.Fatalf("password leaked: %v", created)
	}
	ts.login(t, "ana@pos.com", "secret")
}

func TestVoucherCRUD(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin@pos.com", "admin123")

	w := ts.do(t, http.MethodPost, "/api/vouchers", token, gin.H{"code": "save10", "discount_type": "fixed", "discount_value": 1})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate code, got %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/api/vouchers", token, gin.H{"code": "half", "discount_type": "percentage", "discount_value": 150})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for >100%%, got %d", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/api/vouchers", token, gin.H{"code": "half", "discount_type": "percentage", "discount_value": 50})
	if w.Code != http.StatusCreated {
		t.Fatalf("create voucher: %d %s", w.Code, w.Body)
	}
	var v struct {
		ID       string `json:"id"`
		Code     string `json:"code"`
		IsActive bool   `json:"is_active"`
	}
	decode(t, w, &v)
	if v.Code != "HALF" || !v.IsActive {
		t.Fatalf("unexpected voucher: %+v", v)
	}
	w = ts.do(t, http.MethodPost, "/api/vouchers/"+v.ID+"/toggle", token, nil)
	decode(t, w, &v)
	if v.IsActive {
		t.Fatal("toggle did not deactivate")
	}
	if w := ts.do(t, http.MethodPost, "/api/vouchers/missing/toggle", token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestTimeCard(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "employee@pos.com", "emp123")
	if w := ts.do(t, http.MethodPost, "/api/timecard/punch-out", token, nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 punching out first, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/api/timecard/punch-in", token, nil); w.Code != http.StatusCreated {
		t.Fatalf("punch in: %d %s", w.Code, w.Body)
	}
	if w := ts.do(t, http.MethodPost, "/api/timecard/punch-in", token, nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second punch in, got %d", w.Code)
	}
	ts.now = ts.now.Add(90 * time.Minute)
	w := ts.do(t, http.MethodPost, "/api/timecard/punch-out", token, nil)
	var entry struct {
		TotalHours *float64 `json:"total_hours"`
	}
	decode(t, w, &entry)
	if entry.TotalHours == nil || *entry.TotalHours != 1.5 {
		t.Fatalf("unexpected entry: %s", w.Body)
	}
}

func TestSettingsAndPassword(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin@pos.com", "admin123")

	w := ts.do(t, http.MethodPut, "/api/settings", token, gin.H{"brand_name": "Corner Shop", "currency_symbol": "€"})
	if w.Code != http.StatusOK {
		t.Fatalf("update settings: %d %s", w.Code, w.Body)
	}
	if w := ts.do(t, http.MethodPut, "/api/settings", token, gin.H{"brand_name": ""}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty brand, got %d %s", w.Code, w.Body)
	}

	body := gin.H{"current_password": "wrong", "new_password": "newpass", "confirm_password": "newpass"}
	if w := ts.do(t, http.MethodPut, "/api/settings/admin-password", token, body); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong current password, got %d", w.Code)
	}
	body["current_password"] = "admin123"
	if w := ts.do(t, http.MethodPut, "/api/settings/admin-password", token, body); w.Code != http.StatusOK {
		t.Fatalf("change password: %d %s", w.Code, w.Body)
	}
	ts.login(t, "admin@pos.com", "newpass")
}

func TestExportRequiresPassword(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin@pos.com", "admin123")

	if w := ts.do(t, http.MethodPost, "/api/reports/sales/export", token, gin.H{"range": "week"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without password, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/reports/sales?range=decade", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown range, got %d", w.Code)
	}

	w := ts.do(t, http.MethodPost, "/api/reports/attendance/export", token, gin.H{"range": "month", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content type = %q", ct)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()), excelize.Options{Password: "pw"})
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex("Time Entries"); idx < 0 {
		t.Fatalf("missing sheet, have %v", f.GetSheetList())
	}
}

func TestBackupRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "admin@pos.com", "admin123")
	ts.do(t, http.MethodPost, "/api/products", token, gin.H{"name": "Keep", "price": 1, "stock": 1})

	w := ts.do(t, http.MethodGet, "/api/backup", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d", w.Code)
	}
	var snap map[string]any
	decode(t, w, &snap)

	ts.do(t, http.MethodPost, "/api/products", token, gin.H{"name": "Drop", "price": 1, "stock": 1})
	if w := ts.do(t, http.MethodPost, "/api/backup/import", token, gin.H{"version": "2.0"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for partial snapshot, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/api/backup/import", token, snap); w.Code != http.StatusOK {
		t.Fatalf("import: %d %s", w.Code, w.Body)
	}
	if got := ts.repos.Products.List(); len(got) != 1 || got[0].Name != "Keep" {
		t.Fatalf("unexpected products after import: %+v", got)
	}
}

func TestHealthAndStatus(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do(t, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	w := ts.do(t, http.MethodGet, "/api/system/status", "", nil)
	var status map[string]any
	decode(t, w, &status)
	if status["session_active"] != false || status["assistant_ready"] != false {
		t.Fatalf("unexpected status: %v", status)
	}
	if w := ts.do(t, http.MethodPost, "/api/ask", ts.login(t, "admin@pos.com", "admin123"), gin.H{"message": "hi"}); w.Code != http.StatusNotFound {
		t.Fatalf("ask without key: expected 404, got %d", w.Code)
	}
}
