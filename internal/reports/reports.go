// Package reports aggregates sales, attendance and stock data for the
// admin screens and their spreadsheet exports.
package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go-pos-local/internal/models"

	"github.com/shopspring/decimal"
)

type Range string

const (
	Today Range = "today"
	Week  Range = "week"
	Month Range = "month"
	All   Range = "all"
)

// ParseRange accepts today, week, month or all. An empty value yields def.
func ParseRange(s string, def Range) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return def, nil
	case Today, Week, Month, All:
		return r, nil
	}
	return "", fmt.Errorf("unknown date range %q", s)
}

// Start is the first instant of the range in now's location. Weeks start on
// Sunday. All has no start.
func (r Range) Start(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch r {
	case Today:
		return today
	case Week:
		return today.AddDate(0, 0, -int(today.Weekday()))
	case Month:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}

func (r Range) Contains(t, now time.Time) bool {
	if r == All {
		return true
	}
	return !t.Before(r.Start(now))
}

// --- sales ---

type TopSeller struct {
	ProductName string          `json:"product_name"`
	Sold        int             `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type MethodTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type SalesSummary struct {
	Range              Range                                 `json:"range"`
	From               *time.Time                            `json:"from,omitempty"`
	TotalSales         decimal.Decimal                       `json:"total_sales"`
	Transactions       int                                   `json:"total_transactions"`
	AverageTransaction decimal.Decimal                       `json:"average_transaction"`
	ByPaymentMethod    map[models.PaymentMethod]*MethodTotal `json:"by_payment_method"`
	TopSelling         []TopSeller                           `json:"top_selling"`
	Sales              []models.Sale                         `json:"sales"`
}

const topSellerLimit = 5

// Sales summarizes the sales created inside r, newest first.
func Sales(sales []models.Sale, r Range, now time.Time) SalesSummary {
	sum := SalesSummary{
		Range:           r,
		TotalSales:      decimal.Zero,
		ByPaymentMethod: map[models.PaymentMethod]*MethodTotal{},
		TopSelling:      []TopSeller{},
		Sales:           []models.Sale{},
	}
	if r != All {
		from := r.Start(now)
		sum.From = &from
	}

	sellers := map[string]*TopSeller{}
	for _, s := range sales {
		if !r.Contains(s.CreatedAt.In(now.Location()), now) {
			continue
		}
		sum.Sales = append(sum.Sales, s)
		sum.TotalSales = sum.TotalSales.Add(s.Total)

		m, ok := sum.ByPaymentMethod[s.PaymentMethod]
		if !ok {
			m = &MethodTotal{Total: decimal.Zero}
			sum.ByPaymentMethod[s.PaymentMethod] = m
		}
		m.Count++
		m.Total = m.Total.Add(s.Total)

		for _, it := range s.Items {
			ts, ok := sellers[it.ProductName]
			if !ok {
				ts = &TopSeller{ProductName: it.ProductName, Revenue: decimal.Zero}
				sellers[it.ProductName] = ts
			}
			ts.Sold += it.Quantity
			ts.Revenue = ts.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}

	sum.Transactions = len(sum.Sales)
	sum.AverageTransaction = decimal.Zero
	if sum.Transactions > 0 {
		sum.AverageTransaction = sum.TotalSales.Div(decimal.NewFromInt(int64(sum.Transactions))).Round(2)
	}

	for _, ts := range sellers {
		sum.TopSelling = append(sum.TopSelling, *ts)
	}
	sort.Slice(sum.TopSelling, func(i, j int) bool {
		a, b := sum.TopSelling[i], sum.TopSelling[j]
		if a.Sold != b.Sold {
			return a.Sold > b.Sold
		}
		return a.ProductName < b.ProductName
	})
	if len(sum.TopSelling) > topSellerLimit {
		sum.TopSelling = sum.TopSelling[:topSellerLimit]
	}

	sort.SliceStable(sum.Sales, func(i, j int) bool {
		return sum.Sales[i].CreatedAt.After(sum.Sales[j].CreatedAt)
	})
	return sum
}

// --- attendance ---

type EmployeeStats struct {
	EmployeeID         string  `json:"employee_id"`
	Name               string  `json:"name"`
	TotalHours         float64 `json:"total_hours"`
	Sessions           int     `json:"sessions"`
	ActiveSessions     int     `json:"active_sessions"`
	AvgHoursPerSession float64 `json:"avg_hours_per_session"`
}

func (e EmployeeStats) Active() bool { return e.ActiveSessions > 0 }

type Attendance struct {
	Range          Range              `json:"range"`
	EmployeeID     string             `json:"employee_id,omitempty"`
	TotalHours     float64            `json:"total_hours"`
	TotalSessions  int                `json:"total_sessions"`
	AvgHoursPerDay float64            `json:"avg_hours_per_day"`
	Employees      []EmployeeStats    `json:"employees"`
	Entries        []models.TimeEntry `json:"entries"`
}

// AttendanceFor summarizes time entries whose date falls inside r. An empty
// employeeID or "all" keeps every employee. Open entries count as sessions
// with no hours.
func AttendanceFor(entries []models.TimeEntry, r Range, employeeID string, now time.Time) Attendance {
	if employeeID == "all" {
		employeeID = ""
	}
	rep := Attendance{Range: r, EmployeeID: employeeID, Employees: []EmployeeStats{}, Entries: []models.TimeEntry{}}

	byEmployee := map[string]*EmployeeStats{}
	var order []string
	days := map[string]bool{}
	for _, e := range entries {
		if employeeID != "" && e.EmployeeID != employeeID {
			continue
		}
		if !r.Contains(entryDay(e, now.Location()), now) {
			continue
		}
		rep.Entries = append(rep.Entries, e)
		days[e.Date] = true

		hours := 0.0
		if e.TotalHours != nil {
			hours = *e.TotalHours
		}
		rep.TotalHours += hours

		st, ok := byEmployee[e.EmployeeID]
		if !ok {
			st = &EmployeeStats{EmployeeID: e.EmployeeID, Name: e.EmployeeName}
			byEmployee[e.EmployeeID] = st
			order = append(order, e.EmployeeID)
		}
		st.Sessions++
		st.TotalHours += hours
		if e.IsOpen() {
			st.ActiveSessions++
		}
	}

	rep.TotalSessions = len(rep.Entries)
	if len(days) > 0 {
		rep.AvgHoursPerDay = round2(rep.TotalHours / float64(len(days)))
	}
	rep.TotalHours = round2(rep.TotalHours)

	for _, id := range order {
		st := byEmployee[id]
		st.AvgHoursPerSession = round2(st.TotalHours / float64(st.Sessions))
		st.TotalHours = round2(st.TotalHours)
		rep.Employees = append(rep.Employees, *st)
	}
	sort.SliceStable(rep.Employees, func(i, j int) bool {
		return rep.Employees[i].TotalHours > rep.Employees[j].TotalHours
	})
	return rep
}

// entryDay is the entry's calendar date, falling back to its punch-in time
// when the stored date does not parse.
func entryDay(e models.TimeEntry, loc *time.Location) time.Time {
	if d, err := time.ParseInLocation("2006-01-02", e.Date, loc); err == nil {
		return d
	}
	return e.PunchIn.In(loc)
}

func round2(f float64) float64 {
	d := decimal.NewFromFloat(f).Round(2)
	v, _ := d.Float64()
	return v
}

// --- stock valuation ---

type ValuationItem struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// StockValuation values stock at the current selling price, grouped by
// category in name order.
func StockValuation(products []models.Product) Valuation {
	grouped := map[string]*CategoryGroup{}
	grand := decimal.Zero
	for _, p := range products {
		name := p.Category
		if name == "" {
			name = "Uncategorized"
		}
		g, ok := grouped[name]
		if !ok {
			g = &CategoryGroup{CategoryName: name, Items: []ValuationItem{}, Subtotal: decimal.Zero}
			grouped[name] = g
		}
		value := p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
		g.Items = append(g.Items, ValuationItem{Name: p.Name, Quantity: p.Stock, Price: p.Price, TotalValue: value})
		g.Subtotal = g.Subtotal.Add(value)
		grand = grand.Add(value)
	}

	v := Valuation{Categories: make([]CategoryGroup, 0, len(grouped)), GrandTotal: grand}
	for _, g := range grouped {
		v.Categories = append(v.Categories, *g)
	}
	sort.Slice(v.Categories, func(i, j int) bool {
		return v.Categories[i].CategoryName < v.Categories[j].CategoryName
	})
	return v
}

// Revenue totals the sales created between start and end, both inclusive.
func Revenue(sales []models.Sale, start, end time.Time) (decimal.Decimal, int) {
	total, count := decimal.Zero, 0
	for _, s := range sales {
		if s.CreatedAt.Before(start) || s.CreatedAt.After(end) {
			continue
		}
		total = total.Add(s.Total)
		count++
	}
	return total, count
}
