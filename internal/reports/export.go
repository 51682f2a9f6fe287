package reports

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go-pos-local/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var ErrPasswordRequired = errors.New("a password is required to export a report")

const stampLayout = "2006-01-02 15:04:05"

// SalesWorkbook builds the Summary and Sales Details sheets.
func SalesWorkbook(sum SalesSummary, settings models.Settings, generatedBy string, now time.Time) (*excelize.File, error) {
	money := func(d decimal.Decimal) string {
		return settings.CurrencySymbol + d.StringFixed(2)
	}

	summary := [][]any{
		{"Sales Report Summary"},
		{""},
		{"Date Range:", string(sum.Range)},
		{"Total Sales:", money(sum.TotalSales)},
		{"Total Transactions:", sum.Transactions},
		{"Average Transaction:", money(sum.AverageTransaction)},
		{"Generated At:", now.Format(stampLayout)},
		{""},
		{"Password Protected by:", generatedBy},
	}

	details := [][]any{{"Date", "Time", "Items", "Payment Method", "Reference", "Total"}}
	for _, s := range sum.Sales {
		at := s.CreatedAt.In(now.Location())
		items := make([]string, 0, len(s.Items))
		for _, it := range s.Items {
			items = append(items, fmt.Sprintf("%s x%d", it.ProductName, it.Quantity))
		}
		method, ref := "Cash", ""
		if s.PaymentMethod == models.PaymentECash {
			method = "E-Cash"
		}
		if s.PaymentDetails != nil {
			ref = s.PaymentDetails.ReferenceNumber
		}
		details = append(details, []any{
			at.Format("2006-01-02"),
			at.Format("15:04:05"),
			strings.Join(items, ", "),
			method,
			ref,
			money(s.Total),
		})
	}

	return workbook([]sheet{{"Summary", summary}, {"Sales Details", details}})
}

// AttendanceWorkbook builds the Summary, Employee Performance and Time
// Entries sheets.
func AttendanceWorkbook(rep Attendance, employeeLabel, generatedBy string, now time.Time) (*excelize.File, error) {
	if employeeLabel == "" {
		employeeLabel = "All Employees"
	}
	summary := [][]any{
		{"Attendance Report Summary"},
		{""},
		{"Date Range:", string(rep.Range)},
		{"Employee Filter:", employeeLabel},
		{"Total Hours:", fmt.Sprintf("%.1fh", rep.TotalHours)},
		{"Total Sessions:", rep.TotalSessions},
		{"Average Hours/Day:", fmt.Sprintf("%.1fh", rep.AvgHoursPerDay)},
		{"Generated At:", now.Format(stampLayout)},
		{""},
		{"Password Protected by:", generatedBy},
	}

	performance := [][]any{{"Employee", "Total Hours", "Sessions", "Avg Hours/Session", "Status"}}
	for _, e := range rep.Employees {
		status := "Offline"
		if e.Active() {
			status = "Active"
		}
		performance = append(performance, []any{
			e.Name,
			fmt.Sprintf("%.1fh", e.TotalHours),
			e.Sessions,
			fmt.Sprintf("%.1fh", e.AvgHoursPerSession),
			status,
		})
	}

	entries := [][]any{{"Employee", "Date", "Punch In", "Punch Out", "Duration (Hours)"}}
	for _, e := range rep.Entries {
		out, hours := "Active", "In Progress"
		if e.PunchOut != nil {
			out = e.PunchOut.In(now.Location()).Format("15:04:05")
		}
		if e.TotalHours != nil {
			hours = fmt.Sprintf("%.1fh", *e.TotalHours)
		}
		entries = append(entries, []any{
			e.EmployeeName,
			e.Date,
			e.PunchIn.In(now.Location()).Format("15:04:05"),
			out,
			hours,
		})
	}

	return workbook([]sheet{
		{"Summary", summary},
		{"Employee Performance", performance},
		{"Time Entries", entries},
	})
}

type sheet struct {
	name string
	rows [][]any
}

func workbook(sheets []sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			f.Close()
			return nil, err
		}
		for r, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			row := row
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}

// Write encrypts the workbook with password, streams it to w and closes it.
func Write(f *excelize.File, w io.Writer, password string) error {
	defer f.Close()
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	return f.Write(w, excelize.Options{Password: password})
}

// Filename is the download name of an export, e.g. sales-report-week-2026-03-01.xlsx.
func Filename(kind string, r Range, now time.Time) string {
	return fmt.Sprintf("%s-report-%s-%s.xlsx", kind, r, now.Format("2006-01-02"))
}
