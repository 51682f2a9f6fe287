package repository

import (
	"errors"
	"math"
	"time"

	"go-pos-local/internal/models"
	"go-pos-local/internal/store"
)

var (
	ErrAlreadyPunchedIn = errors.New("employee is already punched in")
	ErrNotPunchedIn     = errors.New("employee is not punched in")
)

type TimeEntries struct {
	repo *Repositories
	c    *store.Collection[models.TimeEntry]
}

func (t *TimeEntries) List() []models.TimeEntry {
	return newestFirst(t.c.Load(), func(e models.TimeEntry) time.Time { return e.CreatedAt })
}

func (t *TimeEntries) ListByEmployee(employeeID string) []models.TimeEntry {
	var out []models.TimeEntry
	for _, e := range t.List() {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	return out
}

// Open returns the employee's entry that has no punch-out yet.
func (t *TimeEntries) Open(employeeID string) (models.TimeEntry, bool) {
	return t.c.Find(func(e models.TimeEntry) bool {
		return e.EmployeeID == employeeID && e.IsOpen()
	})
}

// PunchIn starts a session. An employee can hold at most one open entry.
func (t *TimeEntries) PunchIn(user models.User) (models.TimeEntry, error) {
	if _, open := t.Open(user.ID); open {
		return models.TimeEntry{}, ErrAlreadyPunchedIn
	}
	id, now := t.repo.stamp()
	entry := models.TimeEntry{
		ID:           id,
		EmployeeID:   user.ID,
		EmployeeName: user.Name,
		PunchIn:      now,
		Date:         now.Format("2006-01-02"),
		CreatedAt:    now,
	}
	if err := t.c.Append(entry); err != nil {
		return models.TimeEntry{}, err
	}
	return entry, nil
}

// PunchOut closes the open entry and records its length in hours.
func (t *TimeEntries) PunchOut(employeeID string) (models.TimeEntry, error) {
	open, ok := t.Open(employeeID)
	if !ok {
		return models.TimeEntry{}, ErrNotPunchedIn
	}
	now := t.repo.now().UTC()
	hours := HoursBetween(open.PunchIn, now)
	updated := t.c.Update(open.ID, map[string]any{
		"punch_out":   now,
		"total_hours": hours,
	})
	if updated == nil {
		return models.TimeEntry{}, errors.New("time entry could not be saved")
	}
	return *updated, nil
}

// HoursBetween is the elapsed time in hours rounded to two decimals.
func HoursBetween(from, to time.Time) float64 {
	return math.Round(to.Sub(from).Hours()*100) / 100
}
