package repository

import (
	"errors"
	"fmt"
	"time"

	"go-pos-local/internal/models"
	"go-pos-local/internal/store"
)

// SnapshotVersion tags exports written by this build. "1.0" files from the
// browser build are still accepted.
const SnapshotVersion = "2.0"

var ErrInvalidSnapshot = errors.New("invalid backup file format")

// Snapshot is a full export of the terminal's data.
type Snapshot struct {
	Settings    *models.Settings   `json:"settings"`
	Products    []models.Product   `json:"products"`
	Employees   []models.User      `json:"employees"`
	Sales       []models.Sale      `json:"sales"`
	TimeEntries []models.TimeEntry `json:"timeEntries"`
	Vouchers    []models.Voucher   `json:"vouchers,omitempty"`
	ExportedAt  time.Time          `json:"exportedAt"`
	Version     string             `json:"version"`
	DeviceID    string             `json:"deviceId,omitempty"`
}

func (r *Repositories) Export() Snapshot {
	settings := r.Settings.Get()
	return Snapshot{
		Settings:    &settings,
		Products:    r.Products.c.Load(),
		Employees:   r.Employees.c.Load(),
		Sales:       r.Sales.c.Load(),
		TimeEntries: r.TimeEntries.c.Load(),
		Vouchers:    r.Vouchers.c.Load(),
		ExportedAt:  r.now().UTC(),
		Version:     SnapshotVersion,
	}
}

// Import replaces every collection present in the snapshot. Settings,
// products, employees and sales are required. Every section is validated
// before the first write, so a rejected snapshot leaves the data untouched.
func (r *Repositories) Import(snap Snapshot) error {
	if snap.Settings == nil || snap.Products == nil || snap.Employees == nil || snap.Sales == nil {
		return ErrInvalidSnapshot
	}
	switch snap.Version {
	case "", "1.0", SnapshotVersion:
	default:
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, snap.Version)
	}

	settings := *snap.Settings
	settings.UpdatedAt = r.now().UTC()
	if err := store.Validate(settings); err != nil {
		return fmt.Errorf("%w: settings: %v", ErrInvalidSnapshot, err)
	}
	checks := []error{
		r.Products.c.Check(snap.Products),
		r.Employees.c.Check(snap.Employees),
		r.Sales.c.Check(snap.Sales),
		r.TimeEntries.c.Check(snap.TimeEntries),
		r.Vouchers.c.Check(snap.Vouchers),
	}
	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}

	// A storage failure below still leaves the sections written so far in place.
	if err := r.Settings.Put(settings); err != nil {
		return fmt.Errorf("import settings: %w", err)
	}
	if err := r.Products.c.Replace(snap.Products); err != nil {
		return fmt.Errorf("import products: %w", err)
	}
	if err := r.Employees.c.Replace(snap.Employees); err != nil {
		return fmt.Errorf("import employees: %w", err)
	}
	if err := r.Sales.c.Replace(snap.Sales); err != nil {
		return fmt.Errorf("import sales: %w", err)
	}
	if snap.TimeEntries != nil {
		if err := r.TimeEntries.c.Replace(snap.TimeEntries); err != nil {
			return fmt.Errorf("import time entries: %w", err)
		}
	}
	if snap.Vouchers != nil {
		if err := r.Vouchers.c.Replace(snap.Vouchers); err != nil {
			return fmt.Errorf("import vouchers: %w", err)
		}
	}
	return nil
}
