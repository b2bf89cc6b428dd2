package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"gorm.io/gorm"
)

const timeFormat = "2006-01-02T15:04:05Z"

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// asNotFound converts a repository miss into the NotFound error kind,
// keeping other errors intact.
func asNotFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, serviceerr.ErrNotFound)
	}
	return err
}

// isMissing reports whether err is any flavor of "row absent".
func isMissing(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, serviceerr.ErrNotFound)
}

func formatTime(t time.Time) string { return t.UTC().Format(timeFormat) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
