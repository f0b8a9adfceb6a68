package storage

//go:generate mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage/drivers"
	"google.golang.org/api/sheets/v4"
)

var (
	PgxDriverType    = "postgres"
	BadgerDriverType = "badger"
	SheetsDriverType = "sheets"
)

var (
	ErrReadFailed    = errors.New("store read failed")
	ErrWriteFailed   = errors.New("store write failed")
	ErrNotFound      = drivers.ErrNotFound
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Storage is a tabular record store. Rows come back in insertion order.
type Storage interface {
	ReadTable(ctx context.Context, table models.Table) ([]models.Row, error)
	AppendRow(ctx context.Context, table models.Table, row models.Row) error
	UpdateByKey(ctx context.Context, table models.Table, key, column, value string) error
	Close() error
}

// Upgrader is implemented by drivers that can bring tables written with an
// older layout up to the declared schema in place.
type Upgrader interface {
	Upgrade(ctx context.Context, tables ...models.Table) error
}

type StorageOpts struct {
	DriverType string

	// postgres
	Database *sql.DB

	// badger
	Badger *badger.DB

	// sheets
	Sheets        *sheets.Service
	SpreadsheetID string
}

func NewStorage(opts StorageOpts) (Storage, error) {
	switch opts.DriverType {
	case PgxDriverType:
		if opts.Database == nil {
			return nil, fmt.Errorf("%s driver: database is required", opts.DriverType)
		}
		return drivers.NewPostgresStorage(opts.Database), nil
	case BadgerDriverType:
		if opts.Badger == nil {
			return nil, fmt.Errorf("%s driver: badger db is required", opts.DriverType)
		}
		return drivers.NewBadgerStorage(opts.Badger), nil
	case SheetsDriverType:
		if opts.Sheets == nil || opts.SpreadsheetID == "" {
			return nil, fmt.Errorf("%s driver: sheets service and spreadsheet id are required", opts.DriverType)
		}
		return drivers.NewSheetsStorage(opts.Sheets, opts.SpreadsheetID), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.DriverType)
}
