package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/karthikdoguparthi/KisaanGrow/internal/mocks"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage/drivers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.Upgrader = (*drivers.SheetsStorage)(nil)

func setupStore(t *testing.T, ttl time.Duration) (*storage.Store, *mocks.MockStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	driver := mocks.NewMockStorage(ctrl)
	store := storage.NewStore(driver, ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		driver.EXPECT().Close().Return(nil)
		_ = store.Close()
	})
	return store, driver
}

func farmerRows() []models.Row {
	return []models.Row{{
		models.ColName: "Ramesh", models.ColMobile: "9876543210", models.ColAadhar: "123412341234",
		models.ColVillage: "", models.ColPassword: "Secret123",
	}}
}

func TestStore_ReadTable(t *testing.T) {
	ctx := context.Background()

	t.Run("Cached within ttl", func(t *testing.T) {
		store, driver := setupStore(t, time.Minute)
		driver.EXPECT().ReadTable(gomock.Any(), models.FarmersTable).Return(farmerRows(), nil).Times(1)

		for i := 0; i < 3; i++ {
			rows, err := store.ReadTable(ctx, models.FarmersTable)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		}
	})

	t.Run("Fresh read bypasses cache", func(t *testing.T) {
		store, driver := setupStore(t, time.Minute)
		driver.EXPECT().ReadTable(gomock.Any(), models.FarmersTable).Return(farmerRows(), nil).Times(2)

		_, err := store.ReadTable(ctx, models.FarmersTable)
		require.NoError(t, err)
		_, err = store.ReadTableFresh(ctx, models.FarmersTable)
		require.NoError(t, err)
	})

	t.Run("Zero ttl disables cache", func(t *testing.T) {
		store, driver := setupStore(t, 0)
		driver.EXPECT().ReadTable(gomock.Any(), models.FarmersTable).Return(farmerRows(), nil).Times(2)

		_, _ = store.ReadTable(ctx, models.FarmersTable)
		_, _ = store.ReadTable(ctx, models.FarmersTable)
	})

	t.Run("Missing table reads empty", func(t *testing.T) {
		store, driver := setupStore(t, time.Minute)
		driver.EXPECT().ReadTable(gomock.Any(), models.SlotsTable).Return(nil, drivers.ErrTableNotFound)

		rows, err := store.ReadTable(ctx, models.SlotsTable)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("Driver failure is a read failure", func(t *testing.T) {
		store, driver := setupStore(t, time.Minute)
		driver.EXPECT().ReadTable(gomock.Any(), models.SlotsTable).Return(nil, errors.New("quota exceeded")).Times(2)

		_, err := store.ReadTable(ctx, models.SlotsTable)
		assert.ErrorIs(t, err, storage.ErrReadFailed)

		// failures are not cached
		_, err = store.ReadTable(ctx, models.SlotsTable)
		assert.ErrorIs(t, err, storage.ErrReadFailed)
	})
}

func TestStore_AppendRow(t *testing.T) {
	ctx := context.Background()

	t.Run("Write invalidates cached table", func(t *testing.T) {
		store, driver := setupStore(t, time.Minute)
		row := farmerRows()[0]

		gomock.InOrder(
			driver.EXPECT().ReadTable(gomock.Any(), models.FarmersTable).Return(nil, nil),
			driver.EXPECT().AppendRow(gomock.Any(), models.FarmersTable, row).Return(nil),
			driver.EXPECT().ReadTable(gomock.Any(), models.FarmersTable).Return(farmerRows(), nil),
		)

		rows, err := store.ReadTable(ctx, models.FarmersTable)
		require.NoError(t, err)
		assert.Empty(t, rows)

		require.NoError(t, store.AppendRow(ctx, models.FarmersTable, row))

		rows, err = store.ReadTable(ctx, models.FarmersTable)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("Read overlapping a write is not cached", func(t *testing.T) {
		store, driver := setupStore(t, time.Minute)
		row := farmerRows()[0]

		gomock.InOrder(
			driver.EXPECT().ReadTable(gomock.Any(), models.FarmersTable).
				DoAndReturn(func(ctx context.Context, _ models.Table) ([]models.Row, error) {
					// the write lands while the first read is in flight
					require.NoError(t, store.AppendRow(ctx, models.FarmersTable, row))
					return nil, nil
				}),
			driver.EXPECT().ReadTable(gomock.Any(), models.FarmersTable).Return(farmerRows(), nil),
		)
		driver.EXPECT().AppendRow(gomock.Any(), models.FarmersTable, row).Return(nil)

		rows, err := store.ReadTable(ctx, models.FarmersTable)
		require.NoError(t, err)
		assert.Empty(t, rows)

		rows, err = store.ReadTable(ctx, models.FarmersTable)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("Schema violation writes nothing", func(t *testing.T) {
		store, _ := setupStore(t, time.Minute)

		err := store.AppendRow(ctx, models.FarmersTable, models.Row{models.ColName: "Ramesh", "Email": "x"})
		assert.ErrorIs(t, err, models.ErrSchemaViolation)

		err = store.AppendRow(ctx, models.FarmersTable, models.Row{models.ColName: "Ramesh"})
		assert.ErrorIs(t, err, models.ErrSchemaViolation)
	})

	t.Run("Driver failure is a write failure", func(t *testing.T) {
		store, driver := setupStore(t, time.Minute)
		driver.EXPECT().AppendRow(gomock.Any(), models.FarmersTable, gomock.Any()).Return(errors.New("connection reset"))

		err := store.AppendRow(ctx, models.FarmersTable, farmerRows()[0])
		assert.ErrorIs(t, err, storage.ErrWriteFailed)
	})
}

func TestStore_UpdateByKey(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		column    string
		driverErr error
		callsDrv  bool
		wantErr   error
	}{
		{"Success", models.ColPaymentStatus, nil, true, nil},
		{"Unknown column", "Notes", nil, false, models.ErrSchemaViolation},
		{"Missing key", models.ColPaymentStatus, drivers.ErrNotFound, true, storage.ErrNotFound},
		{"Missing table", models.ColPaymentStatus, drivers.ErrTableNotFound, true, storage.ErrNotFound},
		{"Driver failure", models.ColPaymentStatus, errors.New("timeout"), true, storage.ErrWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, driver := setupStore(t, time.Minute)
			if tt.callsDrv {
				driver.EXPECT().
					UpdateByKey(gomock.Any(), models.SlotsTable, "slot-1", tt.column, "paid").
					Return(tt.driverErr)
			}

			err := store.UpdateByKey(ctx, models.SlotsTable, "slot-1", tt.column, "paid")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
