package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		row     Row
		wantErr bool
	}{
		{
			name:  "Farmer without village",
			table: FarmersTable,
			row: Row{
				ColName: "Ramesh", ColMobile: "9876543210", ColAadhar: "123412341234", ColPassword: "Secret123",
			},
		},
		{
			name:    "Farmer missing mobile",
			table:   FarmersTable,
			row:     Row{ColName: "Ramesh", ColAadhar: "1234", ColPassword: "Secret123"},
			wantErr: true,
		},
		{
			name:    "Blank required value",
			table:   CorporatesTable,
			row:     Row{ColName: "Asha", ColCorpID: "   ", ColPassword: "Secret123"},
			wantErr: true,
		},
		{
			name:  "Unknown column",
			table: CorporatesTable,
			row: Row{
				ColName: "Asha", ColCorpID: "E1", ColPassword: "Secret123", "Salary": "1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate(tt.row)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchemaViolation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTableValuesFollowHeader(t *testing.T) {
	row := Row{ColPassword: "p", ColName: "n", ColCorpID: "c"}
	assert.Equal(t, []string{ColName, ColCorpID, ColRole, ColPassword}, CorporatesTable.Header())
	assert.Equal(t, []string{"n", "c", "", "p"}, CorporatesTable.Values(row))
}

func TestSlotRow(t *testing.T) {
	slot := Slot{
		ID:            "slot-1",
		Date:          "2025-03-01",
		Time:          "10:00 - 12:00",
		Quantity:      5,
		FarmerMobile:  "9876543210",
		FarmerName:    "Ramesh",
		PaymentStatus: PaymentPending,
	}

	row := slot.Row()
	assert.Equal(t, "5", row[ColQuantity])
	assert.NoError(t, SlotsTable.Validate(row))

	parsed, err := SlotFromRow(row)
	require.NoError(t, err)
	assert.Equal(t, slot, parsed)

	t.Run("Bad quantity", func(t *testing.T) {
		row[ColQuantity] = "five"
		_, err := SlotFromRow(row)
		assert.Error(t, err)
	})

	t.Run("Empty quantity", func(t *testing.T) {
		row[ColQuantity] = ""
		s, err := SlotFromRow(row)
		assert.NoError(t, err)
		assert.Zero(t, s.Quantity)
	})
}

func TestFarmerVillageOptional(t *testing.T) {
	f := FarmerFromRow(Row{ColName: "Ramesh", ColMobile: "1"})
	assert.False(t, f.Village.Valid)
	assert.Equal(t, "", f.Row()[ColVillage])

	f = FarmerFromRow(Row{ColName: "Ramesh", ColMobile: "1", ColVillage: "Rampur"})
	assert.Equal(t, "Rampur", f.Village.String)
}
