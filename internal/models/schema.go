package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrSchemaViolation = errors.New("row does not match table schema")

const (
	ColName          = "Name"
	ColMobile        = "Mobile"
	ColAadhar        = "Aadhar"
	ColVillage       = "Village"
	ColPassword      = "Password"
	ColCorpID        = "Corp_ID"
	ColRole          = "Role"
	ColDate          = "Date"
	ColTime          = "Time"
	ColQuantity      = "Quantity"
	ColFarmerMobile  = "Farmer_Mobile"
	ColFarmerName    = "Farmer_Name"
	ColPaymentStatus = "Payment_Status"
	ColSlotID        = "Slot_ID"
)

type Column struct {
	Name     string
	Required bool
}

// Table declares the header of a store table. Columns are kept in header order.
// GeneratedKey marks tables whose key values are minted by this service
// rather than typed by users.
type Table struct {
	Name         string
	Key          string
	GeneratedKey bool
	Columns      []Column
}

var (
	FarmersTable = Table{
		Name: "Farmers",
		Key:  ColMobile,
		Columns: []Column{
			{Name: ColName, Required: true},
			{Name: ColMobile, Required: true},
			{Name: ColAadhar, Required: true},
			{Name: ColVillage},
			{Name: ColPassword, Required: true},
		},
	}

	CorporatesTable = Table{
		Name: "Corporates",
		Key:  ColCorpID,
		Columns: []Column{
			{Name: ColName, Required: true},
			{Name: ColCorpID, Required: true},
			{Name: ColRole},
			{Name: ColPassword, Required: true},
		},
	}

	SlotsTable = Table{
		Name:         "Slots",
		Key:          ColSlotID,
		GeneratedKey: true,
		Columns: []Column{
			{Name: ColDate, Required: true},
			{Name: ColTime, Required: true},
			{Name: ColQuantity, Required: true},
			{Name: ColFarmerMobile, Required: true},
			{Name: ColFarmerName},
			{Name: ColPaymentStatus, Required: true},
			{Name: ColSlotID, Required: true},
		},
	}
)

func (t Table) Header() []string {
	h := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		h[i] = c.Name
	}
	return h
}

func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Values returns the row's cells in header order.
func (t Table) Values(r Row) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = r[c.Name]
	}
	return out
}

// Validate rejects unknown columns and blank required values.
func (t Table) Validate(r Row) error {
	var unknown []string
	for k := range r {
		if !t.HasColumn(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s: unknown columns %s", ErrSchemaViolation, t.Name, strings.Join(unknown, ", "))
	}

	var missing []string
	for _, c := range t.Columns {
		if c.Required && strings.TrimSpace(r[c.Name]) == "" {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing %s", ErrSchemaViolation, t.Name, strings.Join(missing, ", "))
	}
	return nil
}
