package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/guregu/null.v4"
)

type Role string

const (
	RoleFarmer    Role = "farmer"
	RoleCorporate Role = "corp"
)

func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleCorporate
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// Row is a single table record keyed by column name.
type Row map[string]string

type Farmer struct {
	Name     string      `json:"name"`
	Mobile   string      `json:"mobile"`
	Aadhar   string      `json:"aadhar"`
	Village  null.String `json:"village"`
	Password string      `json:"-"`
}

func FarmerFromRow(r Row) Farmer {
	return Farmer{
		Name:     r[ColName],
		Mobile:   r[ColMobile],
		Aadhar:   r[ColAadhar],
		Village:  null.NewString(r[ColVillage], r[ColVillage] != ""),
		Password: r[ColPassword],
	}
}

func (f Farmer) Row() Row {
	return Row{
		ColName:     f.Name,
		ColMobile:   f.Mobile,
		ColAadhar:   f.Aadhar,
		ColVillage:  f.Village.ValueOrZero(),
		ColPassword: f.Password,
	}
}

type Corporate struct {
	Name     string `json:"name"`
	CorpID   string `json:"corpId"`
	Role     string `json:"role"`
	Password string `json:"-"`
}

func CorporateFromRow(r Row) Corporate {
	return Corporate{
		Name:     r[ColName],
		CorpID:   r[ColCorpID],
		Role:     r[ColRole],
		Password: r[ColPassword],
	}
}

func (c Corporate) Row() Row {
	return Row{
		ColName:     c.Name,
		ColCorpID:   c.CorpID,
		ColRole:     c.Role,
		ColPassword: c.Password,
	}
}

type Slot struct {
	ID            string        `json:"id"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	Quantity      float64       `json:"quantity"`
	FarmerMobile  string        `json:"farmerMobile"`
	FarmerName    string        `json:"farmerName"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// SlotFromRow parses a Slots record. An empty quantity cell reads as zero.
func SlotFromRow(r Row) (Slot, error) {
	s := Slot{
		ID:            r[ColSlotID],
		Date:          r[ColDate],
		Time:          r[ColTime],
		FarmerMobile:  r[ColFarmerMobile],
		FarmerName:    r[ColFarmerName],
		PaymentStatus: PaymentStatus(r[ColPaymentStatus]),
	}
	if q := strings.TrimSpace(r[ColQuantity]); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil {
			return s, fmt.Errorf("slot %q: bad quantity %q: %w", s.ID, q, err)
		}
		s.Quantity = v
	}
	return s, nil
}

func (s Slot) Row() Row {
	return Row{
		ColDate:          s.Date,
		ColTime:          s.Time,
		ColQuantity:      strconv.FormatFloat(s.Quantity, 'f', -1, 64),
		ColFarmerMobile:  s.FarmerMobile,
		ColFarmerName:    s.FarmerName,
		ColPaymentStatus: string(s.PaymentStatus),
		ColSlotID:        s.ID,
	}
}

// Session is the server-side identity of a logged in user.
type Session struct {
	ID           string    `json:"id"`
	Role         Role      `json:"role"`
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Lang         string    `json:"lang"`
	AdviceLang   string    `json:"adviceLang"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

type KPI struct {
	TotalQuantity   float64 `json:"totalQuantity"`
	DistinctFarmers int     `json:"distinctFarmers"`
}

// SlotFilter narrows the corporate booking list. Empty fields and "All" match everything.
type SlotFilter struct {
	Farmer string `form:"farmer"`
	Band   string `form:"band"`
	Status string `form:"status"`
}

type Overview struct {
	Date    string   `json:"date"`
	KPI     KPI      `json:"kpi"`
	Slots   []Slot   `json:"slots"`
	Farmers []string `json:"farmers"`
	Bands   []string `json:"bands"`
}
