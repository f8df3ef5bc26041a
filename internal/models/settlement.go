package models

import (
	"time"

	"github.com/google/uuid"
)

// SettlementStatus is an enum for the payment state of a settlement
type SettlementStatus string

const (
	// SettlementStatusPaid marks a settlement that has been paid out
	SettlementStatusPaid SettlementStatus = "Paid"
	// SettlementStatusOpen marks a settlement still accepting line items
	SettlementStatusOpen SettlementStatus = "Open"
	// SettlementStatusProcessing marks a settlement under review
	SettlementStatusProcessing SettlementStatus = "Processing"
)

// Valid reports whether the status is one of the accepted values.
// The empty string is allowed so the field can be omitted on create.
func (s SettlementStatus) Valid() bool {
	switch s {
	case "", SettlementStatusPaid, SettlementStatusOpen, SettlementStatusProcessing:
		return true
	}
	return false
}

// Settlement model represents one settlement period for a carrier
type Settlement struct {
	Model
	SettlementNumber string           `json:"settlement_number" gorm:"Column:settlement_number"`
	PeriodStart      time.Time        `json:"period_start" gorm:"Column:period_start"`
	PeriodEnding     time.Time        `json:"period_ending" gorm:"Column:period_ending"`
	Status           SettlementStatus `json:"status" gorm:"Column:status"`
	PayDate          *time.Time       `json:"pay_date" gorm:"Column:pay_date"`
	CheckNumber      string           `json:"check_number" gorm:"Column:check_number"`
	SettlementAmount float64          `json:"settlement_amount" gorm:"Column:settlement_amount"`
	RouteCount       float64          `json:"route_count" gorm:"Column:route_count"`
	StopCount        float64          `json:"stop_count" gorm:"Column:stop_count"`

	RouteAverageAmount float64 `json:"route_average_amount" gorm:"Column:route_average_amount"`
	RouteAverageStops  float64 `json:"route_average_stops" gorm:"Column:route_average_stops"`
	RouteAverageMiles  float64 `json:"route_average_miles" gorm:"Column:route_average_miles"`

	// Derived aggregates, one per contributing line-item kind
	ChargebackAmount             float64 `json:"chargeback_amount" gorm:"Column:chargeback_amount"`
	AdminFee                     float64 `json:"admin_fee" gorm:"Column:admin_fee"`
	BondDeduction                float64 `json:"bond_deduction" gorm:"Column:bond_deduction"`
	PropertyDamageClaimDeduction float64 `json:"property_damage_claim_deduction" gorm:"Column:property_damage_claim_deduction"`
	OtherDeductions              float64 `json:"other_deductions" gorm:"Column:other_deductions"`

	// Plain deduction fields, entered with the settlement itself
	InsuranceDeduction   float64 `json:"insurance_deduction" gorm:"Column:insurance_deduction"`
	TruckRentalDeduction float64 `json:"truck_rental_deduction" gorm:"Column:truck_rental_deduction"`

	Carrier   *Carrier  `json:"carrier,omitempty" gorm:"foreignKey:CarrierID"`
	CarrierID uuid.UUID `json:"carrier_id" gorm:"type:uuid;index;Column:carrier_id"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;Column:user_id"`
}
