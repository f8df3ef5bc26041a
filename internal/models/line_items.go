package models

import (
	"time"

	"github.com/google/uuid"
)

// LineItemBase carries the references every settlement child record has
type LineItemBase struct {
	SettlementID uuid.UUID `json:"settlement_id" gorm:"type:uuid;index;Column:settlement_id"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;Column:user_id"`
}

func (b *LineItemBase) GetSettlementID() uuid.UUID   { return b.SettlementID }
func (b *LineItemBase) GetUserID() uuid.UUID         { return b.UserID }
func (b *LineItemBase) SetSettlementID(id uuid.UUID) { b.SettlementID = id }
func (b *LineItemBase) SetUserID(id uuid.UUID)       { b.UserID = id }

// Note model represents a free-form comment attached to a settlement
type Note struct {
	Model
	LineItemBase
	Title string `json:"title" gorm:"Column:title"`
	Text  string `json:"text" gorm:"Column:text"`
}

func (n *Note) GetID() uuid.UUID { return n.ID }
func (n *Note) Kind() Kind       { return KindNote }

// Chargeback model represents a merchandise chargeback against a settlement
type Chargeback struct {
	Model
	LineItemBase
	ChargebackNumber string  `json:"chargeback_number" gorm:"Column:chargeback_number"`
	Text             string  `json:"text" gorm:"Column:text"`
	ChargebackAmount float64 `json:"chargeback_amount" gorm:"Column:chargeback_amount"`
}

func (c *Chargeback) GetID() uuid.UUID { return c.ID }
func (c *Chargeback) Kind() Kind       { return KindChargeback }

// DeliveryRoute model represents one delivery route worked during the period
type DeliveryRoute struct {
	Model
	LineItemBase
	RouteNumber  string    `json:"route_number" gorm:"Column:route_number"`
	Date         time.Time `json:"date" gorm:"Column:date"`
	StopCount    float64   `json:"stop_count" gorm:"Column:stop_count"`
	PieceCount   float64   `json:"piece_count" gorm:"Column:piece_count"`
	RouteMileage float64   `json:"route_mileage" gorm:"Column:route_mileage"`
	RouteRevenue float64   `json:"route_revenue" gorm:"Column:route_revenue"`
}

func (d *DeliveryRoute) GetID() uuid.UUID { return d.ID }
func (d *DeliveryRoute) Kind() Kind       { return KindDeliveryRoute }

// AdminFee model represents the administrative fee for a settlement.
// A user may record at most one per settlement.
type AdminFee struct {
	Model
	LineItemBase
	AdminFeeAmount float64 `json:"admin_fee_amount" gorm:"Column:admin_fee_amount"`
}

func (a *AdminFee) GetID() uuid.UUID { return a.ID }
func (a *AdminFee) Kind() Kind       { return KindAdminFee }

// DefaultBondDeductionNote is applied when no note is supplied
const DefaultBondDeductionNote = "This deduction will remain active until the total has reached $2500.00 per truck"

// PerformanceBondDeduction model represents a bond withholding on a settlement
type PerformanceBondDeduction struct {
	Model
	LineItemBase
	BondDeductionNumber            string  `json:"bond_deduction_number" gorm:"Column:bond_deduction_number"`
	Note                           string  `json:"note" gorm:"Column:note"`
	PerformanceBondDeductionAmount float64 `json:"performance_bond_deduction_amount" gorm:"Column:performance_bond_deduction_amount"`
	AuthorizedBy                   string  `json:"authorized_by" gorm:"Column:authorized_by"`
}

func (p *PerformanceBondDeduction) GetID() uuid.UUID { return p.ID }
func (p *PerformanceBondDeduction) Kind() Kind       { return KindBondDeduction }

// DamageType values accepted for property damage claims
var DamageTypes = []string{
	"Floor Damage",
	"Carpet Damage",
	"Driveway Damage",
	"Wall Damage",
	"Door Damage",
	"Other Damage",
}

// ValidDamageType reports whether v is one of the accepted damage types
func ValidDamageType(v string) bool {
	for _, t := range DamageTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ClaimStatus is an enum for the lifecycle of a property damage claim
type ClaimStatus string

const (
	// ClaimStatusResolved marks a settled claim
	ClaimStatusResolved ClaimStatus = "Resolved"
	// ClaimStatusOpen marks a claim awaiting review
	ClaimStatusOpen ClaimStatus = "Open"
	// ClaimStatusProcessing marks a claim under review
	ClaimStatusProcessing ClaimStatus = "Processing"
)

// Valid reports whether the claim status is one of the accepted values.
// The empty string is allowed so the field can be omitted on create.
func (s ClaimStatus) Valid() bool {
	switch s {
	case "", ClaimStatusResolved, ClaimStatusOpen, ClaimStatusProcessing:
		return true
	}
	return false
}

// PropertyDamageClaim model represents a customer damage claim deducted
// from a settlement
type PropertyDamageClaim struct {
	Model
	LineItemBase
	PropertyDamageClaimNumber string      `json:"property_damage_claim_number" gorm:"Column:property_damage_claim_number"`
	Text                      string      `json:"text" gorm:"Column:text"`
	DamageType                []string    `json:"damage_type" gorm:"serializer:json"`
	ClaimReportedDate         *time.Time  `json:"claim_reported_date" gorm:"Column:claim_reported_date"`
	ClaimDeliveryDate         *time.Time  `json:"claim_delivery_date" gorm:"Column:claim_delivery_date"`
	CustomerName              string      `json:"customer_name" gorm:"Column:customer_name"`
	ClaimAmount               float64     `json:"claim_amount" gorm:"Column:claim_amount"`
	ClaimStatus               ClaimStatus `json:"claim_status" gorm:"Column:claim_status"`
}

func (p *PropertyDamageClaim) GetID() uuid.UUID { return p.ID }
func (p *PropertyDamageClaim) Kind() Kind       { return KindDamageClaim }

// DeductionType values accepted for other deductions
var DeductionTypes = []string{
	"Truck Rental",
	"Truck Mileage",
	"Truck Repair",
	"Insurance Deduction",
	"Uniform Deduction",
	"Supplies Deduction",
	"Truck Wash Deduction",
	"Other Deduction",
}

// ValidDeductionType reports whether v is one of the accepted deduction types
func ValidDeductionType(v string) bool {
	for _, t := range DeductionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// OtherDeduction model represents a miscellaneous settlement deduction
type OtherDeduction struct {
	Model
	LineItemBase
	Text            string   `json:"text" gorm:"Column:text"`
	DeductionType   []string `json:"deduction_type" gorm:"serializer:json"`
	DeductionAmount float64  `json:"deduction_amount" gorm:"Column:deduction_amount"`
}

func (o *OtherDeduction) GetID() uuid.UUID { return o.ID }
func (o *OtherDeduction) Kind() Kind       { return KindOtherDeduction }
