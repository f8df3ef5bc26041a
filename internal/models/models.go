package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is the base model with common fields for all database entities
type Model struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns an identifier when one was not provided
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Kind identifies a record collection that participates in the
// aggregation and cascade rules
type Kind string

const (
	// KindSettlement identifies settlements aggregated under a carrier
	KindSettlement Kind = "settlement"
	// KindNote identifies settlement notes
	KindNote Kind = "note"
	// KindChargeback identifies settlement chargebacks
	KindChargeback Kind = "chargeback"
	// KindDeliveryRoute identifies settlement delivery routes
	KindDeliveryRoute Kind = "delivery_route"
	// KindAdminFee identifies settlement admin fees
	KindAdminFee Kind = "admin_fee"
	// KindBondDeduction identifies performance bond deductions
	KindBondDeduction Kind = "performance_bond_deduction"
	// KindDamageClaim identifies property damage claims
	KindDamageClaim Kind = "property_damage_claim"
	// KindOtherDeduction identifies other deductions
	KindOtherDeduction Kind = "other_deduction"
)

// LineItemKinds lists every settlement-scoped child collection, in the
// order the cascade coordinator walks them
var LineItemKinds = []Kind{
	KindNote,
	KindChargeback,
	KindDeliveryRoute,
	KindAdminFee,
	KindBondDeduction,
	KindDamageClaim,
	KindOtherDeduction,
}

// LineItem is implemented by every settlement-scoped child record
type LineItem interface {
	GetID() uuid.UUID
	GetSettlementID() uuid.UUID
	GetUserID() uuid.UUID
	SetSettlementID(id uuid.UUID)
	SetUserID(id uuid.UUID)
	Kind() Kind
}

// NewLineItem returns an empty record of the given kind, or nil for a
// kind that is not a line item
func NewLineItem(kind Kind) LineItem {
	switch kind {
	case KindNote:
		return &Note{}
	case KindChargeback:
		return &Chargeback{}
	case KindDeliveryRoute:
		return &DeliveryRoute{}
	case KindAdminFee:
		return &AdminFee{}
	case KindBondDeduction:
		return &PerformanceBondDeduction{}
	case KindDamageClaim:
		return &PropertyDamageClaim{}
	case KindOtherDeduction:
		return &OtherDeduction{}
	default:
		return nil
	}
}

// NewLineItemSlice returns an empty slice of the concrete record type
// for the given kind, suitable as a gorm Find destination
func NewLineItemSlice(kind Kind) interface{} {
	switch kind {
	case KindNote:
		return &[]*Note{}
	case KindChargeback:
		return &[]*Chargeback{}
	case KindDeliveryRoute:
		return &[]*DeliveryRoute{}
	case KindAdminFee:
		return &[]*AdminFee{}
	case KindBondDeduction:
		return &[]*PerformanceBondDeduction{}
	case KindDamageClaim:
		return &[]*PropertyDamageClaim{}
	case KindOtherDeduction:
		return &[]*OtherDeduction{}
	default:
		return nil
	}
}

// LineItemSlice flattens a concrete slice filled by gorm into the
// LineItem interface
func LineItemSlice(dest interface{}) []LineItem {
	var items []LineItem
	switch v := dest.(type) {
	case *[]*Note:
		for _, it := range *v {
			items = append(items, it)
		}
	case *[]*Chargeback:
		for _, it := range *v {
			items = append(items, it)
		}
	case *[]*DeliveryRoute:
		for _, it := range *v {
			items = append(items, it)
		}
	case *[]*AdminFee:
		for _, it := range *v {
			items = append(items, it)
		}
	case *[]*PerformanceBondDeduction:
		for _, it := range *v {
			items = append(items, it)
		}
	case *[]*PropertyDamageClaim:
		for _, it := range *v {
			items = append(items, it)
		}
	case *[]*OtherDeduction:
		for _, it := range *v {
			items = append(items, it)
		}
	}
	return items
}
