package models

import (
	"github.com/google/uuid"
)

// CarrierStatus values accepted for the carrier status tags
var CarrierStatuses = []string{"Active", "Terminated", "Processing", "Recruiting"}

// ValidCarrierStatus reports whether v is one of the accepted status tags
func ValidCarrierStatus(v string) bool {
	for _, t := range CarrierStatuses {
		if t == v {
			return true
		}
	}
	return false
}

// Location holds the delivery market address for a carrier. Geocoding is
// handled outside this service; the fields arrive populated.
type Location struct {
	FormattedAddress string  `json:"formatted_address"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
}

// Carrier model represents a delivery business that receives settlements
type Carrier struct {
	Model
	Name     string   `json:"name" gorm:"uniqueIndex;Column:name"`
	Slug     string   `json:"slug" gorm:"Column:slug"`
	UBI      string   `json:"ubi" gorm:"Column:ubi"`
	LANDI    string   `json:"landi" gorm:"Column:landi"`
	EIN      string   `json:"ein" gorm:"Column:ein"`
	DOT      string   `json:"dot" gorm:"Column:dot"`
	MCNumber string   `json:"mc_number" gorm:"Column:mc_number"`
	CCPermit string   `json:"cc_permit" gorm:"Column:cc_permit"`
	Phone    string   `json:"phone" gorm:"Column:phone"`
	Fax      string   `json:"fax" gorm:"Column:fax"`
	Email    string   `json:"email" gorm:"Column:email"`
	Website  string   `json:"website" gorm:"Column:website"`
	Address  string   `json:"address" gorm:"Column:address"`
	Location Location `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	Services []string `json:"services" gorm:"serializer:json"`
	Market   []string `json:"market" gorm:"serializer:json"`
	Account  []string `json:"account" gorm:"serializer:json"`
	Status   []string `json:"status" gorm:"serializer:json"`
	Photo    string   `json:"photo" gorm:"Column:photo;default:'no-photo.jpg'"`

	// Derived aggregates, written by the aggregation engine whenever a
	// settlement under this carrier is created or deleted
	AverageSettlementRevenue    float64 `json:"average_settlement_revenue" gorm:"Column:average_settlement_revenue"`
	AverageSettlementStopCount  float64 `json:"average_settlement_stop_count" gorm:"Column:average_settlement_stop_count"`
	AverageSettlementRouteCount float64 `json:"average_settlement_route_count" gorm:"Column:average_settlement_route_count"`
	TotalSalesRevenue           float64 `json:"total_sales_revenue" gorm:"Column:total_sales_revenue"`
	TotalStopCount              float64 `json:"total_stop_count" gorm:"Column:total_stop_count"`
	TotalRouteCount             float64 `json:"total_route_count" gorm:"Column:total_route_count"`

	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;Column:user_id"`
}
