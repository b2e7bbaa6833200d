package models

import (
	"staynearev/src/types"
)

type Station struct {
	ID            uint              `gorm:"primarykey;uniqueIndex:slugid" json:"id"`
	Name          string            `json:"name,omitempty"`
	Slug          string            `gorm:"uniqueIndex:slugid" json:"slug,omitempty"`
	Location      string            `json:"location,omitempty"`
	Description   string            `json:"description,omitempty"`
	PricePerUnit  float64           `json:"price_per_unit,omitempty"`
	Amenities     types.StringArray `gorm:"type:jsonb" json:"amenities,omitempty"`
	Images        types.StringArray `gorm:"type:jsonb" json:"images,omitempty"`
	HostID        uint              `json:"host_id,omitempty"`
	AverageRating float64           `gorm:"default:0" json:"average_rating"`

	Host     User      `gorm:"foreignKey:host_id" json:"-"`
	Bookings []Booking `gorm:"foreignKey:station_id" json:"-"`

	types.Timestamps
}
