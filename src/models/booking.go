package models

import (
	"time"

	"staynearev/src/types"
)

type Booking struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	UserID    uint                `gorm:"index:idx_user_created" json:"user_id,omitempty"`
	StationID uint                `gorm:"index:idx_station_window" json:"station_id,omitempty"`
	StartTime time.Time           `gorm:"index:idx_station_window" json:"start_time"`
	EndTime   time.Time           `gorm:"index:idx_station_window" json:"end_time"`
	Duration  uint                `json:"duration,omitempty"`
	Status    types.BookingStatus `gorm:"default:'pending';index" json:"status,omitempty"`

	TotalCost      float64  `json:"total_cost,omitempty"`
	FinalCost      *float64 `json:"final_cost,omitempty"`
	EnergyConsumed float64  `gorm:"default:0" json:"energy_consumed,omitempty"`

	PaymentStatus   types.PaymentStatus `gorm:"default:'pending';index" json:"payment_status,omitempty"`
	PaymentMethod   string              `gorm:"default:'card'" json:"payment_method,omitempty"`
	StripeSessionID *string             `json:"-"`

	StripePaymentIntentID *string `gorm:"index" json:"-"`

	VehicleInfo types.VehicleInfo `gorm:"type:jsonb" json:"vehicle_info,omitempty"`
	Notes       *string           `json:"notes,omitempty"`

	Rating *uint8  `json:"rating,omitempty"`
	Review *string `json:"review,omitempty"`

	CancellationReason *string            `json:"cancellation_reason,omitempty"`
	CancelledBy        *types.CancelActor `json:"cancelled_by,omitempty"`

	User    *User    `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Station *Station `gorm:"foreignKey:station_id" json:"station,omitempty"`

	types.Timestamps
}
