package models

import (
	"staynearev/src/types"
)

type User struct {
	ID    uint           `gorm:"primarykey" json:"id"`
	Name  string         `json:"name,omitempty"`
	Email string         `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone string         `json:"phone,omitempty"`
	Role  types.UserRole `gorm:"default:'customer'" json:"role,omitempty"`

	Bookings []Booking `gorm:"foreignKey:user_id" json:"bookings,omitempty"`
	Stations []Station `gorm:"foreignKey:host_id" json:"stations,omitempty"`

	types.Timestamps
}
