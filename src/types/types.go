package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// VehicleInfo is stored on a booking as a jsonb column.
type VehicleInfo struct {
	VehicleType     string  `json:"vehicle_type" binding:"required"`
	Model           string  `json:"model,omitempty"`
	LicensePlate    string  `json:"license_plate" binding:"required"`
	BatteryCapacity float64 `json:"battery_capacity,omitempty"`
}

func (v VehicleInfo) Value() (driver.Value, error) {
	valueString, err := json.Marshal(v)
	return string(valueString), err
}
func (v *VehicleInfo) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_ACTIVE    BookingStatus = "active"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_NO_SHOW   BookingStatus = "no-show"
)

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_FAILED   PaymentStatus = "failed"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
)

type CancelActor string

const (
	CANCELLED_BY_USER   CancelActor = "user"
	CANCELLED_BY_HOST   CancelActor = "host"
	CANCELLED_BY_SYSTEM CancelActor = "system"
)

type UserRole string

const (
	ROLE_CUSTOMER UserRole = "customer"
	ROLE_HOST     UserRole = "host"
	ROLE_ADMIN    UserRole = "admin"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	StationID   uint        `json:"station_id" binding:"required"`
	StartTime   string      `json:"start_time" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Duration    uint        `json:"duration,omitempty"`
	VehicleInfo VehicleInfo `json:"vehicle_info" binding:"required"`
}

type AvailableSlotsQuery struct {
	StationID uint   `form:"station_id" binding:"required"`
	Date      string `form:"date" binding:"required"`
	Duration  uint   `form:"duration,omitempty"`
}

type CancelBookingRequestBody struct {
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

type UpdateBookingStatusRequestBody struct {
	Status         BookingStatus `json:"status" binding:"required"`
	EnergyConsumed float64       `json:"energy_consumed,omitempty"`
	Notes          string        `json:"notes,omitempty"`
}

type AddReviewRequestBody struct {
	Rating uint8  `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review,omitempty"`
}

type CreateStationRequestBody struct {
	Name         string   `json:"name" binding:"required"`
	Location     string   `json:"location" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	PricePerUnit float64  `json:"price_per_unit" binding:"required,gt=0"`
	Amenities    []string `json:"amenities,omitempty"`
	Images       []string `json:"images,omitempty"`
}

type UpdateStationRequestBody struct {
	Name         string   `json:"name,omitempty"`
	Location     string   `json:"location,omitempty"`
	Description  string   `json:"description,omitempty"`
	PricePerUnit float64  `json:"price_per_unit,omitempty" binding:"omitempty,gt=0"`
	Amenities    []string `json:"amenities,omitempty"`
	Images       []string `json:"images,omitempty"`
}

type UpdateProfileRequestBody struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type BookingListQuery struct {
	Page   int           `form:"page,default=1" binding:"omitempty,min=1"`
	Limit  int           `form:"limit,default=10" binding:"omitempty,min=1,max=100"`
	Status BookingStatus `form:"status,omitempty"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
