package repository

import (
	"errors"
	"fmt"
	"log"
	"time"

	"staynearev/src/models"
	"staynearev/src/types"

	"gorm.io/gorm"
)

// ActiveStatuses are the statuses that block a station's time window.
var ActiveStatuses = []types.BookingStatus{types.BOOKING_CONFIRMED, types.BOOKING_ACTIVE}

type BookingFilter struct {
	UserID     uint
	StationIDs []uint
	Status     types.BookingStatus
}

// BookingRepository is the persistence surface for bookings. Cancellation is a
// status change, never a delete.
type BookingRepository interface {
	FindByID(id uint) (*models.Booking, error)
	FindByUser(userID uint, page, limit int, status types.BookingStatus) ([]models.Booking, int64, error)
	FindForStationRange(stationID uint, from, to time.Time, statuses []types.BookingStatus) ([]models.Booking, error)
	FindByStations(stationIDs []uint, page, limit int, status types.BookingStatus) ([]models.Booking, int64, error)
	FindAll(page, limit int, status types.BookingStatus) ([]models.Booking, int64, error)
	Count(filter BookingFilter) (int64, error)
	CreateIfNoOverlap(b *models.Booking) error
	Save(b *models.Booking) error
	CompleteOverdue(now time.Time) (int64, error)
	ActivateOngoing(now time.Time) (int64, error)
	RefreshStationRating(stationID uint) error
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func storageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NewAPIError(types.ErrNotFound, "booking not found")
	}
	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	log.Printf("[repository] storage error: %s\n", err.Error())
	return types.NewAPIError(types.ErrStorage, "storage operation failed")
}

func (r *GormBookingRepository) FindByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: id}).
		Preload("Station").
		Preload("User").
		First(&booking).
		Error
	if err != nil {
		return nil, storageError(err)
	}
	return &booking, nil
}

func (r *GormBookingRepository) FindByUser(userID uint, page, limit int, status types.BookingStatus) ([]models.Booking, int64, error) {
	var bookings []models.Booking
	var total int64
	q := r.db.
		Model(&models.Booking{}).
		Where(&models.Booking{UserID: userID})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, storageError(err)
	}
	err := q.
		Preload("Station").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&bookings).
		Error
	if err != nil {
		return nil, 0, storageError(err)
	}
	return bookings, total, nil
}

func (r *GormBookingRepository) FindForStationRange(stationID uint, from, to time.Time, statuses []types.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.
		Model(&models.Booking{}).
		Where("station_id = ?", stationID).
		Where("status IN ?", statuses).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time ASC").
		Find(&bookings).
		Error
	if err != nil {
		return nil, storageError(err)
	}
	return bookings, nil
}

func (r *GormBookingRepository) FindByStations(stationIDs []uint, page, limit int, status types.BookingStatus) ([]models.Booking, int64, error) {
	var bookings []models.Booking
	var total int64
	q := r.db.
		Model(&models.Booking{}).
		Where("station_id IN ?", stationIDs)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, storageError(err)
	}
	err := q.
		Preload("User").
		Preload("Station").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&bookings).
		Error
	if err != nil {
		return nil, 0, storageError(err)
	}
	return bookings, total, nil
}

func (r *GormBookingRepository) FindAll(page, limit int, status types.BookingStatus) ([]models.Booking, int64, error) {
	var bookings []models.Booking
	var total int64
	q := r.db.Model(&models.Booking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, storageError(err)
	}
	err := q.
		Preload("User").
		Preload("Station").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&bookings).
		Error
	if err != nil {
		return nil, 0, storageError(err)
	}
	return bookings, total, nil
}

func (r *GormBookingRepository) Count(filter BookingFilter) (int64, error) {
	var total int64
	q := r.db.Model(&models.Booking{})
	if filter.UserID > 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if len(filter.StationIDs) > 0 {
		q = q.Where("station_id IN ?", filter.StationIDs)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return 0, storageError(err)
	}
	return total, nil
}

// CreateIfNoOverlap runs the unbuffered overlap check and the insert inside a
// single transaction so two concurrent requests for the same window cannot
// both pass the check before either writes.
func (r *GormBookingRepository) CreateIfNoOverlap(b *models.Booking) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var conflicts int64
		err := tx.
			Model(&models.Booking{}).
			Where("station_id = ?", b.StationID).
			Where("status IN ?", ActiveStatuses).
			Where("start_time < ? AND end_time > ?", b.EndTime, b.StartTime).
			Count(&conflicts).
			Error
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return types.NewAPIError(types.ErrConflict, "time slot is already booked at this station")
		}
		return tx.Create(b).Error
	})
	return storageError(err)
}

func (r *GormBookingRepository) Save(b *models.Booking) error {
	return storageError(r.db.Save(b).Error)
}

// CompleteOverdue advances every booking whose end has passed to completed.
// The update is monotonic along the lifecycle graph, so running it twice, or
// concurrently with the save path, settles on the same state.
func (r *GormBookingRepository) CompleteOverdue(now time.Time) (int64, error) {
	res := r.db.
		Model(&models.Booking{}).
		Where("end_time < ?", now).
		Where("status IN ?", []types.BookingStatus{
			types.BOOKING_PENDING,
			types.BOOKING_CONFIRMED,
			types.BOOKING_ACTIVE,
		}).
		Update("status", types.BOOKING_COMPLETED)
	if res.Error != nil {
		return 0, storageError(res.Error)
	}
	return res.RowsAffected, nil
}

// ActivateOngoing advances confirmed bookings whose window has opened.
func (r *GormBookingRepository) ActivateOngoing(now time.Time) (int64, error) {
	res := r.db.
		Model(&models.Booking{}).
		Where("start_time <= ? AND end_time > ?", now, now).
		Where("status = ?", types.BOOKING_CONFIRMED).
		Update("status", types.BOOKING_ACTIVE)
	if res.Error != nil {
		return 0, storageError(res.Error)
	}
	return res.RowsAffected, nil
}

// RefreshStationRating recomputes a station's average from its rated bookings.
func (r *GormBookingRepository) RefreshStationRating(stationID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var avg float64
		err := tx.
			Model(&models.Booking{}).
			Where("station_id = ?", stationID).
			Where("rating IS NOT NULL").
			Select("COALESCE(AVG(rating), 0)").
			Scan(&avg).
			Error
		if err != nil {
			return err
		}
		return tx.
			Model(&models.Station{}).
			Where("id = ?", stationID).
			Update("average_rating", avg).
			Error
	})
	if err != nil {
		return fmt.Errorf("refreshing rating for station %d: %w", stationID, storageError(err))
	}
	return nil
}
