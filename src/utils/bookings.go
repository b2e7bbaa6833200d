package utils

import (
	"context"
	"errors"
	"log"
	"time"

	"staynearev/src/common"
	"staynearev/src/config"
	"staynearev/src/db"
	"staynearev/src/lib"
	"staynearev/src/lib/mailer"
	"staynearev/src/models"
	"staynearev/src/repository"
	"staynearev/src/types"

	"gorm.io/gorm"
)

func bookings() repository.BookingRepository {
	return repository.NewBookingRepository(db.GetDb())
}

func findStation(stationID uint) (*models.Station, error) {
	var station models.Station
	err := db.GetDb().
		Model(&models.Station{}).
		Where(&models.Station{ID: stationID}).
		First(&station).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewAPIError(types.ErrNotFound, "station not found")
		}
		return nil, types.NewAPIError(types.ErrStorage, "storage operation failed")
	}
	return &station, nil
}

// CreateNewBooking validates the requested window, takes the per-station lock
// and inserts the booking through the transactional overlap guard. The
// creation check is exact: back-to-back sessions are allowed, only true
// overlap with a confirmed or active booking conflicts.
func CreateNewBooking(ctx context.Context, userID uint, body *types.CreateBookingRequestBody) (*models.Booking, error) {
	startTime, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartTime)
	if err != nil {
		return nil, types.NewAPIError(types.ErrValidation, "invalid start_time format")
	}
	duration := body.Duration
	if duration == 0 {
		duration = config.DefaultDurationMinutes
	}
	now := time.Now()
	if err := common.ValidateLeadTime(startTime, now); err != nil {
		return nil, err
	}
	station, err := findStation(body.StationID)
	if err != nil {
		return nil, err
	}
	endTime := startTime.Add(time.Duration(duration) * time.Minute)
	booking := &models.Booking{
		UserID:      userID,
		StationID:   station.ID,
		StartTime:   startTime,
		EndTime:     endTime,
		Duration:    duration,
		Status:      types.BOOKING_PENDING,
		TotalCost:   common.EstimatedCost(duration, station.PricePerUnit),
		VehicleInfo: body.VehicleInfo,
	}

	token, err := lib.AcquireStationLock(ctx, station.ID)
	if err != nil {
		return nil, err
	}
	defer lib.ReleaseStationLock(ctx, station.ID, token)

	if err := bookings().CreateIfNoOverlap(booking); err != nil {
		return nil, err
	}
	booking.Station = station

	go func(b models.Booking, s models.Station) {
		var user models.User
		if err := db.GetDb().First(&user, b.UserID).Error; err != nil {
			log.Printf("Could not load user %d for confirmation mail: %s\n", b.UserID, err.Error())
			return
		}
		mailer.SendBookingConfirmation(&b, &user, &s)
		var host models.User
		if err := db.GetDb().First(&host, s.HostID).Error; err == nil {
			mailer.SendHostNewBooking(&b, &host, &s)
		}
	}(*booking, *station)

	return booking, nil
}

// GetAvailableSlots lists the bookable windows for a station on a date. Slots
// already started are dropped when the date is today, and listed slots keep a
// buffer around existing sessions.
func GetAvailableSlots(query *types.AvailableSlotsQuery) ([]common.TimeSlot, error) {
	date, err := time.Parse(config.DATE_PARSE_FORMAT, query.Date)
	if err != nil {
		return nil, types.NewAPIError(types.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	station, err := findStation(query.StationID)
	if err != nil {
		return nil, err
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)
	dayEnd := dayStart.Add(24 * time.Hour)
	existing, err := bookings().FindForStationRange(station.ID, dayStart, dayEnd, repository.ActiveStatuses)
	if err != nil {
		return nil, err
	}
	return common.AvailableSlots(station, dayStart, query.Duration, existing, time.Now()), nil
}

// GetBooking loads a booking and enforces the view capability.
func GetBooking(actor common.Actor, bookingID uint) (*models.Booking, error) {
	booking, err := bookings().FindByID(bookingID)
	if err != nil {
		return nil, err
	}
	hostID := uint(0)
	if booking.Station != nil {
		hostID = booking.Station.HostID
	}
	if !common.Allowed(actor, common.ActionViewBooking, booking.UserID, hostID) {
		return nil, types.NewAPIError(types.ErrAuthorization, "not allowed to view this booking")
	}
	return booking, nil
}

// CancelBooking applies a requester cancellation with the cutoff rule. Admin
// requesters are stamped as system cancellations.
func CancelBooking(actor common.Actor, bookingID uint, reason string) (*models.Booking, error) {
	repo := bookings()
	booking, err := repo.FindByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !common.Allowed(actor, common.ActionCancelBooking, booking.UserID, 0) {
		return nil, types.NewAPIError(types.ErrAuthorization, "not allowed to cancel this booking")
	}
	if err := common.CancelByUser(booking, actor, reason, time.Now()); err != nil {
		return nil, err
	}
	if err := repo.Save(booking); err != nil {
		return nil, err
	}

	go func(b models.Booking) {
		if b.User == nil || b.Station == nil {
			return
		}
		mailer.SendBookingCancellation(&b, b.User, b.Station)
	}(*booking)

	return booking, nil
}

// UpdateBookingStatus applies a host or admin transition against the manual
// lifecycle table. Completion with energy_consumed computes the final cost
// from the station price.
func UpdateBookingStatus(actor common.Actor, bookingID uint, body *types.UpdateBookingStatusRequestBody) (*models.Booking, error) {
	repo := bookings()
	booking, err := repo.FindByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Station == nil {
		return nil, types.NewAPIError(types.ErrStorage, "booking has no station")
	}
	if !common.Allowed(actor, common.ActionUpdateBooking, booking.UserID, booking.Station.HostID) {
		return nil, types.NewAPIError(types.ErrAuthorization, "not allowed to update this booking")
	}
	if err := common.ApplyStatusUpdate(booking, body.Status, actor, body, booking.Station.PricePerUnit, time.Now()); err != nil {
		return nil, err
	}
	if err := repo.Save(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// AddBookingReview records a one-time review on a completed booking and
// refreshes the station's average rating.
func AddBookingReview(actor common.Actor, bookingID uint, body *types.AddReviewRequestBody) (*models.Booking, error) {
	repo := bookings()
	booking, err := repo.FindByID(bookingID)
	if err != nil {
		return nil, err
	}
	if !common.Allowed(actor, common.ActionReviewBooking, booking.UserID, 0) {
		return nil, types.NewAPIError(types.ErrAuthorization, "not allowed to review this booking")
	}
	if err := common.AddReview(booking, body.Rating, body.Review, time.Now()); err != nil {
		return nil, err
	}
	if err := repo.Save(booking); err != nil {
		return nil, err
	}
	if err := repo.RefreshStationRating(booking.StationID); err != nil {
		log.Printf("Failed to refresh rating for station %d: %s\n", booking.StationID, err.Error())
	}
	return booking, nil
}

// ListUserBookings pages through a customer's own bookings, newest first.
func ListUserBookings(userID uint, query *types.BookingListQuery) ([]models.Booking, int64, error) {
	return bookings().FindByUser(userID, query.Page, query.Limit, query.Status)
}

// ListHostBookings pages through every booking on the host's stations.
func ListHostBookings(hostID uint, query *types.BookingListQuery) ([]models.Booking, int64, error) {
	ids, err := HostStationIDs(hostID)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []models.Booking{}, 0, nil
	}
	return bookings().FindByStations(ids, query.Page, query.Limit, query.Status)
}

// ListAllBookings is the admin view over every booking on the platform.
func ListAllBookings(query *types.BookingListQuery) ([]models.Booking, int64, error) {
	return bookings().FindAll(query.Page, query.Limit, query.Status)
}

// HostStationIDs returns the ids of every station the host owns.
func HostStationIDs(hostID uint) ([]uint, error) {
	var ids []uint
	err := db.GetDb().
		Model(&models.Station{}).
		Where("host_id = ?", hostID).
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, types.NewAPIError(types.ErrStorage, "storage operation failed")
	}
	return ids, nil
}

// RunBookingSweep advances time-driven transitions in bulk: overdue bookings
// complete, confirmed bookings whose window opened activate. Runs on a fixed
// interval from the scheduler.
func RunBookingSweep() {
	repo := bookings()
	now := time.Now()
	completed, err := repo.CompleteOverdue(now)
	if err != nil {
		log.Printf("[sweep] Error completing overdue bookings: %s\n", err.Error())
	}
	activated, err := repo.ActivateOngoing(now)
	if err != nil {
		log.Printf("[sweep] Error activating ongoing bookings: %s\n", err.Error())
	}
	if completed > 0 || activated > 0 {
		log.Printf("[sweep] completed=%d activated=%d\n", completed, activated)
	}
}
