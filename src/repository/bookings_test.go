package repository

import (
	"log"
	"testing"
	"time"

	"staynearev/src/models"
	"staynearev/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

func TestCompleteOverdue(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.CompleteOverdue(time.Now())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateOngoing(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.ActivateOngoing(time.Now())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	total, err := repo.Count(BookingFilter{UserID: 1, Status: types.BOOKING_CONFIRMED})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfNoOverlapConflict(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	start := time.Now().Add(2 * time.Hour)
	err := repo.CreateIfNoOverlap(&models.Booking{
		UserID:    1,
		StationID: 2,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	assert.Equal(t, types.ErrConflict, types.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIfNoOverlap(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	start := time.Now().Add(2 * time.Hour)
	booking := &models.Booking{
		UserID:    1,
		StationID: 2,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    types.BOOKING_PENDING,
	}
	err := repo.CreateIfNoOverlap(booking)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), booking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)

	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(99)
	assert.Equal(t, types.ErrNotFound, types.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindForStationRange(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookingRepository(gdb)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "station_id", "start_time", "end_time", "status"}).
		AddRow(1, 2, day.Add(10*time.Hour), day.Add(11*time.Hour), "confirmed").
		AddRow(2, 2, day.Add(14*time.Hour), day.Add(15*time.Hour), "active")
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(rows)

	bookings, err := repo.FindForStationRange(2, day, day.Add(24*time.Hour), ActiveStatuses)
	assert.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, types.BOOKING_CONFIRMED, bookings[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
