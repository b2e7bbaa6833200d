package main

import (
	"encoding/json"
	"log"
	"testing"

	"staynearev/src/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
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
	db.NewDB(gormDB)
	return mock
}

func stripeEvent(eventType stripe.EventType, raw string) stripe.Event {
	return stripe.Event{
		Type: eventType,
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func TestCheckoutCompletedConfirmsBooking(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_status"}).
			AddRow(7, "pending", "pending"))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	processStripeEvent(stripeEvent("checkout.session.completed",
		`{"id":"cs_1","payment_intent":"pi_123","metadata":{"bookingId":"7"}}`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentFailedMarksBooking(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "payment_status"}).
			AddRow(7, "pending", "pending"))
	mock.ExpectExec(`UPDATE "bookings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	processStripeEvent(stripeEvent("payment_intent.payment_failed",
		`{"id":"pi_123","metadata":{"bookingId":"7"}}`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeRefundedMarksBooking(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings" SET "payment_status"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	processStripeEvent(stripeEvent("charge.refunded",
		`{"id":"ch_1","payment_intent":"pi_123"}`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentEventWithoutBookingID(t *testing.T) {
	mock := newMockDB(t)

	// no expectations: an event without a booking id touches nothing
	processStripeEvent(stripeEvent("payment_intent.payment_failed", `{"id":"pi_9","metadata":{}}`))
	assert.NoError(t, mock.ExpectationsWereMet())
}
