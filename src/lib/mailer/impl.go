package mailer

import (
	"fmt"
	"log"
	"os"

	"staynearev/src/config"
	"staynearev/src/lib"
	"staynearev/src/models"
)

func sender() (string, string) {
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "no-reply@staynearev.app"
	}
	return from, "StayNearEV"
}

// SendBookingConfirmation mails the customer their reservation details. Mail
// delivery is best effort and never blocks or fails the booking flow, so call
// it from a goroutine.
func SendBookingConfirmation(booking *models.Booking, user *models.User, station *models.Station) {
	from, fromName := sender()
	body := fmt.Sprintf(
		"Hi %s,\n\nYour charging session at %s is booked.\n\nStart: %s\nEnd: %s\nDuration: %d minutes\nEstimated cost: %.2f\n\nSee you there!",
		user.Name,
		station.Name,
		booking.StartTime.Format(config.TIME_PARSE_FORMAT),
		booking.EndTime.Format(config.TIME_PARSE_FORMAT),
		booking.Duration,
		booking.TotalCost,
	)
	err := lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{user.Email},
		Subject:  fmt.Sprintf("Booking confirmed: %s", station.Name),
		Body:     body,
	})
	if err != nil {
		log.Printf("[mailer] Failed to send confirmation for booking %d: %s\n", booking.ID, err.Error())
	}
}

// SendBookingCancellation notifies the customer that their booking was
// cancelled, by them or on their behalf.
func SendBookingCancellation(booking *models.Booking, user *models.User, station *models.Station) {
	from, fromName := sender()
	reason := ""
	if booking.CancellationReason != nil {
		reason = fmt.Sprintf("\nReason: %s\n", *booking.CancellationReason)
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour charging session at %s on %s has been cancelled.\n%s\nBook another slot any time.",
		user.Name,
		station.Name,
		booking.StartTime.Format(config.TIME_PARSE_FORMAT),
		reason,
	)
	err := lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{user.Email},
		Subject:  fmt.Sprintf("Booking cancelled: %s", station.Name),
		Body:     body,
	})
	if err != nil {
		log.Printf("[mailer] Failed to send cancellation for booking %d: %s\n", booking.ID, err.Error())
	}
}

// SendHostNewBooking tells the station host a new reservation landed.
func SendHostNewBooking(booking *models.Booking, host *models.User, station *models.Station) {
	from, fromName := sender()
	body := fmt.Sprintf(
		"Hi %s,\n\nA new booking was placed for %s.\n\nStart: %s\nDuration: %d minutes\n",
		host.Name,
		station.Name,
		booking.StartTime.Format(config.TIME_PARSE_FORMAT),
		booking.Duration,
	)
	err := lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{host.Email},
		Subject:  fmt.Sprintf("New booking: %s", station.Name),
		Body:     body,
	})
	if err != nil {
		log.Printf("[mailer] Failed to notify host for booking %d: %s\n", booking.ID, err.Error())
	}
}
