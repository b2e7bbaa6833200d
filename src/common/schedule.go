package common

import (
	"time"

	"staynearev/src/config"
	"staynearev/src/models"
)

// TimeSlot is a candidate reservation window offered to a customer, with the
// estimated cost of charging through it at the station's price.
type TimeSlot struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Duration        uint      `json:"duration"`
	EstimatedEnergy float64   `json:"estimated_energy"`
	EstimatedCost   float64   `json:"estimated_cost"`
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasOverlap reports whether [start, end) directly overlaps any of the given
// bookings. Callers are expected to pass only bookings whose status blocks the
// window (confirmed or active).
func HasOverlap(start, end time.Time, bookings []models.Booking) bool {
	for _, b := range bookings {
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

// ConflictsBuffered reports whether [start, end) falls inside any booking's
// exclusion window padded by buffer on both sides. The buffer keeps suggested
// slots from lining up back-to-back with existing sessions; it is advisory and
// applies to slot listing only, not to creation.
func ConflictsBuffered(start, end time.Time, bookings []models.Booking, buffer time.Duration) bool {
	for _, b := range bookings {
		if Overlaps(start, end, b.StartTime.Add(-buffer), b.EndTime.Add(buffer)) {
			return true
		}
	}
	return false
}

// AvailableSlots generates the candidate slots for a station on the given
// date: every SlotStepMinutes step within the [OperatingOpenHour,
// OperatingCloseHour) window whose end stays inside the window, skipping
// starts already in the past when date is the current day, and skipping
// windows that conflict with existing bookings under the listing buffer.
// Output is ordered ascending by start time and is a pure function of its
// inputs.
func AvailableSlots(station *models.Station, date time.Time, duration uint, existing []models.Booking, now time.Time) []TimeSlot {
	if duration == 0 {
		duration = config.DefaultDurationMinutes
	}
	slots := []TimeSlot{}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	closeAt := day.Add(config.OperatingCloseHour * time.Hour)
	buffer := config.SlotBufferMinutes * time.Minute
	sameDay := day.Equal(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, date.Location()))

	for hour := config.OperatingOpenHour; hour < config.OperatingCloseHour; hour++ {
		for minute := 0; minute < 60; minute += config.SlotStepMinutes {
			start := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
			if sameDay && start.Before(now) {
				continue
			}
			end := start.Add(time.Duration(duration) * time.Minute)
			if end.After(closeAt) {
				continue
			}
			if ConflictsBuffered(start, end, existing, buffer) {
				continue
			}
			slots = append(slots, TimeSlot{
				StartTime:       start,
				EndTime:         end,
				Duration:        duration,
				EstimatedEnergy: EstimatedEnergy(duration),
				EstimatedCost:   EstimatedCost(duration, station.PricePerUnit),
			})
		}
	}
	return slots
}
