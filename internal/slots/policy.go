package slots

import (
	"sort"
	"time"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
)

// Badge summarizes a provider's availability for inline display
type Badge string

const (
	// BadgeAvailableToday means a today slot exists with remaining capacity
	BadgeAvailableToday Badge = "available_today"
	// BadgeNoAppointmentToday means slots exist but none is bookable today
	BadgeNoAppointmentToday Badge = "no_appointment_today"
	// BadgeNoAppointments means the provider has no time slots at all
	BadgeNoAppointments Badge = "no_appointments"
)

// Upcoming filters a slot list down to entries dated today or later.
// Unparsable dates are silently excluded.
func Upcoming(list []entities.TimeSlot, now time.Time) []entities.TimeSlot {
	out := make([]entities.TimeSlot, 0, len(list))
	for _, slot := range list {
		switch Classify(slot.Date, now) {
		case DateToday, DateFuture:
			out = append(out, slot)
		}
	}
	return out
}

// SortByDate returns a copy of the slot list ordered chronologically
// ascending. Unparsable dates sort after every parsable date; two
// unparsable dates compare equal, so their input order is preserved.
func SortByDate(list []entities.TimeSlot, referenceYear int, loc *time.Location) []entities.TimeSlot {
	type keyed struct {
		slot  entities.TimeSlot
		at    time.Time
		valid bool
	}

	ks := make([]keyed, len(list))
	for i, slot := range list {
		t, err := ParseDate(slot.Date, referenceYear, loc)
		ks[i] = keyed{slot: slot, at: t, valid: err == nil}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].valid && ks[j].valid {
			return ks[i].at.Before(ks[j].at)
		}
		// parsable before unparsable; two unparsable compare equal
		return ks[i].valid && !ks[j].valid
	})

	out := make([]entities.TimeSlot, len(ks))
	for i, k := range ks {
		out[i] = k.slot
	}
	return out
}

// AvailabilityBadge derives the inline badge for a provider's slot list.
// A provider with zero slots is distinguished from one whose today slot has
// no remaining capacity.
func AvailabilityBadge(list []entities.TimeSlot, now time.Time) Badge {
	if len(list) == 0 {
		return BadgeNoAppointments
	}
	for _, slot := range list {
		if Classify(slot.Date, now) == DateToday && slot.AvailableSlots > 0 {
			return BadgeAvailableToday
		}
	}
	return BadgeNoAppointmentToday
}
