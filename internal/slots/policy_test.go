package slots_test

import (
	"testing"
	"time"

	"github.com/caresquare/care-directory-backend/internal/domain/entities"
	"github.com/caresquare/care-directory-backend/internal/slots"
	"github.com/stretchr/testify/assert"
)

func slot(date string, available int) entities.TimeSlot {
	return entities.TimeSlot{
		Date:           date,
		AvailableSlots: available,
		Sessions: entities.SlotSessions{
			Morning: []string{"9:00 AM - 9:30 AM"},
			Evening: []string{},
		},
	}
}

func TestUpcoming_KeepsTodayAndFuture(t *testing.T) {
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

	list := []entities.TimeSlot{
		slot("9 June", 2),  // yesterday
		slot("10 June", 3), // today
		slot("11 June", 1), // tomorrow
	}

	got := slots.Upcoming(list, now)

	assert.Len(t, got, 2)
	assert.Equal(t, "10 June", got[0].Date)
	assert.Equal(t, "11 June", got[1].Date)
}

func TestUpcoming_YearRolloverExample(t *testing.T) {
	// "1 January" evaluated on 10 June has already passed this year;
	// only "15 June" and "31 December" survive.
	now := time.Date(2026, time.June, 10, 8, 0, 0, 0, time.UTC)

	list := []entities.TimeSlot{
		slot("1 January", 5),
		slot("15 June", 2),
		slot("31 December", 1),
	}

	got := slots.Upcoming(list, now)

	assert.Len(t, got, 2)
	assert.Equal(t, "15 June", got[0].Date)
	assert.Equal(t, "31 December", got[1].Date)
}

func TestUpcoming_DropsUnparsable(t *testing.T) {
	now := time.Date(2026, time.June, 10, 8, 0, 0, 0, time.UTC)

	got := slots.Upcoming([]entities.TimeSlot{slot("sometime", 4), slot("12 June", 1)}, now)

	assert.Len(t, got, 1)
	assert.Equal(t, "12 June", got[0].Date)
}

func TestSortByDate(t *testing.T) {
	list := []entities.TimeSlot{
		slot("31 December", 1),
		slot("4 July", 2),
		slot("1 January", 3),
	}

	got := slots.SortByDate(list, 2026, time.UTC)

	assert.Equal(t, "1 January", got[0].Date)
	assert.Equal(t, "4 July", got[1].Date)
	assert.Equal(t, "31 December", got[2].Date)
}

func TestSortByDate_UnparsableLastAndStable(t *testing.T) {
	list := []entities.TimeSlot{
		slot("garbage-b", 1),
		slot("4 July", 2),
		slot("garbage-a", 3),
		slot("1 January", 4),
	}

	got := slots.SortByDate(list, 2026, time.UTC)

	assert.Equal(t, "1 January", got[0].Date)
	assert.Equal(t, "4 July", got[1].Date)
	// unparsable dates keep their relative input order
	assert.Equal(t, "garbage-b", got[2].Date)
	assert.Equal(t, "garbage-a", got[3].Date)
}

func TestAvailabilityBadge(t *testing.T) {
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)

	t.Run("no slots at all", func(t *testing.T) {
		assert.Equal(t, slots.BadgeNoAppointments, slots.AvailabilityBadge(nil, now))
	})

	t.Run("today slot with capacity", func(t *testing.T) {
		list := []entities.TimeSlot{slot("10 June", 3)}
		assert.Equal(t, slots.BadgeAvailableToday, slots.AvailabilityBadge(list, now))
	})

	t.Run("today slot fully booked", func(t *testing.T) {
		list := []entities.TimeSlot{slot("10 June", 0)}
		assert.Equal(t, slots.BadgeNoAppointmentToday, slots.AvailabilityBadge(list, now))
	})

	t.Run("only future slots", func(t *testing.T) {
		list := []entities.TimeSlot{slot("12 June", 3)}
		assert.Equal(t, slots.BadgeNoAppointmentToday, slots.AvailabilityBadge(list, now))
	})
}
