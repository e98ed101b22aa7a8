package calendar

import "time"

type BusyRange struct {
	Start time.Time
	End   time.Time
}

type SlotConfig struct {
	WorkStartHour int
	WorkEndHour   int
	SlotMinutes   int
	DaysAhead     int
}

func DefaultSlotConfig() SlotConfig {
	return SlotConfig{
		WorkStartHour: 10,
		WorkEndHour:   18,
		SlotMinutes:   30,
		DaysAhead:     7,
	}
}

// FreeSlots walks the window in slot-sized steps and keeps every slot
// that starts on a weekday inside working hours and overlaps no busy
// range. Pure so the arithmetic is testable without a calendar account.
func FreeSlots(from, until time.Time, busy []BusyRange, cfg SlotConfig) []time.Time {
	slotDur := time.Duration(cfg.SlotMinutes) * time.Minute

	var slots []time.Time
	current := from.Truncate(time.Hour)
	for current.Before(until) {
		if !current.Before(from) && isWorkingSlot(current, cfg) && !overlapsAny(current, current.Add(slotDur), busy) {
			slots = append(slots, current)
		}
		current = current.Add(slotDur)
	}
	return slots
}

func isWorkingSlot(t time.Time, cfg SlotConfig) bool {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return t.Hour() >= cfg.WorkStartHour && t.Hour() < cfg.WorkEndHour
}

func overlapsAny(start, end time.Time, busy []BusyRange) bool {
	for _, b := range busy {
		if b.Start.Before(end) && b.End.After(start) {
			return true
		}
	}
	return false
}
