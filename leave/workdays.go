package leave

import "time"

// WorkingDays counts the days in [start, end] that fall Monday to Friday.
// Times are reduced to their calendar date first.
func WorkingDays(start, end time.Time) (int, error) {
	s, e := dateOnly(start), dateOnly(end)
	if e.Before(s) {
		return 0, ErrInvalidRange
	}

	// Both are UTC midnight, so the Unix difference is a whole number of days.
	// time.Duration would overflow past roughly 292 years.
	days := int((e.Unix()-s.Unix())/86400) + 1
	count := (days / 7) * 5

	wd := s.Weekday()
	for i := 0; i < days%7; i++ {
		if isWorkday((wd + time.Weekday(i)) % 7) {
			count++
		}
	}
	return count, nil
}

func isWorkday(wd time.Weekday) bool {
	return wd != time.Saturday && wd != time.Sunday
}
