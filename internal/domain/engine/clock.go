package engine

import "time"

// Clock - источник текущего времени
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Remaining считает остаток фазы: max(0, duration - (now - start)).
// Если start еще не записан, фаза считается только что начавшейся.
func Remaining(duration time.Duration, start, now time.Time) time.Duration {
	if start.IsZero() {
		return duration
	}

	left := duration - now.Sub(start)
	switch {
	case left < 0:
		return 0
	case left > duration:
		// часы клиента отстают от phaseStart
		return duration
	}

	return left
}

// Expired возвращает true, когда записанная фаза закончилась
func Expired(duration time.Duration, start, now time.Time) bool {
	return !start.IsZero() && Remaining(duration, start, now) == 0
}

// Deadline - момент окончания фазы
func Deadline(duration time.Duration, start time.Time) time.Time {
	return start.Add(duration)
}

// FastForward сдвигает начало фазы назад так, чтобы осталось не больше grace
func FastForward(start, now time.Time, duration, grace time.Duration) time.Time {
	if start.IsZero() || Remaining(duration, start, now) <= grace {
		return start
	}

	return now.Add(grace - duration)
}
