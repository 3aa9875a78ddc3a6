// Package automation implements the pure-function automation gate (spec
// §4.4): quota, working-hour, and jitter checks consulted before every
// invitation send. Grounded on the original's automation.py, which keeps
// these checks as free functions over a settings row rather than methods
// on a stateful service — the same shape is kept here.
package automation

import (
	"math/rand"
	"time"

	"github.com/outreach-engine/scheduler/modules/automation/model"
)

// InWorkingHours translates now into settings.Timezone and checks the
// day-of-week bit and the start/end minute-of-day window.
func InWorkingHours(settings *model.AutomationSettings, now time.Time) bool {
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	dayBit := weekdayBit(local.Weekday())
	if settings.WorkingDays&dayBit == 0 {
		return false
	}

	minuteOfDay := local.Hour()*60 + local.Minute()
	start := settings.StartHour*60 + settings.StartMinute
	end := settings.EndHour*60 + settings.EndMinute
	return minuteOfDay >= start && minuteOfDay <= end
}

func weekdayBit(day time.Weekday) int {
	switch day {
	case time.Monday:
		return model.DayMonday
	case time.Tuesday:
		return model.DayTuesday
	case time.Wednesday:
		return model.DayWednesday
	case time.Thursday:
		return model.DayThursday
	case time.Friday:
		return model.DayFriday
	case time.Saturday:
		return model.DaySaturday
	default:
		return model.DaySunday
	}
}

// CanSendInvitation implements enabled ∧ in_working_hours ∧ quota-remaining
// ∧ min-delay-elapsed-since-last-send.
func CanSendInvitation(settings *model.AutomationSettings, now time.Time) bool {
	if !settings.Enabled {
		return false
	}
	if !InWorkingHours(settings, now) {
		return false
	}
	dailyLimit := settings.DailyLimit
	if dailyLimit > model.MaxDailyLimit {
		dailyLimit = model.MaxDailyLimit
	}
	if settings.InvitationsSentToday >= dailyLimit {
		return false
	}
	return MinDelayElapsed(settings, now)
}

// MinDelayElapsed reports whether enough time has passed since
// last_invitation_at, against a freshly drawn jitter delay in
// [min_delay_seconds, max_delay_seconds] — the check that defeats
// cadence fingerprinting by never sending two invitations back to back.
// A nil last_invitation_at (no prior send) always passes.
func MinDelayElapsed(settings *model.AutomationSettings, now time.Time) bool {
	if settings.LastInvitationAt == nil {
		return true
	}
	elapsed := now.Sub(*settings.LastInvitationAt)
	return elapsed >= NextSendDelay(settings)
}

// NeedsCounterReset reports whether last_reset_date precedes the UTC
// calendar day of now — the repository performs the actual reset
// transactionally (ResetDailyCounterIfStale); this is the pure predicate
// the scheduler consults to decide whether a reset is due before reading.
func NeedsCounterReset(settings *model.AutomationSettings, now time.Time) bool {
	return settings.LastResetDate.UTC().Truncate(24 * time.Hour).Before(now.UTC().Truncate(24 * time.Hour))
}

// NextSendDelay draws a uniform random delay in [min, max] seconds, the
// jitter that defeats cadence fingerprinting on the provider side.
func NextSendDelay(settings *model.AutomationSettings) time.Duration {
	minSec, maxSec := settings.MinDelaySeconds, settings.MaxDelaySeconds
	if maxSec <= minSec {
		return time.Duration(minSec) * time.Second
	}
	delta := rand.Intn(maxSec-minSec+1) + minSec
	return time.Duration(delta) * time.Second
}
