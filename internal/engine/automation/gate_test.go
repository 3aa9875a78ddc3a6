package automation

import (
	"testing"
	"time"

	"github.com/outreach-engine/scheduler/modules/automation/model"

	"github.com/stretchr/testify/assert"
)

func baseSettings() *model.AutomationSettings {
	return &model.AutomationSettings{
		Enabled:               true,
		Timezone:              "America/New_York",
		WorkingDays:           model.DayMonday | model.DayTuesday | model.DayWednesday | model.DayThursday | model.DayFriday,
		StartHour:             9,
		StartMinute:           0,
		EndHour:               17,
		EndMinute:             0,
		DailyLimit:            20,
		InvitationsSentToday:  0,
		MinDelaySeconds:       30,
		MaxDelaySeconds:       90,
	}
}

func TestInWorkingHours(t *testing.T) {
	s := baseSettings()

	t.Run("within the window on a working day", func(t *testing.T) {
		now := time.Date(2026, 1, 13, 14, 0, 0, 0, time.UTC) // Tuesday, 9am Eastern
		assert.True(t, InWorkingHours(s, now))
	})

	t.Run("before the window opens", func(t *testing.T) {
		now := time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC) // 5am Eastern
		assert.False(t, InWorkingHours(s, now))
	})

	t.Run("after the window closes", func(t *testing.T) {
		now := time.Date(2026, 1, 13, 23, 0, 0, 0, time.UTC) // 6pm Eastern
		assert.False(t, InWorkingHours(s, now))
	})

	t.Run("on a non-working day", func(t *testing.T) {
		now := time.Date(2026, 1, 17, 14, 0, 0, 0, time.UTC) // Saturday
		assert.False(t, InWorkingHours(s, now))
	})

	t.Run("falls back to UTC for an unknown timezone", func(t *testing.T) {
		s2 := baseSettings()
		s2.Timezone = "Not/A_Zone"
		now := time.Date(2026, 1, 13, 12, 0, 0, 0, time.UTC)
		assert.True(t, InWorkingHours(s2, now))
	})
}

func TestCanSendInvitation(t *testing.T) {
	workingNow := time.Date(2026, 1, 13, 14, 0, 0, 0, time.UTC)

	t.Run("disabled settings never allow a send", func(t *testing.T) {
		s := baseSettings()
		s.Enabled = false
		assert.False(t, CanSendInvitation(s, workingNow))
	})

	t.Run("outside working hours never allows a send", func(t *testing.T) {
		s := baseSettings()
		offHours := time.Date(2026, 1, 13, 23, 0, 0, 0, time.UTC)
		assert.False(t, CanSendInvitation(s, offHours))
	})

	t.Run("allows a send when under quota", func(t *testing.T) {
		s := baseSettings()
		s.InvitationsSentToday = 5
		assert.True(t, CanSendInvitation(s, workingNow))
	})

	t.Run("blocks a send once quota is exhausted", func(t *testing.T) {
		s := baseSettings()
		s.InvitationsSentToday = 20
		assert.False(t, CanSendInvitation(s, workingNow))
	})

	t.Run("clamps an over-cap daily limit down to MaxDailyLimit", func(t *testing.T) {
		s := baseSettings()
		s.DailyLimit = model.MaxDailyLimit + 500
		s.InvitationsSentToday = model.MaxDailyLimit
		assert.False(t, CanSendInvitation(s, workingNow))
	})

	t.Run("blocks a second send before the jittered min delay has elapsed", func(t *testing.T) {
		s := baseSettings()
		s.MinDelaySeconds, s.MaxDelaySeconds = 60, 300
		last := workingNow.Add(-30 * time.Second)
		s.LastInvitationAt = &last
		assert.False(t, CanSendInvitation(s, workingNow))
	})

	t.Run("allows a send once the min delay has elapsed", func(t *testing.T) {
		s := baseSettings()
		s.MinDelaySeconds, s.MaxDelaySeconds = 60, 60
		last := workingNow.Add(-61 * time.Second)
		s.LastInvitationAt = &last
		assert.True(t, CanSendInvitation(s, workingNow))
	})

	t.Run("allows a send with no prior invitation at all", func(t *testing.T) {
		s := baseSettings()
		s.LastInvitationAt = nil
		assert.True(t, CanSendInvitation(s, workingNow))
	})
}

func TestMinDelayElapsed(t *testing.T) {
	t.Run("true when there is no prior send", func(t *testing.T) {
		s := baseSettings()
		assert.True(t, MinDelayElapsed(s, time.Now().UTC()))
	})

	t.Run("false when elapsed time is below the drawn delay", func(t *testing.T) {
		s := baseSettings()
		s.MinDelaySeconds, s.MaxDelaySeconds = 120, 120
		now := time.Date(2026, 1, 13, 14, 0, 0, 0, time.UTC)
		last := now.Add(-10 * time.Second)
		s.LastInvitationAt = &last
		assert.False(t, MinDelayElapsed(s, now))
	})

	t.Run("true once elapsed time reaches the drawn delay", func(t *testing.T) {
		s := baseSettings()
		s.MinDelaySeconds, s.MaxDelaySeconds = 120, 120
		now := time.Date(2026, 1, 13, 14, 0, 0, 0, time.UTC)
		last := now.Add(-120 * time.Second)
		s.LastInvitationAt = &last
		assert.True(t, MinDelayElapsed(s, now))
	})
}

func TestNeedsCounterReset(t *testing.T) {
	t.Run("true when last reset was a prior UTC day", func(t *testing.T) {
		s := baseSettings()
		s.LastResetDate = time.Date(2026, 1, 12, 23, 0, 0, 0, time.UTC)
		now := time.Date(2026, 1, 13, 1, 0, 0, 0, time.UTC)
		assert.True(t, NeedsCounterReset(s, now))
	})

	t.Run("false for the same UTC calendar day", func(t *testing.T) {
		s := baseSettings()
		s.LastResetDate = time.Date(2026, 1, 13, 1, 0, 0, 0, time.UTC)
		now := time.Date(2026, 1, 13, 23, 0, 0, 0, time.UTC)
		assert.False(t, NeedsCounterReset(s, now))
	})
}

func TestNextSendDelay(t *testing.T) {
	t.Run("returns the fixed minimum when max does not exceed min", func(t *testing.T) {
		s := baseSettings()
		s.MinDelaySeconds = 60
		s.MaxDelaySeconds = 60
		assert.Equal(t, 60*time.Second, NextSendDelay(s))
	})

	t.Run("stays within the configured bounds", func(t *testing.T) {
		s := baseSettings()
		s.MinDelaySeconds = 30
		s.MaxDelaySeconds = 90
		for i := 0; i < 50; i++ {
			d := NextSendDelay(s)
			assert.GreaterOrEqual(t, d, 30*time.Second)
			assert.LessOrEqual(t, d, 90*time.Second)
		}
	})
}
