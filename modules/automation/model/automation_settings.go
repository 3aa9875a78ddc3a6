package model

import (
	"errors"
	"time"
)

// Working-day bitmask, Mon..Sun -> bits 1..64.
const (
	DayMonday    = 1 << 0
	DayTuesday   = 1 << 1
	DayWednesday = 1 << 2
	DayThursday  = 1 << 3
	DayFriday    = 1 << 4
	DaySaturday  = 1 << 5
	DaySunday    = 1 << 6

	AllWeekdays = DayMonday | DayTuesday | DayWednesday | DayThursday | DayFriday
	MaxDailyLimit = 40
)

// AutomationSettings is per-user configuration consumed by the automation
// gate (in_working_hours, can_send_invitation, next_send_delay).
type AutomationSettings struct {
	UserID               string
	Enabled              bool
	StartHour            int
	StartMinute          int
	EndHour              int
	EndMinute            int
	WorkingDays          int
	Timezone             string
	DailyLimit           int
	MinDelaySeconds      int
	MaxDelaySeconds      int
	MinLeadScore         int
	TargetStatuses       []string
	TargetCampaignID     *string
	InvitationsSentToday int
	LastInvitationAt     *time.Time
	LastResetDate        time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type AutomationSettingsDTO struct {
	Enabled              bool       `json:"enabled"`
	StartHour            int        `json:"start_hour"`
	StartMinute          int        `json:"start_minute"`
	EndHour              int        `json:"end_hour"`
	EndMinute            int        `json:"end_minute"`
	WorkingDays          int        `json:"working_days"`
	Timezone             string     `json:"timezone"`
	DailyLimit           int        `json:"daily_limit"`
	MinDelaySeconds      int        `json:"min_delay_seconds"`
	MaxDelaySeconds      int        `json:"max_delay_seconds"`
	MinLeadScore         int        `json:"min_lead_score"`
	TargetStatuses       []string   `json:"target_statuses"`
	TargetCampaignID     *string    `json:"target_campaign_id,omitempty"`
	InvitationsSentToday int        `json:"invitations_sent_today"`
	LastInvitationAt     *time.Time `json:"last_invitation_at,omitempty"`
	LastResetDate        time.Time  `json:"last_reset_date"`
}

func (s *AutomationSettings) ToDTO() *AutomationSettingsDTO {
	return &AutomationSettingsDTO{
		Enabled:              s.Enabled,
		StartHour:            s.StartHour,
		StartMinute:          s.StartMinute,
		EndHour:              s.EndHour,
		EndMinute:            s.EndMinute,
		WorkingDays:          s.WorkingDays,
		Timezone:             s.Timezone,
		DailyLimit:           s.DailyLimit,
		MinDelaySeconds:      s.MinDelaySeconds,
		MaxDelaySeconds:      s.MaxDelaySeconds,
		MinLeadScore:         s.MinLeadScore,
		TargetStatuses:       s.TargetStatuses,
		TargetCampaignID:     s.TargetCampaignID,
		InvitationsSentToday: s.InvitationsSentToday,
		LastInvitationAt:     s.LastInvitationAt,
		LastResetDate:        s.LastResetDate,
	}
}

// DefaultAutomationSettings mirrors the original's conservative out-of-the-box
// configuration: disabled, 9-to-5 on weekdays, a modest daily limit.
func DefaultAutomationSettings(userID string) *AutomationSettings {
	now := time.Now().UTC()
	return &AutomationSettings{
		UserID:          userID,
		Enabled:         false,
		StartHour:       9,
		EndHour:         17,
		WorkingDays:     AllWeekdays,
		Timezone:        "UTC",
		DailyLimit:      15,
		MinDelaySeconds: 30,
		MaxDelaySeconds: 120,
		MinLeadScore:    0,
		TargetStatuses:  []string{"new"},
		LastResetDate:   now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type UpdateAutomationSettingsRequest struct {
	Enabled          *bool     `json:"enabled,omitempty"`
	StartHour        *int      `json:"start_hour,omitempty"`
	StartMinute      *int      `json:"start_minute,omitempty"`
	EndHour          *int      `json:"end_hour,omitempty"`
	EndMinute        *int      `json:"end_minute,omitempty"`
	WorkingDays      *int      `json:"working_days,omitempty"`
	Timezone         *string   `json:"timezone,omitempty"`
	DailyLimit       *int      `json:"daily_limit,omitempty"`
	MinDelaySeconds  *int      `json:"min_delay_seconds,omitempty"`
	MaxDelaySeconds  *int      `json:"max_delay_seconds,omitempty"`
	MinLeadScore     *int      `json:"min_lead_score,omitempty"`
	TargetStatuses   []string  `json:"target_statuses,omitempty"`
	TargetCampaignID *string   `json:"target_campaign_id,omitempty"`
}

var (
	ErrAutomationSettingsNotFound = errors.New("automation settings not found")
	ErrInvalidTimezone            = errors.New("invalid IANA timezone")
	ErrInvalidDelayRange          = errors.New("min_delay_seconds must be <= max_delay_seconds")
	ErrDailyLimitExceedsCap       = errors.New("daily_limit exceeds the maximum of 40")
)

type ErrorCode string

const (
	CodeAutomationSettingsNotFound ErrorCode = "AUTOMATION_SETTINGS_NOT_FOUND"
	CodeInvalidTimezone            ErrorCode = "INVALID_TIMEZONE"
	CodeInvalidDelayRange          ErrorCode = "INVALID_DELAY_RANGE"
	CodeDailyLimitExceedsCap       ErrorCode = "DAILY_LIMIT_EXCEEDS_CAP"
	CodeInternalError              ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrAutomationSettingsNotFound):
		return CodeAutomationSettingsNotFound
	case errors.Is(err, ErrInvalidTimezone):
		return CodeInvalidTimezone
	case errors.Is(err, ErrInvalidDelayRange):
		return CodeInvalidDelayRange
	case errors.Is(err, ErrDailyLimitExceedsCap):
		return CodeDailyLimitExceedsCap
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrAutomationSettingsNotFound):
		return "Automation settings not found"
	case errors.Is(err, ErrInvalidTimezone):
		return "Invalid IANA timezone"
	case errors.Is(err, ErrInvalidDelayRange):
		return "min_delay_seconds must be <= max_delay_seconds"
	case errors.Is(err, ErrDailyLimitExceedsCap):
		return "daily_limit exceeds the maximum of 40"
	default:
		return "Internal server error"
	}
}
