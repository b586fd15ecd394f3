package domain

// Calendar actions accepted by POST /api/calendar
const (
	CalendarActionICS        = "generate_ics"
	CalendarActionGoogle     = "google_calendar"
	CalendarActionOutlook    = "outlook_calendar"
	CalendarActionSendInvite = "send_invite"
)

// ScheduleData describes a requested property viewing appointment
type ScheduleData struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email"`
	FlatID string `json:"flatId" binding:"required"`
	Date   string `json:"date"` // 2006-01-02
	Time   string `json:"time"` // 15:04
	Notes  string `json:"notes,omitempty"`
}

// CalendarRequest is the body of POST /api/calendar
type CalendarRequest struct {
	ScheduleData ScheduleData `json:"scheduleData" binding:"required"`
	Action       string       `json:"action" binding:"required"`
}
