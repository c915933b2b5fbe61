package models

// ReminderPayload is carried by a queued appointment reminder. Date and Time
// identify the cell the reminder was scheduled for so that a reminder for a
// moved booking can be recognised as stale.
type ReminderPayload struct {
	BookingID    string `json:"booking_id"`
	UserID       string `json:"user_id"`
	ConsultantID string `json:"consultant_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	RemindBefore int    `json:"remind_before"`
}
