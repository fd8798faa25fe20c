package entities

// Service is a bookable offering. DurationMinutes is informational only: the
// slot grid is fixed at 30 minutes regardless of service duration.
type Service struct {
	ID              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	DurationMinutes int    `json:"durationMinutes" db:"duration_minutes"`
}
