package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Event is a global calendar entry visible to every signed-in user.
type Event struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	EventDate   time.Time  `json:"event_date" db:"event_date"`
	CreatedBy   null.Int64 `json:"created_by" db:"created_by"`
}
