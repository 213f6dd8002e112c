package notifications

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotificationNotFound is returned when a notification id does not resolve.
var ErrNotificationNotFound = errors.New("notification not found")

// Notification is an in-app message for a user. Content is a rendered text
// snapshot taken when the triggering event happened; it is never re-derived
// from live data, so later edits cannot rewrite history.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
