package users

import (
	"time"

	"github.com/google/uuid"
)

// User is read-only from the scheduling core's perspective; account
// management lives in a separate service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Provider  bool      `json:"provider"`
	Avatar    *Avatar   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Avatar is the stored file reference for a user's picture. The file bytes
// themselves live in external storage; only the path and public URL are kept.
type Avatar struct {
	ID   uuid.UUID `json:"id"`
	Path string    `json:"path"`
	URL  string    `json:"url"`
}
