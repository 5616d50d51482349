package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a registered wallet holder, identified externally by the
// (document, phone) pair. Immutable after creation.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Document  string    `json:"document"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
