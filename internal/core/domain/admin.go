package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminAccount is an operator identity used to resolve approval
// workflows. Credentials are argon2id hashes; sessions are JWTs.
type AdminAccount struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditLog records a single admin action against an entity, kept for
// operator accountability on approval decisions.
type AuditLog struct {
	ID         uuid.UUID `json:"id"`
	AdminID    uuid.UUID `json:"admin_id"`
	Action     string    `json:"action"`      // e.g. "seller.approve", "batch.reject"
	EntityType string    `json:"entity_type"` // seller, batch, withdrawal, user
	EntityID   string    `json:"entity_id"`
	CreatedAt  time.Time `json:"created_at"`
}
