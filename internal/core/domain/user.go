package domain

import "time"

// Role classifies a user's marketplace participation.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// User is a marketplace participant, created on first contact from the
// chat front end and never deleted. ID is the external chat identity.
//
// WalletBalance is a cached derivation: at all times it must equal the
// sum of amounts of this user's transactions with status success. Only
// settlement mutates it.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	Role          Role      `json:"role"`
	WalletBalance int64     `json:"wallet_balance"` // paise
	IsBanned      bool      `json:"is_banned"`
	CreatedAt     time.Time `json:"created_at"`
}
