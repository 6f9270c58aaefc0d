package model

import (
	"time"
)

// Viewer is a dashboard access account. PINs are minted by the operator CLI
// and never leave the server through the API.
type Viewer struct {
	ID        string     `json:"id"`
	PIN       string     `json:"-"`
	Label     string     `json:"label"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
