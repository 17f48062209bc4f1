package domain

import "time"

// Session vincula una cookie del navegador con un log de conversación.
// UserID solo está presente cuando el flujo externo de login lo asoció.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
