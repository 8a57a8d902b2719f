package domain

import "time"

// TimestampLayout es el formato de hora mostrado en la interfaz.
const TimestampLayout = "03:04 PM"

// Message es un mensaje persistido por el backend.
type Message struct {
	ID        int64     `json:"-"`
	SessionID string    `json:"-"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}
