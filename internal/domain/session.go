package domain

import "time"

type Session struct {
	ID         string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Preview    string    `json:"preview,omitempty"`
}

// Turn es un intercambio pregunta/respuesta retenido en el estado de conversación.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source,omitempty"`
}

// Passage es un fragmento de conocimiento recuperado por similitud.
type Passage struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Distance float64 `json:"distance"`
}
