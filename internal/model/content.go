package model

import "time"

// ContentItem is a generic record for any registered content entity. Field
// values live in Data; the repository stores them as a JSONB column so the
// entity registry stays the single source of truth for field shapes.
type ContentItem struct {
	Entity    string         `json:"entity"`
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	Views     int64          `json:"views"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
