package domain

import "time"

// News is an announcement shown on the intranet slider. It may point at a
// stored document or an external URL, never both.
type News struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	DocumentID  string    `json:"document_id,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
