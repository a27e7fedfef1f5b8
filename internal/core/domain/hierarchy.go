package domain

import "time"

// ProcessType is the root level of the classification tree.
type ProcessType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GeneralProcess belongs to exactly one ProcessType.
type GeneralProcess struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Order       int       `json:"order"`
	Active      bool      `json:"active"`
	TypeID      string    `json:"type_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InternalProcess belongs to exactly one GeneralProcess.
type InternalProcess struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Order       int       `json:"order"`
	Active      bool      `json:"active"`
	GeneralID   string    `json:"general_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GeneralProcessStats is the per-branch aggregate served on the admin dashboard.
type GeneralProcessStats struct {
	GeneralID     string `json:"general_id"`
	GeneralName   string `json:"general_name"`
	DocumentCount int64  `json:"document_count"`
	TotalBytes    int64  `json:"total_bytes"`
	Downloads     int64  `json:"downloads"`
}
