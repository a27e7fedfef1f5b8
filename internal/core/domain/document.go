package domain

import "time"

type Confidentiality string

const (
	ConfidentialityPublic   Confidentiality = "public"
	ConfidentialityInternal Confidentiality = "internal"
)

func (c Confidentiality) Valid() bool {
	return c == ConfidentialityPublic || c == ConfidentialityInternal
}

type Document struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	StoredFilename   string          `json:"stored_filename"`
	OriginalFilename string          `json:"original_filename"`
	StoragePath      string          `json:"storage_path"`
	MimeType         string          `json:"mime_type"`
	SizeBytes        int64           `json:"size_bytes"`
	Extension        string          `json:"extension"`
	TypeID           string          `json:"type_id"`
	GeneralID        string          `json:"general_id"`
	InternalID       string          `json:"internal_id"`
	Confidentiality  Confidentiality `json:"confidentiality"`
	Tags             []string        `json:"tags,omitempty"`
	DownloadCount    int64           `json:"download_count"`
	UploaderID       string          `json:"uploader_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// DocumentInput is the caller-supplied part of a document create/update.
type DocumentInput struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	TypeID          string          `json:"type_id"`
	GeneralID       string          `json:"general_id"`
	InternalID      string          `json:"internal_id"`
	Confidentiality Confidentiality `json:"confidentiality"`
	Tags            []string        `json:"tags"`
}

// FileMetadata describes a blob written through the upload adapter.
type FileMetadata struct {
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	Path         string `json:"path"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
	Extension    string `json:"extension"`
}
