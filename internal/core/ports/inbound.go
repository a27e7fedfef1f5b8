package ports

import (
	"context"
	"io"

	"github.com/intradocs/intradocs/internal/core/domain"
)

// DocumentService is the inbound contract for document CRUD, search and
// download accounting.
type DocumentService interface {
	List(ctx context.Context, filter domain.DocumentFilter, sort domain.SortOrder, page domain.PageRequest) (*domain.DocumentPage, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Create(ctx context.Context, input domain.DocumentInput, file FileUpload, uploaderID string) (*domain.Document, error)
	Update(ctx context.Context, id string, input domain.DocumentInput, file *FileUpload) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (*domain.Document, string, error)
}

// FileUpload is the transport-level view of an uploaded file.
type FileUpload struct {
	Filename string
	MimeType string
	Size     int64
	Body     io.Reader
}

// HierarchyService is the inbound contract for classification-tree CRUD and
// the nesting validator.
type HierarchyService interface {
	ValidateHierarchy(ctx context.Context, typeID, generalID, internalID string) error

	CreateType(ctx context.Context, t domain.ProcessType) (*domain.ProcessType, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]domain.ProcessType, error)
	UpdateType(ctx context.Context, t domain.ProcessType) (*domain.ProcessType, error)
	DeleteType(ctx context.Context, id string) error

	CreateGeneral(ctx context.Context, g domain.GeneralProcess) (*domain.GeneralProcess, error)
	ListGeneralsByType(ctx context.Context, typeID string, activeOnly bool) ([]domain.GeneralProcess, error)
	UpdateGeneral(ctx context.Context, g domain.GeneralProcess) (*domain.GeneralProcess, error)
	DeleteGeneral(ctx context.Context, id string) error

	CreateInternal(ctx context.Context, in domain.InternalProcess) (*domain.InternalProcess, error)
	ListInternalsByGeneral(ctx context.Context, generalID string, activeOnly bool) ([]domain.InternalProcess, error)
	UpdateInternal(ctx context.Context, in domain.InternalProcess) (*domain.InternalProcess, error)
	DeleteInternal(ctx context.Context, id string) error
}

// AuthService authenticates users, issues access tokens and carries the
// user-administration surface.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	Verify(ctx context.Context, token string) (*domain.Identity, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
	SetUserActive(ctx context.Context, id string, active bool) (*domain.User, error)
}

// NewsService manages announcements and the active slider listing.
type NewsService interface {
	List(ctx context.Context, activeOnly bool) ([]domain.News, error)
	Create(ctx context.Context, n domain.News) (*domain.News, error)
	Update(ctx context.Context, n domain.News) (*domain.News, error)
	Delete(ctx context.Context, id string) error
}

// ReportService serves the admin dashboard exports and aggregates.
type ReportService interface {
	ExportDocumentsXLSX(ctx context.Context, filter domain.DocumentFilter, sort domain.SortOrder) ([]byte, error)
	GeneralProcessStats(ctx context.Context) ([]domain.GeneralProcessStats, error)
}
