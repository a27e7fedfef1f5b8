package ports

import (
	"context"
	"io"
	"time"

	"github.com/intradocs/intradocs/internal/core/domain"
)

// DocumentRepository persists document metadata and composes filtered queries.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter domain.DocumentFilter, sort domain.SortOrder, page domain.PageRequest) (*domain.DocumentPage, error)
	IncrementDownloadCount(ctx context.Context, id string) error
	CountByGeneralProcess(ctx context.Context, generalID string) (int64, error)
	CountByInternalProcess(ctx context.Context, internalID string) (int64, error)
	StatsByGeneralProcess(ctx context.Context) ([]domain.GeneralProcessStats, error)
}

// HierarchyRepository persists the three-level classification tree.
type HierarchyRepository interface {
	CreateType(ctx context.Context, t *domain.ProcessType) error
	GetType(ctx context.Context, id string) (*domain.ProcessType, error)
	ListTypes(ctx context.Context, activeOnly bool) ([]domain.ProcessType, error)
	UpdateType(ctx context.Context, t *domain.ProcessType) error
	DeleteType(ctx context.Context, id string) error

	CreateGeneral(ctx context.Context, g *domain.GeneralProcess) error
	GetGeneral(ctx context.Context, id string) (*domain.GeneralProcess, error)
	ListGeneralsByType(ctx context.Context, typeID string, activeOnly bool) ([]domain.GeneralProcess, error)
	UpdateGeneral(ctx context.Context, g *domain.GeneralProcess) error
	DeleteGeneral(ctx context.Context, id string) error

	CreateInternal(ctx context.Context, in *domain.InternalProcess) error
	GetInternal(ctx context.Context, id string) (*domain.InternalProcess, error)
	ListInternalsByGeneral(ctx context.Context, generalID string, activeOnly bool) ([]domain.InternalProcess, error)
	UpdateInternal(ctx context.Context, in *domain.InternalProcess) error
	DeleteInternal(ctx context.Context, id string) error

	CountGenerals(ctx context.Context, typeID string) (int64, error)
	CountActiveInternals(ctx context.Context, generalID string) (int64, error)
}

// UserRepository reads users and roles for authentication and serves the
// user-administration listing.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	GetRole(ctx context.Context, roleID string) (*domain.Role, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
}

// NewsRepository persists announcements.
type NewsRepository interface {
	Create(ctx context.Context, n *domain.News) error
	GetByID(ctx context.Context, id string) (*domain.News, error)
	List(ctx context.Context, activeOnly bool) ([]domain.News, error)
	Update(ctx context.Context, n *domain.News) error
	Delete(ctx context.Context, id string) error
}

// BlobStorage stores uploaded files. Local-disk and object-store backends both
// satisfy it; Delete reports whether anything was removed.
type BlobStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	Size(ctx context.Context, key string) (int64, error)
	URL(ctx context.Context, key string) (string, error)
}

// Cache is a read-through TTL cache. Remember returns the cached value or
// runs producer and caches its result; Forget evicts one key.
type Cache interface {
	Remember(ctx context.Context, key string, ttl time.Duration, producer func(context.Context) (any, error)) (any, error)
	Forget(ctx context.Context, key string) error
}
