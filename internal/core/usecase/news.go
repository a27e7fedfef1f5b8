package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

const keyNewsSlider = "news:active"

// NewsUseCase manages announcements. The active listing backs the front-page
// slider and is served read-through.
type NewsUseCase struct {
	repo  ports.NewsRepository
	docs  ports.DocumentRepository
	cache ports.Cache
	log   *slog.Logger

	now func() time.Time
}

func NewNewsUseCase(repo ports.NewsRepository, docs ports.DocumentRepository, cache ports.Cache, log *slog.Logger) *NewsUseCase {
	return &NewsUseCase{
		repo:  repo,
		docs:  docs,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

func (uc *NewsUseCase) List(ctx context.Context, activeOnly bool) ([]domain.News, error) {
	if !activeOnly {
		return uc.repo.List(ctx, false)
	}
	v, err := uc.cache.Remember(ctx, keyNewsSlider, ttlRecentDocs, func(ctx context.Context) (any, error) {
		return uc.repo.List(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.News), nil
}

func (uc *NewsUseCase) Create(ctx context.Context, n domain.News) (*domain.News, error) {
	if err := uc.validate(ctx, n); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	n.ID = uuid.NewString()
	if n.PublishedAt.IsZero() {
		n.PublishedAt = now
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := uc.repo.Create(ctx, &n); err != nil {
		return nil, err
	}
	evict(ctx, uc.cache, uc.log, keyNewsSlider)
	return &n, nil
}

func (uc *NewsUseCase) Update(ctx context.Context, n domain.News) (*domain.News, error) {
	existing, err := uc.repo.GetByID(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.validate(ctx, n); err != nil {
		return nil, err
	}
	existing.Title = n.Title
	existing.Subtitle = n.Subtitle
	existing.DocumentID = n.DocumentID
	existing.ExternalURL = n.ExternalURL
	existing.Active = n.Active
	if !n.PublishedAt.IsZero() {
		existing.PublishedAt = n.PublishedAt
	}
	existing.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	evict(ctx, uc.cache, uc.log, keyNewsSlider)
	return existing, nil
}

func (uc *NewsUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	evict(ctx, uc.cache, uc.log, keyNewsSlider)
	return nil
}

func (uc *NewsUseCase) validate(ctx context.Context, n domain.News) error {
	verr := domain.NewValidationError()
	if strings.TrimSpace(n.Title) == "" {
		verr.Add("title", "title is required")
	}
	if n.DocumentID != "" && n.ExternalURL != "" {
		verr.Add("document_id", "announcement may link a document or an external URL, not both")
	}
	if !verr.Empty() {
		return verr
	}
	if n.DocumentID != "" {
		if _, err := uc.docs.GetByID(ctx, n.DocumentID); err != nil {
			return err
		}
	}
	return nil
}
