package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

// HierarchyUseCase owns the classification tree: CRUD for all three levels,
// the nesting validator, and the cache invalidation that follows every
// mutation.
type HierarchyUseCase struct {
	repo  ports.HierarchyRepository
	docs  ports.DocumentRepository
	cache ports.Cache
	log   *slog.Logger

	now func() time.Time
}

func NewHierarchyUseCase(
	repo ports.HierarchyRepository,
	docs ports.DocumentRepository,
	cache ports.Cache,
	log *slog.Logger,
) *HierarchyUseCase {
	return &HierarchyUseCase{
		repo:  repo,
		docs:  docs,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// ValidateHierarchy confirms that the (type, general, internal) triple nests
// correctly. ErrNotFound when any id does not resolve,
// ErrInconsistentHierarchy when a parent reference does not match. Read-only.
func (uc *HierarchyUseCase) ValidateHierarchy(ctx context.Context, typeID, generalID, internalID string) error {
	typ, err := uc.repo.GetType(ctx, typeID)
	if err != nil {
		return fmt.Errorf("resolve process type: %w", err)
	}
	general, err := uc.repo.GetGeneral(ctx, generalID)
	if err != nil {
		return fmt.Errorf("resolve general process: %w", err)
	}
	internal, err := uc.repo.GetInternal(ctx, internalID)
	if err != nil {
		return fmt.Errorf("resolve internal process: %w", err)
	}

	if internal.GeneralID != general.ID {
		return domain.WrapError(domain.ErrInconsistentHierarchy, "validate hierarchy",
			fmt.Errorf("internal process %s belongs to general process %s, not %s", internal.ID, internal.GeneralID, general.ID))
	}
	if general.TypeID != typ.ID {
		return domain.WrapError(domain.ErrInconsistentHierarchy, "validate hierarchy",
			fmt.Errorf("general process %s belongs to process type %s, not %s", general.ID, general.TypeID, typ.ID))
	}
	return nil
}

func (uc *HierarchyUseCase) CreateType(ctx context.Context, t domain.ProcessType) (*domain.ProcessType, error) {
	verr := domain.NewValidationError()
	if strings.TrimSpace(t.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		verr.Add("title", "title is required")
	}
	if !verr.Empty() {
		return nil, verr
	}

	now := uc.now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := uc.repo.CreateType(ctx, &t); err != nil {
		return nil, err
	}
	evict(ctx, uc.cache, uc.log, typeKeys(t.ID)...)
	return &t, nil
}

func (uc *HierarchyUseCase) ListTypes(ctx context.Context, activeOnly bool) ([]domain.ProcessType, error) {
	// Only the active listing (the one the UI renders) is cached; admin
	// listings read through to the store.
	if !activeOnly {
		return uc.repo.ListTypes(ctx, false)
	}
	v, err := uc.cache.Remember(ctx, keyTypes, ttlHierarchy, func(ctx context.Context) (any, error) {
		return uc.repo.ListTypes(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.ProcessType), nil
}

func (uc *HierarchyUseCase) UpdateType(ctx context.Context, t domain.ProcessType) (*domain.ProcessType, error) {
	existing, err := uc.repo.GetType(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	existing.Name = t.Name
	existing.Title = t.Title
	existing.Description = t.Description
	existing.Icon = t.Icon
	existing.Active = t.Active
	existing.UpdatedAt = uc.now().UTC()
	if err := uc.repo.UpdateType(ctx, existing); err != nil {
		return nil, err
	}
	evict(ctx, uc.cache, uc.log, typeKeys(existing.ID)...)
	return existing, nil
}

// DeleteType removes a process type. Blocked while general processes still
// hang off it.
func (uc *HierarchyUseCase) DeleteType(ctx context.Context, id string) error {
	if _, err := uc.repo.GetType(ctx, id); err != nil {
		return err
	}
	children, err := uc.repo.CountGenerals(ctx, id)
	if err != nil {
		return fmt.Errorf("count general processes: %w", err)
	}
	if children > 0 {
		return domain.WrapError(domain.ErrConflict, "delete process type",
			fmt.Errorf("%d general processes still attached", children))
	}
	if err := uc.repo.DeleteType(ctx, id); err != nil {
		return err
	}
	evict(ctx, uc.cache, uc.log, typeKeys(id)...)
	return nil
}

func (uc *HierarchyUseCase) CreateGeneral(ctx context.Context, g domain.GeneralProcess) (*domain.GeneralProcess, error) {
	verr := domain.NewValidationError()
	if strings.TrimSpace(g.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(g.TypeID) == "" {
		verr.Add("type_id", "type_id is required")
	}
	if !verr.Empty() {
		return nil, verr
	}
	if _, err := uc.repo.GetType(ctx, g.TypeID); err != nil {
		return nil, fmt.Errorf("resolve parent type: %w", err)
	}

	now := uc.now().UTC()
	g.ID = uuid.NewString()
	g.CreatedAt = now
	g.UpdatedAt = now
	if err := uc.repo.CreateGeneral(ctx, &g); err != nil {
		return nil, err
	}
	evict(ctx, uc.cache, uc.log, generalKeys(g.TypeID, g.ID)...)
	return &g, nil
}

func (uc *HierarchyUseCase) ListGeneralsByType(ctx context.Context, typeID string, activeOnly bool) ([]domain.GeneralProcess, error) {
	if !activeOnly {
		return uc.repo.ListGeneralsByType(ctx, typeID, false)
	}
	v, err := uc.cache.Remember(ctx, keyGeneralsOfType(typeID), ttlHierarchy, func(ctx context.Context) (any, error) {
		return uc.repo.ListGeneralsByType(ctx, typeID, true)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.GeneralProcess), nil
}

func (uc *HierarchyUseCase) UpdateGeneral(ctx context.Context, g domain.GeneralProcess) (*domain.GeneralProcess, error) {
	existing, err := uc.repo.GetGeneral(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	if g.TypeID != "" && g.TypeID != existing.TypeID {
		if _, err := uc.repo.GetType(ctx, g.TypeID); err != nil {
			return nil, fmt.Errorf("resolve parent type: %w", err)
		}
		// Evict the old parent's branch too: the node is leaving it.
		evict(ctx, uc.cache, uc.log, keyGeneralsOfType(existing.TypeID))
		existing.TypeID = g.TypeID
	}
	existing.Name = g.Name
	existing.Description = g.Description
	existing.Icon = g.Icon
	existing.Order = g.Order
	existing.Active = g.Active
	existing.UpdatedAt = uc.now().UTC()
	if err := uc.repo.UpdateGeneral(ctx, existing); err != nil {
		return nil, err
	}
	evict(ctx, uc.cache, uc.log, generalKeys(existing.TypeID, existing.ID)...)
	return existing, nil
}

// DeleteGeneral removes a general process. Blocked while active internal
// processes or documents still reference it; the check happens before any
// write, so a conflict leaves every row untouched.
func (uc *HierarchyUseCase) DeleteGeneral(ctx context.Context, id string) error {
	existing, err := uc.repo.GetGeneral(ctx, id)
	if err != nil {
		return err
	}
	children, err := uc.repo.CountActiveInternals(ctx, id)
	if err != nil {
		return fmt.Errorf("count internal processes: %w", err)
	}
	if children > 0 {
		return domain.WrapError(domain.ErrConflict, "delete general process",
			fmt.Errorf("%d active internal processes still attached", children))
	}
	docs, err := uc.docs.CountByGeneralProcess(ctx, id)
	if err != nil {
		return fmt.Errorf("count referencing documents: %w", err)
	}
	if docs > 0 {
		return domain.WrapError(domain.ErrConflict, "delete general process",
			fmt.Errorf("%d documents still classified under it", docs))
	}
	if err := uc.repo.DeleteGeneral(ctx, id); err != nil {
		return err
	}
	evict(ctx, uc.cache, uc.log, generalKeys(existing.TypeID, id)...)
	return nil
}

func (uc *HierarchyUseCase) CreateInternal(ctx context.Context, in domain.InternalProcess) (*domain.InternalProcess, error) {
	verr := domain.NewValidationError()
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(in.GeneralID) == "" {
		verr.Add("general_id", "general_id is required")
	}
	if !verr.Empty() {
		return nil, verr
	}
	if _, err := uc.repo.GetGeneral(ctx, in.GeneralID); err != nil {
		return nil, fmt.Errorf("resolve parent general process: %w", err)
	}

	now := uc.now().UTC()
	in.ID = uuid.NewString()
	in.CreatedAt = now
	in.UpdatedAt = now
	if err := uc.repo.CreateInternal(ctx, &in); err != nil {
		return nil, err
	}
	evict(ctx, uc.cache, uc.log, internalKeys(in.GeneralID, in.ID)...)
	return &in, nil
}

func (uc *HierarchyUseCase) ListInternalsByGeneral(ctx context.Context, generalID string, activeOnly bool) ([]domain.InternalProcess, error) {
	if !activeOnly {
		return uc.repo.ListInternalsByGeneral(ctx, generalID, false)
	}
	v, err := uc.cache.Remember(ctx, keyInternalsOfGeneral(generalID), ttlHierarchy, func(ctx context.Context) (any, error) {
		return uc.repo.ListInternalsByGeneral(ctx, generalID, true)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.InternalProcess), nil
}

func (uc *HierarchyUseCase) UpdateInternal(ctx context.Context, in domain.InternalProcess) (*domain.InternalProcess, error) {
	existing, err := uc.repo.GetInternal(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.GeneralID != "" && in.GeneralID != existing.GeneralID {
		if _, err := uc.repo.GetGeneral(ctx, in.GeneralID); err != nil {
			return nil, fmt.Errorf("resolve parent general process: %w", err)
		}
		evict(ctx, uc.cache, uc.log, internalKeys(existing.GeneralID, existing.ID)...)
		existing.GeneralID = in.GeneralID
	}
	existing.Name = in.Name
	existing.Description = in.Description
	existing.Icon = in.Icon
	existing.Order = in.Order
	existing.Active = in.Active
	existing.UpdatedAt = uc.now().UTC()
	if err := uc.repo.UpdateInternal(ctx, existing); err != nil {
		return nil, err
	}
	evict(ctx, uc.cache, uc.log, internalKeys(existing.GeneralID, existing.ID)...)
	return existing, nil
}

// DeleteInternal removes an internal process. Blocked while documents still
// reference it.
func (uc *HierarchyUseCase) DeleteInternal(ctx context.Context, id string) error {
	existing, err := uc.repo.GetInternal(ctx, id)
	if err != nil {
		return err
	}
	docs, err := uc.docs.CountByInternalProcess(ctx, id)
	if err != nil {
		return fmt.Errorf("count referencing documents: %w", err)
	}
	if docs > 0 {
		return domain.WrapError(domain.ErrConflict, "delete internal process",
			fmt.Errorf("%d documents still classified under it", docs))
	}
	if err := uc.repo.DeleteInternal(ctx, id); err != nil {
		return err
	}
	evict(ctx, uc.cache, uc.log, internalKeys(existing.GeneralID, id)...)
	return nil
}
