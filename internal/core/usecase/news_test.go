package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/intradocs/intradocs/internal/core/domain"
)

type fakeNewsRepository struct {
	items map[string]*domain.News
}

func newFakeNewsRepository() *fakeNewsRepository {
	return &fakeNewsRepository{items: map[string]*domain.News{}}
}

func (r *fakeNewsRepository) Create(_ context.Context, n *domain.News) error {
	copied := *n
	r.items[n.ID] = &copied
	return nil
}

func (r *fakeNewsRepository) GetByID(_ context.Context, id string) (*domain.News, error) {
	n, ok := r.items[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get news", fmt.Errorf("id %s", id))
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNewsRepository) List(_ context.Context, activeOnly bool) ([]domain.News, error) {
	var out []domain.News
	for _, n := range r.items {
		if activeOnly && !n.Active {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *fakeNewsRepository) Update(_ context.Context, n *domain.News) error {
	if _, ok := r.items[n.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update news", fmt.Errorf("id %s", n.ID))
	}
	copied := *n
	r.items[n.ID] = &copied
	return nil
}

func (r *fakeNewsRepository) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func newNewsTestCase() (*NewsUseCase, *fakeNewsRepository, *fakeDocumentRepository, *fakeCache) {
	repo := newFakeNewsRepository()
	docs := newFakeDocumentRepository()
	cache := &fakeCache{}
	uc := NewNewsUseCase(repo, docs, cache, testLogger())
	uc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return uc, repo, docs, cache
}

func TestCreateNewsDefaultsPublishedAtAndEvictsSlider(t *testing.T) {
	uc, repo, _, cache := newNewsTestCase()

	created, err := uc.Create(context.Background(), domain.News{Title: "New portal release", Active: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.PublishedAt.IsZero() {
		t.Fatal("published_at should default to now")
	}
	if _, ok := repo.items[created.ID]; !ok {
		t.Fatal("news row not persisted")
	}
	if !cache.forgot(keyNewsSlider) {
		t.Fatalf("slider cache not evicted, forgotten: %v", cache.forgotten)
	}
}

func TestCreateNewsRejectsDocumentAndURLTogether(t *testing.T) {
	uc, _, docs, _ := newNewsTestCase()
	docs.docs["d1"] = &domain.Document{ID: "d1"}

	_, err := uc.Create(context.Background(), domain.News{
		Title:       "Release notes",
		DocumentID:  "d1",
		ExternalURL: "https://example.test/notes",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateNewsRejectsMissingLinkedDocument(t *testing.T) {
	uc, _, _, _ := newNewsTestCase()

	_, err := uc.Create(context.Background(), domain.News{Title: "Broken link", DocumentID: "absent"})
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewsCachesActiveListingOnly(t *testing.T) {
	uc, _, _, cache := newNewsTestCase()

	if _, err := uc.List(context.Background(), true); err != nil {
		t.Fatalf("List(active) error = %v", err)
	}
	if len(cache.remembered) != 1 || cache.remembered[0] != keyNewsSlider {
		t.Fatalf("active listing should read through the cache, got %v", cache.remembered)
	}
	if _, err := uc.List(context.Background(), false); err != nil {
		t.Fatalf("List(all) error = %v", err)
	}
	if len(cache.remembered) != 1 {
		t.Fatalf("admin listing must bypass the cache, got %v", cache.remembered)
	}
}
