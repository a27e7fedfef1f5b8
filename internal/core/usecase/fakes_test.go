package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/intradocs/intradocs/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBlobStorage records writes in memory and every operation performed.
type fakeBlobStorage struct {
	files map[string][]byte
	ops   []string

	saveErr error
	urlErr  error
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{files: map[string][]byte{}}
}

func (s *fakeBlobStorage) Save(_ context.Context, key string, data io.Reader) error {
	s.ops = append(s.ops, "save:"+key)
	if s.saveErr != nil {
		return s.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.files[key] = b
	return nil
}

func (s *fakeBlobStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("open %s: not found", key)
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

func (s *fakeBlobStorage) Exists(_ context.Context, key string) (bool, error) {
	s.ops = append(s.ops, "exists:"+key)
	_, ok := s.files[key]
	return ok, nil
}

func (s *fakeBlobStorage) Delete(_ context.Context, key string) (bool, error) {
	s.ops = append(s.ops, "delete:"+key)
	if _, ok := s.files[key]; !ok {
		return false, nil
	}
	delete(s.files, key)
	return true, nil
}

func (s *fakeBlobStorage) Size(_ context.Context, key string) (int64, error) {
	b, ok := s.files[key]
	if !ok {
		return 0, fmt.Errorf("size %s: not found", key)
	}
	return int64(len(b)), nil
}

func (s *fakeBlobStorage) URL(_ context.Context, key string) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return "https://files.example.test/" + key, nil
}

// fakeCache records every key touched; Remember always runs the producer.
type fakeCache struct {
	remembered []string
	forgotten  []string
}

func (c *fakeCache) Remember(ctx context.Context, key string, _ time.Duration, producer func(context.Context) (any, error)) (any, error) {
	c.remembered = append(c.remembered, key)
	return producer(ctx)
}

func (c *fakeCache) Forget(_ context.Context, key string) error {
	c.forgotten = append(c.forgotten, key)
	return nil
}

func (c *fakeCache) forgot(key string) bool {
	for _, k := range c.forgotten {
		if k == key {
			return true
		}
	}
	return false
}

// fakeDocumentRepository is an in-memory DocumentRepository with per-method
// error overrides and counts for the conflict checks.
type fakeDocumentRepository struct {
	docs map[string]*domain.Document

	createErr error
	updateErr error

	countByGeneral  map[string]int64
	countByInternal map[string]int64
}

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{
		docs:            map[string]*domain.Document{},
		countByGeneral:  map[string]int64{},
		countByInternal: map[string]int64{},
	}
}

func (r *fakeDocumentRepository) Create(_ context.Context, doc *domain.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepository) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", id))
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocumentRepository) Update(_ context.Context, doc *domain.Document) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.docs[doc.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update document", fmt.Errorf("id %s", doc.ID))
	}
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepository) Search(_ context.Context, _ domain.DocumentFilter, _ domain.SortOrder, page domain.PageRequest) (*domain.DocumentPage, error) {
	page = page.Normalize()
	items := make([]domain.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		items = append(items, *doc)
	}
	return &domain.DocumentPage{
		Items:    items,
		Total:    int64(len(items)),
		Page:     page.Page,
		PerPage:  page.PerPage,
		LastPage: 1,
	}, nil
}

func (r *fakeDocumentRepository) IncrementDownloadCount(_ context.Context, id string) error {
	doc, ok := r.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "increment download count", fmt.Errorf("id %s", id))
	}
	doc.DownloadCount++
	return nil
}

func (r *fakeDocumentRepository) CountByGeneralProcess(_ context.Context, generalID string) (int64, error) {
	return r.countByGeneral[generalID], nil
}

func (r *fakeDocumentRepository) CountByInternalProcess(_ context.Context, internalID string) (int64, error) {
	return r.countByInternal[internalID], nil
}

func (r *fakeDocumentRepository) StatsByGeneralProcess(context.Context) ([]domain.GeneralProcessStats, error) {
	return nil, nil
}

// fakeHierarchyRepository holds the tree in maps.
type fakeHierarchyRepository struct {
	types     map[string]*domain.ProcessType
	generals  map[string]*domain.GeneralProcess
	internals map[string]*domain.InternalProcess

	deletedGenerals []string
}

func newFakeHierarchyRepository() *fakeHierarchyRepository {
	return &fakeHierarchyRepository{
		types:     map[string]*domain.ProcessType{},
		generals:  map[string]*domain.GeneralProcess{},
		internals: map[string]*domain.InternalProcess{},
	}
}

func (r *fakeHierarchyRepository) CreateType(_ context.Context, t *domain.ProcessType) error {
	copied := *t
	r.types[t.ID] = &copied
	return nil
}

func (r *fakeHierarchyRepository) GetType(_ context.Context, id string) (*domain.ProcessType, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get process type", fmt.Errorf("id %s", id))
	}
	copied := *t
	return &copied, nil
}

func (r *fakeHierarchyRepository) ListTypes(_ context.Context, activeOnly bool) ([]domain.ProcessType, error) {
	var out []domain.ProcessType
	for _, t := range r.types {
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeHierarchyRepository) UpdateType(_ context.Context, t *domain.ProcessType) error {
	if _, ok := r.types[t.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update process type", fmt.Errorf("id %s", t.ID))
	}
	copied := *t
	r.types[t.ID] = &copied
	return nil
}

func (r *fakeHierarchyRepository) DeleteType(_ context.Context, id string) error {
	delete(r.types, id)
	return nil
}

func (r *fakeHierarchyRepository) CreateGeneral(_ context.Context, g *domain.GeneralProcess) error {
	copied := *g
	r.generals[g.ID] = &copied
	return nil
}

func (r *fakeHierarchyRepository) GetGeneral(_ context.Context, id string) (*domain.GeneralProcess, error) {
	g, ok := r.generals[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get general process", fmt.Errorf("id %s", id))
	}
	copied := *g
	return &copied, nil
}

func (r *fakeHierarchyRepository) ListGeneralsByType(_ context.Context, typeID string, activeOnly bool) ([]domain.GeneralProcess, error) {
	var out []domain.GeneralProcess
	for _, g := range r.generals {
		if g.TypeID != typeID {
			continue
		}
		if activeOnly && !g.Active {
			continue
		}
		out = append(out, *g)
	}
	return out, nil
}

func (r *fakeHierarchyRepository) UpdateGeneral(_ context.Context, g *domain.GeneralProcess) error {
	if _, ok := r.generals[g.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update general process", fmt.Errorf("id %s", g.ID))
	}
	copied := *g
	r.generals[g.ID] = &copied
	return nil
}

func (r *fakeHierarchyRepository) DeleteGeneral(_ context.Context, id string) error {
	r.deletedGenerals = append(r.deletedGenerals, id)
	delete(r.generals, id)
	return nil
}

func (r *fakeHierarchyRepository) CreateInternal(_ context.Context, in *domain.InternalProcess) error {
	copied := *in
	r.internals[in.ID] = &copied
	return nil
}

func (r *fakeHierarchyRepository) GetInternal(_ context.Context, id string) (*domain.InternalProcess, error) {
	in, ok := r.internals[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get internal process", fmt.Errorf("id %s", id))
	}
	copied := *in
	return &copied, nil
}

func (r *fakeHierarchyRepository) ListInternalsByGeneral(_ context.Context, generalID string, activeOnly bool) ([]domain.InternalProcess, error) {
	var out []domain.InternalProcess
	for _, in := range r.internals {
		if in.GeneralID != generalID {
			continue
		}
		if activeOnly && !in.Active {
			continue
		}
		out = append(out, *in)
	}
	return out, nil
}

func (r *fakeHierarchyRepository) UpdateInternal(_ context.Context, in *domain.InternalProcess) error {
	if _, ok := r.internals[in.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update internal process", fmt.Errorf("id %s", in.ID))
	}
	copied := *in
	r.internals[in.ID] = &copied
	return nil
}

func (r *fakeHierarchyRepository) DeleteInternal(_ context.Context, id string) error {
	delete(r.internals, id)
	return nil
}

func (r *fakeHierarchyRepository) CountGenerals(_ context.Context, typeID string) (int64, error) {
	var n int64
	for _, g := range r.generals {
		if g.TypeID == typeID {
			n++
		}
	}
	return n, nil
}

func (r *fakeHierarchyRepository) CountActiveInternals(_ context.Context, generalID string) (int64, error) {
	var n int64
	for _, in := range r.internals {
		if in.GeneralID == generalID && in.Active {
			n++
		}
	}
	return n, nil
}
