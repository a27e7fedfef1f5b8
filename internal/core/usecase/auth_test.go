package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/intradocs/intradocs/internal/core/domain"
)

type fakeUserRepository struct {
	users map[string]*domain.User
	roles map[string]*domain.Role

	lastLogin map[string]time.Time
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:     map[string]*domain.User{},
		roles:     map[string]*domain.Role{},
		lastLogin: map[string]time.Time{},
	}
}

func (r *fakeUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get user", errors.New("absent"))
}

func (r *fakeUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", errors.New("absent"))
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepository) List(context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepository) SetActive(_ context.Context, id string, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "set user active", errors.New("absent"))
	}
	u.Active = active
	return nil
}

func (r *fakeUserRepository) GetRole(_ context.Context, roleID string) (*domain.Role, error) {
	role, ok := r.roles[roleID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get role", errors.New("absent"))
	}
	copied := *role
	return &copied, nil
}

func (r *fakeUserRepository) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.lastLogin[id] = at
	return nil
}

func newAuthTestCase(t *testing.T) (*AuthUseCase, *fakeUserRepository) {
	t.Helper()
	repo := newFakeUserRepository()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	repo.users["u1"] = &domain.User{
		ID: "u1", Username: "editor", DisplayName: "Editor",
		PasswordHash: string(hash), RoleID: "r1", Active: true,
	}
	repo.roles["r1"] = &domain.Role{
		ID: "r1", Name: "editor",
		Permissions: []string{domain.PermManageContent},
	}

	return NewAuthUseCase(repo, "test-secret", time.Hour, testLogger()), repo
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	uc, repo := newAuthTestCase(t)

	user, token, err := uc.Login(context.Background(), "editor", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("user id = %q", user.ID)
	}
	if _, ok := repo.lastLogin["u1"]; !ok {
		t.Fatal("last login not touched")
	}

	identity, err := uc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if identity.UserID != "u1" || identity.Username != "editor" || identity.RoleName != "editor" {
		t.Fatalf("identity = %+v", identity)
	}
	if !identity.Has(domain.PermManageContent) {
		t.Fatal("permission missing from identity")
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	uc, repo := newAuthTestCase(t)

	cases := []struct {
		name     string
		setup    func()
		username string
		password string
	}{
		{"unknown user", func() {}, "nobody", "whatever"},
		{"wrong password", func() {}, "editor", "wrong"},
		{"disabled account", func() { repo.users["u1"].Active = false }, "editor", "correct horse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.setup()
			_, _, err := uc.Login(context.Background(), tc.username, tc.password)
			if !domain.IsKind(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	uc, _ := newAuthTestCase(t)

	_, _, err := uc.Login(context.Background(), "", "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	fields := domain.FieldErrors(err)
	if len(fields) != 2 {
		t.Fatalf("fields = %v", fields)
	}
}

func TestSetUserActiveDisablesAccount(t *testing.T) {
	uc, repo := newAuthTestCase(t)

	user, err := uc.SetUserActive(context.Background(), "u1", false)
	if err != nil {
		t.Fatalf("SetUserActive() error = %v", err)
	}
	if user.Active {
		t.Fatal("returned user should be inactive")
	}
	if repo.users["u1"].Active {
		t.Fatal("deactivation not persisted")
	}

	// The disabled account can no longer log in.
	_, _, err = uc.Login(context.Background(), "editor", "correct horse")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := uc.SetUserActive(context.Background(), "absent", true); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	uc, _ := newAuthTestCase(t)

	_, token, err := uc.Login(context.Background(), "editor", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	other := NewAuthUseCase(newFakeUserRepository(), "different-secret", time.Hour, testLogger())
	if _, err := other.Verify(context.Background(), token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong secret, got %v", err)
	}

	if _, err := uc.Verify(context.Background(), token+"x"); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for tampered token, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	uc, _ := newAuthTestCase(t)
	uc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	_, token, err := uc.Login(context.Background(), "editor", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := uc.Verify(context.Background(), token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}
