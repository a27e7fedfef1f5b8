package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
)

// AuthUseCase verifies credentials and issues HS256 access tokens. Login
// failures are uniform: a missing user and a wrong password are
// indistinguishable to the caller.
type AuthUseCase struct {
	users    ports.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      *slog.Logger

	now func() time.Time
}

func NewAuthUseCase(users ports.UserRepository, secret string, tokenTTL time.Duration, log *slog.Logger) *AuthUseCase {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &AuthUseCase{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
		now:      time.Now,
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		verr := domain.NewValidationError()
		if username == "" {
			verr.Add("username", "username is required")
		}
		if password == "" {
			verr.Add("password", "password is required")
		}
		return nil, "", verr
	}

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, "", domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("unknown user"))
		}
		return nil, "", err
	}
	if !user.Active {
		return nil, "", domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("account disabled"))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("bad credentials"))
	}

	role, err := uc.users.GetRole(ctx, user.RoleID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve role: %w", err)
	}

	now := uc.now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"name":  user.Username,
		"role":  role.Name,
		"perms": role.Permissions,
		"iat":   now.Unix(),
		"exp":   now.Add(uc.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	// Unconditional overwrite; a lost update between concurrent logins is
	// accepted.
	if err := uc.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		uc.log.Warn("last_login_update_failed", "user_id", user.ID, "error", err)
	}

	return user, token, nil
}

// ListUsers serves the user-administration screen. Password hashes never leave
// the domain type's JSON encoding, so the slice is returned as stored.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	return uc.users.List(ctx)
}

// SetUserActive toggles an account. Disabling takes effect on the next login;
// outstanding tokens stay valid until they expire.
func (uc *AuthUseCase) SetUserActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	if err := uc.users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return uc.users.GetByID(ctx, id)
}

// Verify parses and validates a bearer token and rebuilds the caller identity
// from its claims.
func (uc *AuthUseCase) Verify(_ context.Context, tokenString string) (*domain.Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return uc.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify token", fmt.Errorf("invalid token"))
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify token", fmt.Errorf("missing subject"))
	}
	name, _ := claims["name"].(string)
	roleName, _ := claims["role"].(string)

	var perms []string
	if raw, ok := claims["perms"].([]any); ok {
		for _, p := range raw {
			if s, ok := p.(string); ok {
				perms = append(perms, s)
			}
		}
	}

	return &domain.Identity{
		UserID:      sub,
		Username:    name,
		RoleName:    roleName,
		Permissions: perms,
	}, nil
}
