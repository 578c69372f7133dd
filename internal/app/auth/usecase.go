package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rescuesim/internal/app/ports"
)

// bcrypt ignores input past 72 bytes; longer passwords are refused.
const maxPasswordBytes = 72

var (
	ErrInvalidRequest     = errors.New("invalid auth request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
)

type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterUseCase struct {
	Users     ports.UserRepository
	Cost      int
	Now       func() time.Time
	NewUserID func() string
}

type VerifyUseCase struct {
	Users ports.UserRepository
}

// NormalizeEmail lower-cases and trims the address and rejects anything that
// is not a bare addr-spec.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidRequest
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidRequest
	}
	return email, nil
}

func (u RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (Identity, error) {
	if u.Users == nil {
		return Identity{}, ErrInvalidRequest
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return Identity{}, err
	}
	if req.Password == "" || len(req.Password) > maxPasswordBytes {
		return Identity{}, ErrInvalidRequest
	}

	cost := u.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return Identity{}, err
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	newID := u.NewUserID
	if newID == nil {
		newID = uuid.NewString
	}
	now := nowFn().UTC()
	user := ports.UserRecord{
		UserID:       newID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Users.Create(ctx, user); err != nil {
		return Identity{}, err
	}
	return Identity{UserID: user.UserID, Email: user.Email}, nil
}

// Execute checks the pair and returns the stored identity. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (u VerifyUseCase) Execute(ctx context.Context, req VerifyRequest) (Identity, error) {
	if u.Users == nil {
		return Identity{}, ErrInvalidRequest
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return Identity{}, err
	}
	if req.Password == "" {
		return Identity{}, ErrInvalidRequest
	}

	user, err := u.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(req.Password))
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{UserID: user.UserID, Email: user.Email}, nil
}

var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("rescuesim-absent-user"), bcrypt.DefaultCost)
	if err != nil {
		return nil
	}
	return h
})
