package devserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/warga-one/wargaone-go/internal/session"
)

var (
	// ErrUserExists indicates the phone number is already registered.
	ErrUserExists = errors.New("user exists")
	// ErrUserNotFound indicates no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidPIN indicates a failed credential check.
	ErrInvalidPIN = errors.New("invalid PIN")
)

// User is a registered account in the stub backend.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PINHash      []byte
	KYCStatus    string
	KYCLevel     int
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile projects the account into the wire shape the client persists.
func (u User) Profile() session.UserProfile {
	return session.UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		KYCStatus: u.KYCStatus,
		KYCLevel:  u.KYCLevel,
	}
}

// Repository persists stub accounts.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Update(ctx context.Context, user User) error
}

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an in-memory account store. The stub backend
// runs memory-only; nothing here outlives the process.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Phone]; exists {
		return ErrUserExists
	}
	r.users[user.Phone] = user
	return nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[phone]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *memoryRepository) Update(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Phone]; !ok {
		return ErrUserNotFound
	}
	r.users[user.Phone] = user
	return nil
}

// Identity manages stub account lifecycle.
type Identity struct {
	repo Repository
}

// NewIdentity creates the identity service over the given repository.
func NewIdentity(repo Repository) *Identity {
	return &Identity{repo: repo}
}

// Register creates an account with a hashed PIN.
func (s *Identity) Register(ctx context.Context, name, email, phone, pin string) (User, error) {
	if len(pin) < 4 {
		return User{}, errors.New("PIN must be at least 4 digits")
	}
	if phone == "" {
		return User{}, errors.New("phone is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		PINHash:   hash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies credentials.
func (s *Identity) Authenticate(ctx context.Context, phone, pin string) (User, error) {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PINHash, []byte(pin)); err != nil {
		return User{}, ErrInvalidPIN
	}
	return user, nil
}

// SubmitKYC records an identity verification request. The stub verifies
// immediately instead of queueing a review.
func (s *Identity) SubmitKYC(ctx context.Context, userID string, level int) (User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.KYCStatus = session.KYCStatusVerified
	if level > user.KYCLevel {
		user.KYCLevel = level
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// RevokeTokens bumps the account's token version so outstanding tokens stop
// verifying.
func (s *Identity) RevokeTokens(ctx context.Context, userID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	user.TokenVersion++
	return s.repo.Update(ctx, user)
}
