package domain

import (
	"context"
	"time"
)

// User represents a registered account.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by
// the repository on create.
func NewUser(email, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Session records an issued credential for a user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// GitHubUser is the subset of the GitHub user profile the OAuth flow needs.
// Email may be empty when the profile hides it; Login is the fallback
// identity.
type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

// GitHubClient exchanges an OAuth authorization code for an access token
// and fetches the authenticated GitHub user.
type GitHubClient interface {
	ExchangeCode(ctx context.Context, code string) (accessToken string, err error)
	FetchUser(ctx context.Context, accessToken string) (*GitHubUser, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// SessionRepository defines the interface for session storage.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
}

// AuthService defines account creation and the two login flows.
type AuthService interface {
	// SignUp registers a new account. Fails with ErrDuplicateEmail when the
	// email is taken.
	SignUp(ctx context.Context, email, password string) (*User, error)
	// Login verifies credentials, records a session, and returns a token.
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	// LoginWithGitHub exchanges the OAuth code, creating the account on
	// first login, records a session, and returns a token.
	LoginWithGitHub(ctx context.Context, code string) (token string, user *User, err error)
}
