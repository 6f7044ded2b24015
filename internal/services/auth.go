package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"conferencehub/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
	tokenExpiry time.Duration
	github      domain.GitHubClient
}

// NewAuthService creates an AuthService with the given repositories and
// auth ports. github may be nil when the OAuth flow is not configured.
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	github domain.GitHubClient,
) domain.AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
		tokenExpiry: tokenExpiry,
		github:      github,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	return s.createUser(ctx, email, password)
}

func (s *authService) createUser(ctx context.Context, email, password string) (*domain.User, error) {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(email, hash, salt, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) LoginWithGitHub(ctx context.Context, code string) (string, *domain.User, error) {
	if s.github == nil {
		return "", nil, fmt.Errorf("github login is not configured")
	}
	if code == "" {
		return "", nil, fmt.Errorf("%w: missing code", domain.ErrInvalidInput)
	}

	accessToken, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("%w: github code exchange failed", domain.ErrInvalidCredentials)
	}
	ghUser, err := s.github.FetchUser(ctx, accessToken)
	if err != nil {
		return "", nil, fmt.Errorf("fetch github user: %w", err)
	}

	// GitHub profiles may hide the email; the login name stands in for it.
	email := strings.TrimSpace(strings.ToLower(ghUser.Email))
	if email == "" {
		email = strings.ToLower(ghUser.Login)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("get user: %w", err)
		}
		// First GitHub login creates the account. The password is never
		// used for this account; the GitHub user ID seeds the hash.
		user, err = s.createUser(ctx, email, strconv.FormatInt(ghUser.ID, 10))
		if err != nil {
			return "", nil, err
		}
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) createSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	now := time.Now()
	session := &domain.Session{
		UserID:    user.ID,
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}
