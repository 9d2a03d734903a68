package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"promptstudio/internal/pkg/logger"
	"promptstudio/internal/pkg/ratelimit"
)

type Service struct {
	users         UserRepositoryInterface
	tokens        TokenIssuer
	limiter       ratelimit.Limiter
	checkPassword func(password, hash string) error
}

// NewService wires login. limiter holds the failed-attempt budget per
// email and client IP.
func NewService(users UserRepositoryInterface, tokens TokenIssuer, limiter ratelimit.Limiter) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		limiter:       limiter,
		checkPassword: CheckPassword,
	}
}

// dummyHash is compared against when the email is unknown, so both paths
// pay for one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("promptstudio-unknown-user")
	if err != nil {
		panic(err)
	}
	return hash
})

type LoginResult struct {
	User        *User
	AccessToken string
}

// Login checks credentials for req.Email. Failed attempts are counted per
// email and client IP; once the limiter's budget is spent every attempt is refused
// until the window passes, even with the right password.
func (s *Service) Login(ctx context.Context, req LoginRequest, ip string) (*LoginResult, error) {
	key := throttleKey(req.Email, ip)

	state, err := s.limiter.Peek(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check login throttle: %w", err)
	}
	if state.Exhausted() {
		logger.Warn("login locked out", logger.Fields{"email": NormalizeEmail(req.Email), "ip": ip})
		return nil, &LockoutError{RetryAfter: state.RetryAfter}
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	hash := dummyHash()
	if user != nil {
		hash = user.PasswordHash
	}
	if err := s.checkPassword(req.Password, hash); err != nil || user == nil {
		if _, err := s.limiter.Hit(ctx, key); err != nil {
			return nil, fmt.Errorf("record login attempt: %w", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.Clear(ctx, key); err != nil {
		logger.Warn("login throttle reset failed", logger.Fields{"error": err.Error()})
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info("user logged in", logger.Fields{"user_id": user.ID, "ip": ip})
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// Register creates a user with a bcrypt hash. Used by the seed command.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Name: name, Email: NormalizeEmail(email), PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
