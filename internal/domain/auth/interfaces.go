package auth

import "context"

// UserRepositoryInterface lists only the methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	GenerateToken(userID int64) (string, error)
}
