package identity

import (
	"context"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	UsernamesByRole(ctx context.Context, roles ...Role) ([]string, error)
	AllUsernames(ctx context.Context) ([]string, error)
	UpdateRole(ctx context.Context, username string, role Role) error
	Delete(ctx context.Context, username string) error
}
