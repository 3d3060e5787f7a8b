package users

import (
	"context"

	"github.com/avdeev/todolist/internal/server/models"
)

// Repository is the narrow persistence contract the auth core relies on.
// Lookups are by id or by normalized email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
