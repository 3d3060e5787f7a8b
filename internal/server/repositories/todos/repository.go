package todos

import (
	"context"

	"github.com/avdeev/todolist/internal/server/models"
)

// Repository persists to-do items. Update and Delete operate by id only;
// deciding whether the caller may touch that id is the service's job, done
// before these methods run.
type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, id string) (*models.Todo, error)
	Update(ctx context.Context, id string, text string, dueDate string) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, userID string) ([]*models.Todo, error)
}
