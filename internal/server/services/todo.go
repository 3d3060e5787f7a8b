package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avdeev/todolist/internal/common"
	"github.com/avdeev/todolist/internal/server/auth"
	"github.com/avdeev/todolist/internal/server/config"
	"github.com/avdeev/todolist/internal/server/models"
	"github.com/avdeev/todolist/internal/server/repositories/repomanager"
	"github.com/avdeev/todolist/internal/server/validation"
)

// TodoService manages to-do items on behalf of an authenticated identity.
// Every read or mutation of a specific item loads it first and compares its
// owner to the caller before acting; there is no code path that mutates an
// item it has not authorized.
type TodoService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	storeTimeout time.Duration
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TodoService {
	return &TodoService{
		db:           db,
		repomanager:  m,
		storeTimeout: cfg.StoreTimeout,
	}
}

// authorize is the ownership guard: it admits the caller only when the
// stored owner id equals the acting identity's user id.
func (s *TodoService) authorize(identity auth.Identity, todo *models.Todo) error {
	if todo.UserID != identity.UserID {
		return common.ErrForbidden
	}
	return nil
}

// Create stores a new item owned by the acting identity. The owner comes
// from the verified session, never from the request body.
func (s *TodoService) Create(ctx context.Context, identity auth.Identity, text, dueDate string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validation.Errors{{Field: "todo", Message: "must not be empty"}}
	}

	todo := &models.Todo{
		ID:      uuid.New().String(),
		UserID:  identity.UserID,
		Text:    text,
		DueDate: dueDate,
	}

	repo := s.repomanager.Todos(s.db)
	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	todo, err := repo.Create(cctx, todo)
	if err != nil {
		return nil, fmt.Errorf("%w: creating todo: %v", common.ErrInternal, err)
	}

	return todo, nil
}

// ListByOwner returns the acting identity's items, oldest first.
func (s *TodoService) ListByOwner(ctx context.Context, identity auth.Identity) ([]*models.Todo, error) {
	repo := s.repomanager.Todos(s.db)

	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	list, err := repo.ListByOwner(cctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing todos: %v", common.ErrInternal, err)
	}
	return list, nil
}

// GetOwned loads one item and returns it only to its owner.
func (s *TodoService) GetOwned(ctx context.Context, identity auth.Identity, id string) (*models.Todo, error) {
	todo, err := s.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// Update edits an item's text and due date after the ownership check. The
// owner id is never part of the update.
func (s *TodoService) Update(ctx context.Context, identity auth.Identity, id, text, dueDate string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return validation.Errors{{Field: "todo", Message: "must not be empty"}}
	}

	if _, err := s.loadOwned(ctx, identity, id); err != nil {
		return err
	}

	repo := s.repomanager.Todos(s.db)
	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := repo.Update(cctx, id, text, dueDate); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: updating todo: %v", common.ErrInternal, err)
	}
	return nil
}

// Delete removes an item after the ownership check.
func (s *TodoService) Delete(ctx context.Context, identity auth.Identity, id string) error {
	if _, err := s.loadOwned(ctx, identity, id); err != nil {
		return err
	}

	repo := s.repomanager.Todos(s.db)
	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := repo.Delete(cctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: deleting todo: %v", common.ErrInternal, err)
	}
	return nil
}

// loadOwned implements load-then-compare: fetch the item, then run the
// ownership guard against the acting identity.
func (s *TodoService) loadOwned(ctx context.Context, identity auth.Identity, id string) (*models.Todo, error) {
	repo := s.repomanager.Todos(s.db)

	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	todo, err := repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: loading todo: %v", common.ErrInternal, err)
	}

	if err := s.authorize(identity, todo); err != nil {
		return nil, err
	}
	return todo, nil
}
