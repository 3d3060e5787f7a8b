package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avdeev/todolist/internal/common"
	"github.com/avdeev/todolist/internal/dbx"
	"github.com/avdeev/todolist/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {

	query :=
		`INSERT INTO todos (id, user_id, text, due_date)
         VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.UserID, todo.Text, todo.DueDate).Scan(&todo.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Todo, error) {
	query :=
		`SELECT id, user_id, text, due_date, created_at FROM todos
		 WHERE id = $1
		 `

	todo := &models.Todo{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&todo.ID, &todo.UserID, &todo.Text, &todo.DueDate, &todo.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return todo, nil
}

// Update changes the text and due date of an item. The owner column is
// deliberately not updatable.
func (r *PostgresRepository) Update(ctx context.Context, id string, text string, dueDate string) error {
	query :=
		`UPDATE todos SET text = $2, due_date = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, text, dueDate)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM todos
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Todo, error) {
	query :=
		`SELECT id, user_id, text, due_date, created_at FROM todos
		 WHERE user_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Todo, 0)
	for rows.Next() {
		todo := &models.Todo{}
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Text, &todo.DueDate, &todo.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}
