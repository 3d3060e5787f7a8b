package models

import "time"

// Todo is a single to-do item. UserID references exactly one owner and is
// immutable after creation; updates touch text and due date only.
type Todo struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Text      string    `db:"text"`
	DueDate   string    `db:"due_date"`
	CreatedAt time.Time `db:"created_at"`
}
