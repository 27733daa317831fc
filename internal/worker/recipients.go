package worker

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SQLRecipients resolves recipients from the users table.
type SQLRecipients struct {
	db *sql.DB
}

func NewSQLRecipients(db *sql.DB) *SQLRecipients {
	return &SQLRecipients{db: db}
}

func (r *SQLRecipients) EmailFor(ctx context.Context, userID uuid.UUID) (string, error) {
	var email string
	err := r.db.QueryRowContext(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no user %s", userID)
		}
		return "", err
	}
	return email, nil
}
