package notifications

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, n Notification) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (company_id, user_id, kind, title, message)
    VALUES ($1, $2, $3, $4, $5)
  `, n.CompanyID, n.UserID, n.Kind, n.Title, n.Message)
	return err
}

func (s *Store) ListForUser(ctx context.Context, companyID, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	query := `
    SELECT id, company_id, user_id, kind, title, message, read, created_at
    FROM notifications
    WHERE company_id = $1 AND user_id = $2`
	if unreadOnly {
		query += " AND NOT read"
	}
	query += " ORDER BY created_at DESC LIMIT $3"

	rows, err := s.DB.Query(ctx, query, companyID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) UnreadCount(ctx context.Context, companyID, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications
    WHERE company_id = $1 AND user_id = $2 AND NOT read
  `, companyID, userID).Scan(&count)
	return count, err
}

func (s *Store) MarkRead(ctx context.Context, companyID, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read = true
    WHERE company_id = $1 AND user_id = $2 AND id = $3
  `, companyID, userID, notificationID)
	return err
}

func (s *Store) MarkAllRead(ctx context.Context, companyID, userID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read = true
    WHERE company_id = $1 AND user_id = $2 AND NOT read
  `, companyID, userID)
	return err
}
