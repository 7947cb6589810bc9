package notifications

import (
	"context"
	"log/slog"
)

// Mailer sends a single plain-text email.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// EmailLookup resolves a user's email address for mail delivery.
type EmailLookup func(ctx context.Context, userID string) (string, error)

type Service struct {
	Store  *Store
	Mailer Mailer
	From   string
	Email  EmailLookup
}

func NewService(store *Store, mailer Mailer, from string, lookup EmailLookup) *Service {
	return &Service{Store: store, Mailer: mailer, From: from, Email: lookup}
}

// Notify stores an in-app notification and mirrors it to email. Delivery is
// best effort: failures are logged and never surfaced to the caller.
func (s *Service) Notify(ctx context.Context, companyID, userID, kind, title, message string) {
	err := s.Store.Create(ctx, Notification{
		CompanyID: companyID,
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
	})
	if err != nil {
		slog.Warn("store notification", "user_id", userID, "kind", kind, "error", err)
	}

	if s.Mailer == nil || s.Email == nil {
		return
	}
	to, err := s.Email(ctx, userID)
	if err != nil || to == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.From, to, title, message); err != nil {
		slog.Warn("send notification email", "user_id", userID, "error", err)
	}
}

func (s *Service) List(ctx context.Context, companyID, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.Store.ListForUser(ctx, companyID, userID, unreadOnly, limit)
}

func (s *Service) UnreadCount(ctx context.Context, companyID, userID string) (int, error) {
	return s.Store.UnreadCount(ctx, companyID, userID)
}

func (s *Service) MarkRead(ctx context.Context, companyID, userID, notificationID string) error {
	return s.Store.MarkRead(ctx, companyID, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, companyID, userID string) error {
	return s.Store.MarkAllRead(ctx, companyID, userID)
}
