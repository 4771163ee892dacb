package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-portfolio-cms/internal/email"
	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/pkg/apierror"
)

type contactStore interface {
	Store(ctx context.Context, m model.ContactMessage) error
	List(ctx context.Context, page int, pageSize int) ([]model.ContactMessage, int, error)
}

type ContactService struct {
	store  contactStore
	sender email.Sender
}

func NewContactService(store contactStore, sender email.Sender) *ContactService {
	return &ContactService{store: store, sender: sender}
}

// Submit validates and persists a contact message, then notifies the site
// owner. Notification failure is logged, not surfaced; the message is
// already stored.
func (s *ContactService) Submit(ctx context.Context, req model.ContactRequest) (model.ContactMessage, error) {
	name := strings.TrimSpace(req.Name)
	addr := strings.TrimSpace(req.Email)
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Message)

	switch {
	case name == "":
		return model.ContactMessage{}, apierror.Validation("name", "is required")
	case len(name) > 200:
		return model.ContactMessage{}, apierror.Validation("name", "must be at most 200 characters")
	case addr == "" || !strings.Contains(addr, "@") || strings.ContainsAny(addr, " \t"):
		return model.ContactMessage{}, apierror.Validation("email", "must be a valid email address")
	case len(addr) > 320:
		return model.ContactMessage{}, apierror.Validation("email", "must be at most 320 characters")
	case len(subject) > 300:
		return model.ContactMessage{}, apierror.Validation("subject", "must be at most 300 characters")
	case body == "":
		return model.ContactMessage{}, apierror.Validation("message", "is required")
	case len(body) > 10000:
		return model.ContactMessage{}, apierror.Validation("message", "must be at most 10000 characters")
	}

	message := model.ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     addr,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Store(ctx, message); err != nil {
		return model.ContactMessage{}, err
	}

	if err := s.sender.SendContactNotification(ctx, name, addr, subject, body); err != nil {
		slog.Error("contact notification delivery failed", "message_id", message.ID, "error", err)
	}

	return message, nil
}

func (s *ContactService) List(ctx context.Context, page int, pageSize int) ([]model.ContactMessage, model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	messages, total, err := s.store.List(ctx, page, pageSize)
	if err != nil {
		return nil, model.Meta{}, err
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return messages, model.Meta{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}, nil
}
