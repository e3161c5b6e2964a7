package inapp

import (
	"context"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListResult is a page of notifications plus the user's unread count.
type ListResult struct {
	Items       []Notification `json:"items"`
	Total       int            `json:"total"`
	UnreadCount int            `json:"unreadCount"`
}

// Service exposes the in-app notification inbox.
type Service struct {
	repo *Repository
}

// NewService creates a new in-app notification service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) (ListResult, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		return ListResult{}, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{Items: items, Total: total, UnreadCount: unread}, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

// MarkAllRead marks all of the user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
