package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
)

// NotificationService covers the /notification endpoints of one user.
type NotificationService interface {
	Create(ctx context.Context, userID string, req models.NotificationCreateRequest) (models.Notification, error)
	List(ctx context.Context, userID string) ([]models.Notification, error)
	Send(ctx context.Context, userID string, req models.NotificationCreateRequest) (models.SendNotificationResponse, error)
	Settings(ctx context.Context, userID string) (models.NotificationSettings, error)
	UpdateSettings(ctx context.Context, userID string, req models.NotificationSettingsRequest) (models.NotificationSettings, error)
}

type notificationService struct {
	doer Doer
}

func NewNotificationService(doer Doer) NotificationService {
	return &notificationService{doer: doer}
}

func (s *notificationService) path(userID, suffix string) string {
	return "/notification/" + seg(userID) + suffix
}

func checkNotification(req models.NotificationCreateRequest) error {
	if req.Title == "" {
		return fmt.Errorf("notification title is empty: %w", ErrInvalidArgument)
	}
	if !req.Type.Valid() {
		return fmt.Errorf("notification type %q: %w", req.Type, ErrInvalidArgument)
	}
	return nil
}

func (s *notificationService) Create(ctx context.Context, userID string, req models.NotificationCreateRequest) (models.Notification, error) {
	if err := checkNotification(req); err != nil {
		return models.Notification{}, err
	}
	return callJSON[models.Notification](ctx, s.doer, http.MethodPost, s.path(userID, ""), req)
}

func (s *notificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	list, err := get[models.NotificationList](ctx, s.doer, s.path(userID, ""), nil)
	if err != nil {
		return nil, err
	}
	return list.Notifications, nil
}

func (s *notificationService) Send(ctx context.Context, userID string, req models.NotificationCreateRequest) (models.SendNotificationResponse, error) {
	if err := checkNotification(req); err != nil {
		return models.SendNotificationResponse{}, err
	}
	return callJSON[models.SendNotificationResponse](ctx, s.doer, http.MethodPost, s.path(userID, "/notify"), req)
}

func (s *notificationService) Settings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	return get[models.NotificationSettings](ctx, s.doer, s.path(userID, "/settings"), nil)
}

func (s *notificationService) UpdateSettings(ctx context.Context, userID string, req models.NotificationSettingsRequest) (models.NotificationSettings, error) {
	return callJSON[models.NotificationSettings](ctx, s.doer, http.MethodPost, s.path(userID, "/settings"), req)
}
