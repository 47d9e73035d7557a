package testbackend

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (b *Backend) newNotification(c echo.Context, status models.NotificationStatus) (models.Notification, error) {
	var req models.NotificationCreateRequest
	if err := c.Bind(&req); err != nil || !req.Type.Valid() || req.Title == "" {
		return models.Notification{}, detail(c, http.StatusUnprocessableEntity, "title and a valid type are required")
	}
	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    c.Param("user"),
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Status:    status,
		CreatedAt: models.Timestamp{Time: time.Now().UTC()},
	}
	if status == models.NotificationSent {
		n.SentAt = n.CreatedAt
	}
	b.mu.Lock()
	b.notifications[n.UserID] = append(b.notifications[n.UserID], n)
	b.mu.Unlock()
	return n, nil
}

func (b *Backend) createNotification(c echo.Context) error {
	n, err := b.newNotification(c, models.NotificationPending)
	if n.ID == "" {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

func (b *Backend) sendNotification(c echo.Context) error {
	n, err := b.newNotification(c, models.NotificationSent)
	if n.ID == "" {
		return err
	}
	return c.JSON(http.StatusAccepted, models.SendNotificationResponse{Message: "Notification queued", NotificationID: n.ID})
}

func (b *Backend) listNotifications(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.notifications[c.Param("user")]
	if list == nil {
		list = []models.Notification{}
	}
	return c.JSON(http.StatusOK, models.NotificationList{Notifications: list})
}

func (b *Backend) settingsLocked(userID string) models.NotificationSettings {
	s, ok := b.settings[userID]
	if !ok {
		s = models.NotificationSettings{
			UserID:                    userID,
			EmailNotifications:        true,
			SystemNotifications:       true,
			RegistrationNotifications: true,
			UpdatedAt:                 models.Timestamp{Time: time.Now().UTC()},
		}
	}
	return s
}

func (b *Backend) getSettings(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return c.JSON(http.StatusOK, b.settingsLocked(c.Param("user")))
}

func (b *Backend) updateSettings(c echo.Context) error {
	var req models.NotificationSettingsRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.settingsLocked(c.Param("user"))
	if req.EmailNotifications != nil {
		s.EmailNotifications = *req.EmailNotifications
	}
	if req.SystemNotifications != nil {
		s.SystemNotifications = *req.SystemNotifications
	}
	if req.RegistrationNotifications != nil {
		s.RegistrationNotifications = *req.RegistrationNotifications
	}
	s.UpdatedAt = models.Timestamp{Time: time.Now().UTC()}
	b.settings[s.UserID] = s
	return c.JSON(http.StatusOK, s)
}
