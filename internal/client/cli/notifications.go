package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
)

type notificationInput struct {
	title   string
	message string
	kind    string
}

func (n notificationInput) request() models.NotificationCreateRequest {
	kind := models.NotificationType(strings.ToLower(strings.TrimSpace(n.kind)))
	if kind == "" {
		kind = models.NotificationSystem
	}
	return models.NotificationCreateRequest{Title: n.title, Message: n.message, Type: kind}
}

func (a *App) ListNotifications(ctx context.Context) error {
	uid, err := a.currentUserID()
	if err != nil {
		return err
	}
	list, err := a.notificationService.List(ctx, uid)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No notifications.")
		return nil
	}
	return a.printNotifications(list)
}

// CreateNotification stores a notification; with send set the backend also
// delivers it.
func (a *App) CreateNotification(ctx context.Context, in notificationInput, send bool) error {
	uid, err := a.currentUserID()
	if err != nil {
		return err
	}
	if send {
		res, err := a.notificationService.Send(ctx, uid, in.request())
		if err != nil {
			return err
		}
		a.printf("Sent notification %s.\n", res.NotificationID)
		return nil
	}
	n, err := a.notificationService.Create(ctx, uid, in.request())
	if err != nil {
		return err
	}
	a.printf("Created notification %s (%s).\n", n.ID, n.Status)
	return nil
}

func (a *App) NotificationSettings(ctx context.Context) error {
	uid, err := a.currentUserID()
	if err != nil {
		return err
	}
	s, err := a.notificationService.Settings(ctx, uid)
	if err != nil {
		return err
	}
	return a.printSettings(s)
}

// settingsUpdate holds the toggles actually passed to "notifications set".
type settingsUpdate struct {
	email        *bool
	system       *bool
	registration *bool
}

func (a *App) UpdateNotificationSettings(ctx context.Context, u settingsUpdate) error {
	uid, err := a.currentUserID()
	if err != nil {
		return err
	}
	s, err := a.notificationService.UpdateSettings(ctx, uid, models.NotificationSettingsRequest{
		EmailNotifications:        u.email,
		SystemNotifications:       u.system,
		RegistrationNotifications: u.registration,
	})
	if err != nil {
		return err
	}
	return a.printSettings(s)
}
