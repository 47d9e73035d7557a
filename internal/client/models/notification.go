package models

type NotificationType string

const (
	NotificationRegistration NotificationType = "registration"
	NotificationSystem       NotificationType = "system"
	NotificationEmail        NotificationType = "email"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationRegistration, NotificationSystem, NotificationEmail:
		return true
	}
	return false
}

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

type NotificationCreateRequest struct {
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

type Notification struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	Type      NotificationType   `json:"type"`
	Status    NotificationStatus `json:"status"`
	CreatedAt Timestamp          `json:"created_at"`
	SentAt    Timestamp          `json:"sent_at"`
}

func (n Notification) Validate() error {
	if n.ID == "" {
		return invalid("notification id is empty")
	}
	if !n.Type.Valid() {
		return invalid("notification %s: unknown type %q", n.ID, n.Type)
	}
	switch n.Status {
	case NotificationPending, NotificationSent, NotificationFailed:
	default:
		return invalid("notification %s: unknown status %q", n.ID, n.Status)
	}
	return nil
}

type NotificationList struct {
	Notifications []Notification `json:"notifications"`
}

func (l NotificationList) Validate() error {
	for i, n := range l.Notifications {
		if err := n.Validate(); err != nil {
			return invalid("notifications[%d]: %v", i, err)
		}
	}
	return nil
}

type SendNotificationResponse struct {
	Message        string `json:"message"`
	NotificationID string `json:"notification_id"`
}

func (r SendNotificationResponse) Validate() error {
	if r.NotificationID == "" {
		return invalid("notification_id is empty")
	}
	return nil
}

// NotificationSettingsRequest carries only the toggles being changed.
type NotificationSettingsRequest struct {
	EmailNotifications        *bool `json:"email_notifications,omitempty"`
	SystemNotifications       *bool `json:"system_notifications,omitempty"`
	RegistrationNotifications *bool `json:"registration_notifications,omitempty"`
}

type NotificationSettings struct {
	UserID                    string    `json:"user_id"`
	EmailNotifications        bool      `json:"email_notifications"`
	SystemNotifications       bool      `json:"system_notifications"`
	RegistrationNotifications bool      `json:"registration_notifications"`
	UpdatedAt                 Timestamp `json:"updated_at"`
}

func (s NotificationSettings) Validate() error {
	if s.UserID == "" {
		return invalid("settings user_id is empty")
	}
	return nil
}
