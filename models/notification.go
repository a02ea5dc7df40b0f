package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// NotificationType defines the type of notification
type NotificationType string

const (
	NotificationTypePaymentOverdue    NotificationType = "payment_overdue"
	NotificationTypePaymentTransition NotificationType = "payment_transition"
	NotificationTypeSystemAlert       NotificationType = "system_alert"
)

// NotificationStatus defines the delivery status of a notification
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusRead    NotificationStatus = "read"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// NotificationPriority defines the priority level
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification is one alert delivered to one user, created by the
// NotificationService when a lifecycle event names that user's role.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type     NotificationType     `gorm:"size:50;not null;index" json:"type"`
	Priority NotificationPriority `gorm:"size:20;default:'normal'" json:"priority"`
	Title    string               `gorm:"size:500;not null" json:"title"`
	Body     string               `gorm:"type:text;not null" json:"body"`

	// Context: which entity the alert references and the back-office path
	// that opens it.
	EntityType string     `gorm:"size:50;index" json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `gorm:"type:uuid;index" json:"entity_id,omitempty"`
	ActionPath string     `gorm:"size:500" json:"action_path,omitempty"`

	// The role set the triggering event targeted, kept for audit.
	TargetRoles pq.StringArray `gorm:"type:text[]" json:"target_roles,omitempty"`

	Status       NotificationStatus `gorm:"size:20;default:'pending';index" json:"status"`
	SentAt       *time.Time         `json:"sent_at,omitempty"`
	ReadAt       *time.Time         `json:"read_at,omitempty"`
	FailedReason string             `gorm:"type:text" json:"failed_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}

// MarkAsRead marks the notification as read
func (n *Notification) MarkAsRead() {
	now := time.Now()
	n.ReadAt = &now
	n.Status = NotificationStatusRead
}

// MarkAsSent marks the notification as sent
func (n *Notification) MarkAsSent() {
	now := time.Now()
	n.SentAt = &now
	n.Status = NotificationStatusSent
}

// MarkAsFailed marks the notification as failed
func (n *Notification) MarkAsFailed(reason string) {
	n.Status = NotificationStatusFailed
	n.FailedReason = reason
}
