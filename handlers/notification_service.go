package handlers

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devlink.vn/backoffice/config"
	"devlink.vn/backoffice/models"
)

// NotificationService delivers role-targeted alerts. It is the module's
// notification gateway: callers hand it a role set and a message, it fans out
// one notification row per matching user. Delivery problems are logged, never
// surfaced: a committed lifecycle transition must not fail because an alert
// could not be written.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return NewNotificationServiceWithDB(config.DB)
}

// NewNotificationServiceWithDB wires the service against an explicit DB handle.
func NewNotificationServiceWithDB(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify fans the alert out to every active user holding one of the named
// roles. Best effort: failures are logged and the remaining recipients still
// get their copy.
func (ns *NotificationService) Notify(
	roleNames []string,
	title, body string,
	entityType string,
	entityID uuid.UUID,
	actionPath string,
	notifType models.NotificationType,
	priority models.NotificationPriority,
) {
	userIDs, err := ns.GetUserIDsByRoles(roleNames)
	if err != nil {
		log.Printf("❌ Failed to resolve notification recipients for roles %v: %v", roleNames, err)
		return
	}
	if len(userIDs) == 0 {
		log.Printf("⚠️  No recipients resolved for roles %v", roleNames)
		return
	}

	for _, userID := range userIDs {
		notification := models.Notification{
			UserID:      userID,
			Type:        notifType,
			Priority:    priority,
			Title:       title,
			Body:        body,
			EntityType:  entityType,
			EntityID:    &entityID,
			ActionPath:  actionPath,
			TargetRoles: roleNames,
			Status:      models.NotificationStatusPending,
		}

		if err := ns.db.Create(&notification).Error; err != nil {
			log.Printf("❌ Failed to create notification for user %s: %v", userID, err)
			continue
		}

		// In-app delivery is the write itself; mark sent immediately.
		notification.MarkAsSent()
		if err := ns.db.Save(&notification).Error; err != nil {
			log.Printf("⚠️  Failed to mark notification %s sent: %v", notification.ID, err)
		}
	}
}

// GetUserIDsByRoles resolves the ids of active users holding any of the
// given roles, deduplicated.
func (ns *NotificationService) GetUserIDsByRoles(roleNames []string) ([]uuid.UUID, error) {
	if len(roleNames) == 0 {
		return nil, nil
	}

	var users []models.User
	if err := ns.db.Where("role IN ? AND is_active = ?", roleNames, true).Find(&users).Error; err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	userIDs := make([]uuid.UUID, 0, len(users))
	for _, user := range users {
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		userIDs = append(userIDs, user.ID)
	}
	return userIDs, nil
}

// GetNotificationsForUser retrieves notifications for a specific user,
// newest first.
func (ns *NotificationService) GetNotificationsForUser(userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	query := ns.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if limit <= 0 {
		limit = 50
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// GetUnreadCount gets the count of unread notifications for a user
func (ns *NotificationService) GetUnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	if err := ns.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead marks one of the user's notifications read.
func (ns *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	var notification models.Notification
	if err := ns.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
		return err
	}
	notification.MarkAsRead()
	return ns.db.Save(&notification).Error
}
