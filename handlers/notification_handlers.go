package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"devlink.vn/backoffice/middleware"
)

// ListNotificationsHandler returns the caller's notifications, newest first.
// Query parameters: unread=true, limit, offset.
func ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	ns := NewNotificationService()
	notifications, err := ns.GetNotificationsForUser(userID, unreadOnly, limit, offset)
	if err != nil {
		http.Error(w, "failed to fetch notifications: "+err.Error(), http.StatusInternalServerError)
		return
	}
	unread, err := ns.GetUnreadCount(userID)
	if err != nil {
		http.Error(w, "failed to count notifications: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkNotificationReadHandler marks one of the caller's notifications read.
func MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	notificationID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	if err := NewNotificationService().MarkRead(userID, notificationID); err != nil {
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
