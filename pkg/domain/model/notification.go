package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hotelops/intervention/pkg/domain/types"
)

// NotificationID is a UUID-based identifier for Notification
type NotificationID string

// NewNotificationID generates a new UUID v4 NotificationID
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

// Notification is a delivery request for an external collaborator. UserID is
// empty for establishment-wide notifications.
type Notification struct {
	ID              NotificationID
	EstablishmentID string
	UserID          string
	Type            types.NotificationType
	Title           string
	Message         string
	Read            bool
	Room            types.RoomID
	InterventionID  InterventionID
	CreatedAt       time.Time
}

// NewRoomBlockedNotification builds the trigger raised when a room flips to
// blocked for a ticket.
func NewRoomBlockedNotification(x *Intervention, block *RoomBlock, now time.Time) *Notification {
	return &Notification{
		ID:              NewNotificationID(),
		EstablishmentID: x.EstablishmentID,
		Type:            types.NotificationTypeRoomBlocked,
		Title:           fmt.Sprintf("Room %s blocked", block.Room),
		Message:         fmt.Sprintf("%s blocked room %s: %s", block.BlockedByName, block.Room, block.Reason),
		Room:            block.Room,
		InterventionID:  x.ID,
		CreatedAt:       now,
	}
}

// NewInterventionCompletedNotification builds the trigger sent to the ticket
// creator when the intervention is completed.
func NewInterventionCompletedNotification(x *Intervention, now time.Time) *Notification {
	summary := x.MissionSummary
	if summary == "" {
		summary = string(x.ID)
	}
	return &Notification{
		ID:              NewNotificationID(),
		EstablishmentID: x.EstablishmentID,
		UserID:          x.CreatedBy,
		Type:            types.NotificationTypeInterventionCompleted,
		Title:           "Intervention completed",
		Message:         fmt.Sprintf("Intervention %q has been completed", summary),
		InterventionID:  x.ID,
		CreatedAt:       now,
	}
}
