package types

// NotificationType identifies the trigger that produced a notification
type NotificationType string

const (
	NotificationTypeRoomBlocked           NotificationType = "room_blocked"
	NotificationTypeInterventionCompleted NotificationType = "intervention_completed"
)

func (t NotificationType) String() string {
	return string(t)
}

// ChangeKind describes what happened to a document in a change feed
type ChangeKind string

const (
	ChangeKindAdded    ChangeKind = "added"
	ChangeKindModified ChangeKind = "modified"
	ChangeKindRemoved  ChangeKind = "removed"
)

// Collection names a persisted record family
type Collection string

const (
	CollectionInterventions Collection = "interventions"
	CollectionBlockedRooms  Collection = "blockedRooms"
	CollectionNotifications Collection = "notifications"
)
