package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Intervention() InterventionRepository
	RoomBlock() RoomBlockRepository
	Notification() NotificationRepository

	Close() error
}
