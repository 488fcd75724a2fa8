package domain

// Broadcast channels every front end reports to.
const (
	ChannelBookUpdates        = "book_updates"
	ChannelAdminNotifications = "admin_notifications"
)
