package realtime

// Named realtime streams.
const (
	// StreamNotifications carries per-user notification events.
	StreamNotifications = "notifications"
	// StreamFeedback carries team-wide feedback activity used to refresh dashboards.
	StreamFeedback = "feedback"
)

// Event names published on the streams.
const (
	EventNotificationCreated = "notification.created"
	EventNotificationRead    = "notification.read"
	EventFeedbackCreated     = "feedback.created"
	EventRequestCreated      = "feedback_request.created"
)

// DefaultStreams is subscribed when a client does not name any stream.
var DefaultStreams = []string{StreamNotifications, StreamFeedback}
