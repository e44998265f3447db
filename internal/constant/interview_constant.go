package constant

// Session statuses.
const (
	SessionStatusLive      = "live"
	SessionStatusCompleted = "completed"
)

// Watermill topic carrying per-cycle instruction messages from the
// interview service to the websocket delivery consumer.
const InstructionTopic = "INTERVIEW_INSTRUCTIONS"

// NATS event types for downstream analytics.
const (
	EventInterviewStarted   = "INTERVIEW_STARTED"
	EventInterviewCompleted = "INTERVIEW_COMPLETED"
)

// Redis channel used by the websocket hub for cross-instance delivery.
const InstructionClusterChannel = "interview_cluster_events"
