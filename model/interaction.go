package model

// Interaction is the audit record written once per processed event, keyed by
// the event's external id. The store assigns the timestamp at write time.
type Interaction struct {
	ExternalID       string
	Platform         Platform
	Author           string
	Text             string
	Status           InteractionStatus
	IsAbusive        bool
	AIReply          string
	ProcessingTimeMs int64
}
