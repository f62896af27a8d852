package model

// CommentEvent is one inbound comment notification from a platform webhook.
// It is transient: the pipeline consumes it and writes an Interaction, but the
// event itself is never stored.
type CommentEvent struct {
	// ExternalID is the platform's id for the comment. It is stable across
	// redeliveries of the same comment and keys the interaction log.
	ExternalID string
	Platform   Platform
	// PlatformID identifies the receiving account (a Facebook page ID or a
	// YouTube channel ID), used to look up credentials.
	PlatformID string
	Author     string
	Text       string
}
