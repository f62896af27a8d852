package model

// Decision is the classifier's verdict for one comment.
// If IsAbusive is true, Reply is always empty: abusive comments are deleted,
// never answered.
type Decision struct {
	IsAbusive bool   `json:"isAbusive"`
	Reply     string `json:"reply"`
	Reason    string `json:"reason"`
}

func (d Decision) HasReply() bool {
	return d.Reply != ""
}

type InteractionStatus string

const (
	StatusReplied InteractionStatus = "REPLIED"
	StatusDeleted InteractionStatus = "DELETED"
	StatusIgnored InteractionStatus = "IGNORED"
)

// Decide maps a classifier decision to the status recorded for the event.
// The status reflects the decision, not whether the external call actually
// ran: a DELETED row means "the bot decided to delete", even if no credential
// was on file to carry it out.
func Decide(d Decision) InteractionStatus {
	if d.IsAbusive {
		return StatusDeleted
	}
	if d.HasReply() {
		return StatusReplied
	}
	return StatusIgnored
}
