package domain

// PendingChat is the ephemeral "open chat with this user" handoff record.
// A producer (notification click, booking contact button) writes it and
// signals the chat window; the window consumes it exactly once. The target
// user is identified either directly by UserID or indirectly through a
// message id whose sender is the target.
type PendingChat struct {
	Name        string `json:"name"`
	UserID      int64  `json:"userId,omitempty"`
	ReferenceID string `json:"referenceId,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
}

// TargetMessageID returns whichever message reference the record carries.
func (p PendingChat) TargetMessageID() string {
	if p.MessageID != "" {
		return p.MessageID
	}
	return p.ReferenceID
}
