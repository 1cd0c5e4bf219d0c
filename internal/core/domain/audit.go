package domain

import "time"

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// AuditEntry records one staff action taken through the gateway.
type AuditEntry struct {
	SessionID string    `json:"session_id" bson:"session_id"`
	Username  string    `json:"username,omitempty" bson:"username,omitempty"`
	Action    string    `json:"action" bson:"action"`
	Target    string    `json:"target,omitempty" bson:"target,omitempty"`
	Outcome   string    `json:"outcome" bson:"outcome"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty"`
	At        time.Time `json:"at" bson:"at"`
}

// Preferences is the small piece of dashboard UI state kept per staff user.
type Preferences struct {
	TrackerTab    string `json:"tracker_tab"`
	SelectedGroup string `json:"selected_group,omitempty"`
}

const DefaultTrackerTab = "members"
